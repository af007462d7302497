package glm

import (
	"errors"
	"math"
	"strings"
)

var ErrUnknownFamily = errors.New("unknown model family")

// Family selects the distribution and link of a generalized linear model.
// Poisson and NegativeBinomial use the log link for count outcomes, Binomial
// uses the logit link for binary outcomes and Gaussian the identity link for
// continuous ones.
type Family int

const (
	Poisson Family = iota
	NegativeBinomial
	Binomial
	Gaussian
)

func (f Family) String() string {
	switch f {
	case Poisson:
		return "poisson"
	case NegativeBinomial:
		return "negative_binomial"
	case Binomial:
		return "binomial"
	case Gaussian:
		return "gaussian"
	}
	return "unknown"
}

func ParseFamily(name string) (Family, error) {
	switch strings.ToLower(name) {
	case "poisson":
		return Poisson, nil
	case "negative_binomial", "negbinomial", "nb":
		return NegativeBinomial, nil
	case "binomial", "logistic", "logit":
		return Binomial, nil
	case "gaussian", "normal":
		return Gaussian, nil
	}
	return 0, ErrUnknownFamily
}

const (
	// caps on the linear predictor keep exp from overflowing
	maxEta = 30.0
	minEta = -30.0

	minProb = 1e-10
)

// Mean applies the inverse link to a linear predictor value.
func (f Family) Mean(eta float64) float64 {
	if f == Gaussian {
		return eta
	}
	eta = math.Max(minEta, math.Min(maxEta, eta))
	switch f {
	case Binomial:
		return 1.0 / (1.0 + math.Exp(-eta))
	default:
		return math.Exp(eta)
	}
}

// Link maps a mean value back onto the linear predictor scale.
func (f Family) Link(mu float64) float64 {
	switch f {
	case Gaussian:
		return mu
	case Binomial:
		mu = clampProb(mu)
		return math.Log(mu / (1.0 - mu))
	default:
		if mu < minProb {
			mu = minProb
		}
		return math.Log(mu)
	}
}

// Variance returns the variance function evaluated at mu. The negative
// binomial uses the NB2 form mu + alpha*mu^2.
func (f Family) Variance(mu, alpha float64) float64 {
	switch f {
	case Poisson:
		return mu
	case NegativeBinomial:
		return mu + alpha*mu*mu
	case Binomial:
		mu = clampProb(mu)
		return mu * (1.0 - mu)
	case Gaussian:
		return 1.0
	}
	return mu
}

// Deviance computes the model deviance of observations y against fitted
// means mu.
func (f Family) Deviance(y, mu []float64, alpha float64) float64 {
	var dev float64
	switch f {
	case Poisson:
		for i := 0; i < len(y); i++ {
			dev += ylogydmu(y[i], mu[i]) - (y[i] - mu[i])
		}
	case NegativeBinomial:
		for i := 0; i < len(y); i++ {
			dev += ylogydmu(y[i], mu[i]) - (y[i]+1.0/alpha)*math.Log((1.0+alpha*y[i])/(1.0+alpha*mu[i]))
		}
	case Binomial:
		for i := 0; i < len(y); i++ {
			m := clampProb(mu[i])
			dev -= y[i]*math.Log(m) + (1.0-y[i])*math.Log(1.0-m)
		}
	case Gaussian:
		for i := 0; i < len(y); i++ {
			resid := y[i] - mu[i]
			dev += resid * resid / 2.0
		}
	}
	return 2.0 * dev
}

// LogLikelihood computes the log-likelihood of observations y against fitted
// means mu.
func (f Family) LogLikelihood(y, mu []float64, alpha float64) float64 {
	var ll float64
	switch f {
	case Poisson:
		for i := 0; i < len(y); i++ {
			m := math.Max(mu[i], minProb)
			lg, _ := math.Lgamma(y[i] + 1.0)
			ll += y[i]*math.Log(m) - m - lg
		}
	case NegativeBinomial:
		ia := 1.0 / alpha
		for i := 0; i < len(y); i++ {
			m := math.Max(mu[i], minProb)
			lgy, _ := math.Lgamma(y[i] + ia)
			lga, _ := math.Lgamma(ia)
			lgf, _ := math.Lgamma(y[i] + 1.0)
			ll += lgy - lga - lgf + y[i]*math.Log(alpha*m/(1.0+alpha*m)) - ia*math.Log(1.0+alpha*m)
		}
	case Binomial:
		for i := 0; i < len(y); i++ {
			m := clampProb(mu[i])
			ll += y[i]*math.Log(m) + (1.0-y[i])*math.Log(1.0-m)
		}
	case Gaussian:
		n := float64(len(y))
		var rss float64
		for i := 0; i < len(y); i++ {
			resid := y[i] - mu[i]
			rss += resid * resid
		}
		sigma2 := math.Max(rss/n, minProb)
		ll = -n / 2.0 * (math.Log(2.0*math.Pi*sigma2) + 1.0)
	}
	return ll
}

// weight returns the iteratively reweighted least squares working weight at mu.
func (f Family) weight(mu, alpha float64) float64 {
	var w float64
	switch f {
	case Poisson:
		w = mu
	case NegativeBinomial:
		w = mu / (1.0 + alpha*mu)
	case Binomial:
		m := clampProb(mu)
		w = m * (1.0 - m)
	case Gaussian:
		w = 1.0
	}
	return math.Max(w, minProb)
}

// linkDeriv returns d(eta)/d(mu) at mu.
func (f Family) linkDeriv(mu float64) float64 {
	switch f {
	case Gaussian:
		return 1.0
	case Binomial:
		m := clampProb(mu)
		return 1.0 / (m * (1.0 - m))
	default:
		return 1.0 / math.Max(mu, minProb)
	}
}

// ylogydmu computes y*log(y/mu) treating the y=0 limit as 0.
func ylogydmu(y, mu float64) float64 {
	if y <= 0 {
		return 0.0
	}
	return y * math.Log(y/math.Max(mu, minProb))
}

func clampProb(p float64) float64 {
	return math.Max(minProb, math.Min(1.0-minProb, p))
}
