// Package glm fits generalized linear models with iteratively reweighted
// least squares over gonum matrices. It covers the Poisson, negative
// binomial and binomial families used for accident frequency and severity
// modeling.
package glm

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Summary carries the fit diagnostics of a converged model.
type Summary struct {
	Family        Family  `json:"family"`
	Observations  int     `json:"observations"`
	Params        int     `json:"params"`
	Iterations    int     `json:"iterations"`
	Converged     bool    `json:"converged"`
	Alpha         float64 `json:"alpha"`
	Deviance      float64 `json:"deviance"`
	NullDeviance  float64 `json:"null_deviance"`
	LogLikelihood float64 `json:"log_likelihood"`
	AIC           float64 `json:"aic"`
	PearsonChi2   float64 `json:"pearson_chi2"`
	Dispersion    float64 `json:"dispersion"`
}

// Regression fits a single generalized linear model. The reweighted least
// squares loop solves a weighted QR factorization per iteration and stops
// when the relative deviance change drops below the configured tolerance.
type Regression struct {
	opt    *Options
	family Family

	coef      []float64
	intercept float64
	stderrs   []float64
	fitted    []float64

	summary Summary
}

// NewRegression initializes a generalized linear model of the given family
// ready for fitting.
func NewRegression(family Family, opt *Options) (*Regression, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	switch family {
	case Poisson, NegativeBinomial, Binomial, Gaussian:
	default:
		return nil, ErrUnknownFamily
	}
	return &Regression{
		opt:    opt,
		family: family,
	}, nil
}

// Fit estimates the model coefficients against the given training data. x
// carries one row per observation and one column per predictor, y is a
// single column of outcomes. Fails with an InsufficientDataError when a
// predictor column has zero variance or the design cannot identify the
// coefficients, and with a ConvergenceError when the iteration budget runs
// out before the deviance settles.
func (g *Regression) Fit(x, y mat.Matrix) error {
	x, y, err := g.fitValidate(x, y)
	if err != nil {
		return err
	}
	m, n := x.Dims()

	if m <= n {
		return &InsufficientDataError{Column: -1, Reason: fmt.Sprintf("%d observations for %d coefficients", m, n)}
	}

	colStart := 0
	if g.opt.FitIntercept {
		colStart = 1
	}
	for j := colStart; j < n; j++ {
		col := mat.Col(nil, j, x)
		if constant(col) {
			return &InsufficientDataError{Column: j - colStart, Reason: "predictor has zero variance"}
		}
	}

	yArr := mat.Col(nil, 0, y)
	alpha := g.opt.Alpha

	mu := make([]float64, m)
	eta := make([]float64, m)
	for i := 0; i < m; i++ {
		mu[i] = startingMean(g.family, yArr[i])
		eta[i] = g.family.Link(mu[i])
	}

	xw := mat.NewDense(m, n, nil)
	zw := make([]float64, m)

	var beta []float64
	dev := math.Inf(1)
	delta := math.Inf(1)
	converged := false
	iterations := 0

	for iter := 0; iter < g.opt.MaxIterations; iter++ {
		iterations = iter + 1

		g.weightSystem(x, xw, zw, yArr, mu, eta, alpha)

		beta, err = solveQR(xw, zw)
		if err != nil {
			return err
		}

		for i := 0; i < m; i++ {
			var e float64
			for j := 0; j < n; j++ {
				e += x.At(i, j) * beta[j]
			}
			eta[i] = e
			mu[i] = g.family.Mean(e)
		}

		devNext := g.family.Deviance(yArr, mu, alpha)
		delta = math.Abs(devNext - dev)
		dev = devNext
		if delta <= g.opt.Tolerance*(math.Abs(devNext)+g.opt.Tolerance) {
			converged = true
			break
		}
	}

	if !converged {
		return &ConvergenceError{Iterations: g.opt.MaxIterations, Delta: delta, Tolerance: g.opt.Tolerance}
	}

	// rebuild the weighted system at the solution so the covariance uses the
	// converged weights
	g.weightSystem(x, xw, zw, yArr, mu, eta, alpha)

	var xtwx mat.Dense
	xtwx.Mul(xw.T(), xw)
	var cov mat.Dense
	if err := cov.Inverse(&xtwx); err != nil {
		return &InsufficientDataError{Column: -1, Reason: "singular information matrix"}
	}

	var pearson float64
	for i := 0; i < m; i++ {
		resid := yArr[i] - mu[i]
		pearson += resid * resid / g.family.Variance(mu[i], alpha)
	}
	dispersion := pearson / float64(m-n)

	// count and binary families keep unit scale, the gaussian standard
	// errors pick up the estimated residual variance
	scale := 1.0
	if g.family == Gaussian {
		scale = dispersion
	}
	stderrs := make([]float64, n)
	for j := 0; j < n; j++ {
		stderrs[j] = math.Sqrt(scale * cov.At(j, j))
	}

	ybar := stat.Mean(yArr, nil)
	muNull := make([]float64, m)
	for i := range muNull {
		muNull[i] = ybar
	}

	ll := g.family.LogLikelihood(yArr, mu, alpha)

	g.fitted = mu
	g.stderrs = stderrs
	g.summary = Summary{
		Family:        g.family,
		Observations:  m,
		Params:        n,
		Iterations:    iterations,
		Converged:     converged,
		Alpha:         alpha,
		Deviance:      dev,
		NullDeviance:  g.family.Deviance(yArr, muNull, alpha),
		LogLikelihood: ll,
		AIC:           2.0*float64(n) - 2.0*ll,
		PearsonChi2:   pearson,
		Dispersion:    dispersion,
	}

	if g.opt.FitIntercept {
		g.intercept = beta[0]
		g.coef = beta[1:]
		return nil
	}
	g.coef = beta
	return nil
}

func (g *Regression) fitValidate(x, y mat.Matrix) (mat.Matrix, mat.Matrix, error) {
	if g.opt == nil {
		return nil, nil, ErrNoOptions
	}
	if x == nil {
		return nil, nil, ErrNoTrainingMatrix
	}
	if y == nil {
		return nil, nil, ErrNoTargetMatrix
	}

	m, _ := x.Dims()

	ym, _ := y.Dims()
	if ym != m {
		return nil, nil, fmt.Errorf("training data has %d rows and target has %d rows, %w", m, ym, ErrTargetLenMismatch)
	}

	if g.opt.FitIntercept {
		x = stackOnes(x)
	}
	return x, y, nil
}

// weightSystem scales the design matrix and working response by the square
// root of the current working weights.
func (g *Regression) weightSystem(x mat.Matrix, xw *mat.Dense, zw, y, mu, eta []float64, alpha float64) {
	m, n := x.Dims()
	for i := 0; i < m; i++ {
		sw := math.Sqrt(g.family.weight(mu[i], alpha))
		z := eta[i] + (y[i]-mu[i])*g.family.linkDeriv(mu[i])
		zw[i] = sw * z
		for j := 0; j < n; j++ {
			xw.Set(i, j, sw*x.At(i, j))
		}
	}
}

// Predict returns the fitted means for the rows of the design matrix.
func (g *Regression) Predict(x mat.Matrix) ([]float64, error) {
	if g.opt == nil {
		return nil, ErrNoOptions
	}
	if x == nil {
		return nil, ErrNoDesignMatrix
	}
	if g.coef == nil {
		return nil, ErrUntrainedModel
	}

	coef := g.coef
	if g.opt.FitIntercept {
		coef = append([]float64{g.intercept}, g.coef...)
		x = stackOnes(x)
	}
	n := len(coef)

	_, xn := x.Dims()
	if xn != n {
		return nil, fmt.Errorf("got %d features in design matrix, but expected %d, %w", xn, n, ErrFeatureLenMismatch)
	}

	xT := x.T()
	coefMx := mat.NewDense(1, n, coef)

	var res mat.Dense
	res.Mul(coefMx, xT)

	out := make([]float64, len(res.RawRowView(0)))
	for i, eta := range res.RawRowView(0) {
		out[i] = g.family.Mean(eta)
	}
	return out, nil
}

// Score computes the fraction of null deviance explained by the model on the
// given data, 1 - deviance/null deviance.
func (g *Regression) Score(x, y mat.Matrix) (float64, error) {
	if g.opt == nil {
		return 0.0, ErrNoOptions
	}
	if x == nil {
		return 0.0, ErrNoDesignMatrix
	}
	if y == nil {
		return 0.0, ErrNoTargetMatrix
	}

	m, _ := x.Dims()

	ym, _ := y.Dims()
	if m != ym {
		return 0.0, fmt.Errorf("design matrix has %d rows and target has %d rows, %w", m, ym, ErrTargetLenMismatch)
	}

	mu, err := g.Predict(x)
	if err != nil {
		return 0.0, err
	}

	yArr := mat.Col(nil, 0, y)
	ybar := stat.Mean(yArr, nil)
	muNull := make([]float64, len(yArr))
	for i := range muNull {
		muNull[i] = ybar
	}

	d0 := g.family.Deviance(yArr, muNull, g.opt.Alpha)
	if d0 == 0 {
		return 1.0, nil
	}
	return 1.0 - g.family.Deviance(yArr, mu, g.opt.Alpha)/d0, nil
}

// Family returns the family the model was initialized with.
func (g *Regression) Family() Family {
	if g == nil {
		return Poisson
	}
	return g.family
}

// Intercept returns the computed intercept if FitIntercept is set to true.
// Defaults to 0.0 if not set.
func (g *Regression) Intercept() float64 {
	if g == nil {
		return 0.0
	}
	return g.intercept
}

// Coef returns a slice of the trained coefficients in the same order of the
// training matrix by column.
func (g *Regression) Coef() []float64 {
	if g == nil || g.coef == nil {
		return nil
	}
	c := make([]float64, len(g.coef))
	copy(c, g.coef)
	return c
}

// StdErrs returns the coefficient standard errors from the inverse observed
// information. The intercept standard error leads when FitIntercept is set.
func (g *Regression) StdErrs() []float64 {
	if g == nil || g.stderrs == nil {
		return nil
	}
	s := make([]float64, len(g.stderrs))
	copy(s, g.stderrs)
	return s
}

// Fitted returns the fitted means of the training observations.
func (g *Regression) Fitted() []float64 {
	if g == nil || g.fitted == nil {
		return nil
	}
	f := make([]float64, len(g.fitted))
	copy(f, g.fitted)
	return f
}

// Summary returns the fit diagnostics of the trained model.
func (g *Regression) Summary() Summary {
	if g == nil {
		return Summary{}
	}
	return g.summary
}

// startingMean seeds the reweighted least squares loop away from the
// boundary of the mean space.
func startingMean(f Family, y float64) float64 {
	switch f {
	case Binomial:
		return (y + 0.5) / 2.0
	case Gaussian:
		return y
	}
	return y + 0.5
}

func constant(col []float64) bool {
	return floats.Min(col) == floats.Max(col)
}

// stackOnes prepends a constant 1.0 column to the design matrix.
func stackOnes(x mat.Matrix) mat.Matrix {
	m, _ := x.Dims()
	ones := make([]float64, m)
	floats.AddConst(1.0, ones)
	onesMx := mat.NewDense(1, m, ones)
	xT := x.T()

	var xWithOnes mat.Dense
	xWithOnes.Stack(onesMx, xT)
	return xWithOnes.T()
}

// solveQR solves the least squares system x*beta = target through a QR
// factorization with back substitution.
func solveQR(x *mat.Dense, target []float64) ([]float64, error) {
	m, n := x.Dims()

	qr := new(mat.QR)
	qr.Factorize(x)

	q := new(mat.Dense)
	r := new(mat.Dense)

	qr.QTo(q)
	qr.RTo(r)

	tMx := mat.NewDense(1, m, target)
	yq := new(mat.Dense)
	yq.Mul(tMx, q)

	c := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		if math.Abs(r.At(i, i)) < 1e-12 {
			return nil, &InsufficientDataError{Column: -1, Reason: "rank deficient design matrix"}
		}
		c[i] = yq.At(0, i)
		for j := i + 1; j < n; j++ {
			c[i] -= c[j] * r.At(i, j)
		}
		c[i] /= r.At(i, i)
	}
	return c, nil
}
