package term

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Data pairs a term with its generated column of observations.
type Data struct {
	T    Term
	Data []float64
}

// Set represents a mapping to each term's column keyed by the string
// representation of the term.
type Set map[string]Data

func NewSet() Set {
	return make(Set)
}

func (s Set) Set(t Term, data []float64) Set {
	if s == nil {
		return s
	}
	s[t.String()] = Data{T: t, Data: data}
	return s
}

func (s Set) Get(t Term) ([]float64, bool) {
	if s == nil {
		return nil, false
	}
	d, exists := s[t.String()]
	return d.Data, exists
}

func (s Set) Update(other Set) {
	if s == nil {
		return
	}
	for label, d := range other {
		s[label] = d
	}
}

// Labels returns the sorted slice of all tracked terms in the Set.
func (s Set) Labels() *Labels {
	if s == nil {
		return nil
	}

	labels := make([]Term, 0, len(s))
	for _, d := range s {
		labels = append(labels, d.T)
	}
	sort.Slice(
		labels,
		func(i, j int) bool {
			return labels[i].String() < labels[j].String()
		},
	)
	return NewLabels(labels)
}

// Matrix returns a matrix representation of the Set to be used with matrix
// methods. The matrix has m rows representing the number of observations and
// n columns representing the number of terms, ordered by sorted term label.
func (s Set) Matrix(intercept bool) *mat.Dense {
	if s == nil {
		return nil
	}

	termLabels := s.Labels()
	if termLabels.Len() == 0 {
		return nil
	}

	var m int
	// use first term to get length
	for _, label := range termLabels.Labels() {
		m = len(s[label.String()].Data)
		break
	}
	n := termLabels.Len()
	if intercept {
		n += 1
	}

	obs := make([]float64, m*n)

	termNum := 0
	if intercept {
		for i := 0; i < m; i++ {
			idx := n * i
			obs[idx] = 1.0
		}
		termNum += 1
	}

	for _, label := range termLabels.Labels() {
		d := s[label.String()]
		for i := 0; i < len(d.Data); i++ {
			idx := n*i + termNum
			obs[idx] = d.Data[i]
		}
		termNum += 1
	}
	return mat.NewDense(m, n, obs)
}
