// Package term models the design matrix columns of an accident regression.
// A term is either a continuous variable taken as-is or a dummy indicator
// for one level of a categorical variable.
package term

type TermType int

const (
	TermTypeContinuous TermType = iota
	TermTypeDummy
)

type Term interface {
	String() string
	Get(string) (string, bool)
	Type() TermType
}
