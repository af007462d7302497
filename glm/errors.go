package glm

import (
	"errors"
	"fmt"
)

var (
	ErrNoOptions          = errors.New("no initialized model options")
	ErrTargetLenMismatch  = errors.New("target length does not match training rows")
	ErrNoTrainingMatrix   = errors.New("no training matrix")
	ErrNoTargetMatrix     = errors.New("no target matrix")
	ErrNoDesignMatrix     = errors.New("no design matrix for inference")
	ErrFeatureLenMismatch = errors.New("number of features does not match number of model coefficients")
	ErrUntrainedModel     = errors.New("model has not been fit")
)

// ConvergenceError reports a reweighted least squares loop that exhausted its
// iteration budget before the deviance settled.
type ConvergenceError struct {
	Iterations int
	Delta      float64
	Tolerance  float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("fit did not converge after %d iterations, deviance delta %e above tolerance %e", e.Iterations, e.Delta, e.Tolerance)
}

// InsufficientDataError reports a design matrix that cannot identify the
// requested coefficients. Column is the offending zero variance column index
// in the training matrix, or -1 when the problem is not tied to a single
// column.
type InsufficientDataError struct {
	Column int
	Reason string
}

func (e *InsufficientDataError) Error() string {
	if e.Column < 0 {
		return fmt.Sprintf("insufficient data, %s", e.Reason)
	}
	return fmt.Sprintf("insufficient data in column %d, %s", e.Column, e.Reason)
}
