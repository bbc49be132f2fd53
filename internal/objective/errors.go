package objective

import "errors"

var (
	// ErrInvalidAlpha is returned when a builder receives alpha outside (0,1).
	ErrInvalidAlpha = errors.New("objective: alpha must be in (0,1)")
	// ErrEmptyScenarios is returned when the scenario matrix has zero rows.
	ErrEmptyScenarios = errors.New("objective: scenario matrix is empty")
	// ErrMismatchedWeights is returned when alphas and weights have different lengths.
	ErrMismatchedWeights = errors.New("objective: alphas and weights must be the same length")
)
