package tailmetrics

import "errors"

var (
	// ErrInvalidAlpha is returned when alpha is outside (0,1).
	ErrInvalidAlpha = errors.New("tailmetrics: alpha must be in (0,1)")
	// ErrEmptyScenarios is returned when the scenario vector is empty.
	ErrEmptyScenarios = errors.New("tailmetrics: scenario vector is empty")
)
