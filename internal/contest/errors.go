package contest

import "errors"

var (
	// ErrEmptyOwnership describes a zero-length ownership vector. SampleField
	// does not return it: it returns a nil field for empty ownership.
	ErrEmptyOwnership = errors.New("contest: ownership vector is empty")
	// ErrInvalidRosterSize describes a roster_size larger than the number of
	// drivers. SampleField does not return it: it clamps the roster size to
	// the number of drivers.
	ErrInvalidRosterSize = errors.New("contest: roster size exceeds available drivers")
)
