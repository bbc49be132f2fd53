package payoutcurve

import "errors"

var (
	// ErrCurveFit is returned when the nonlinear least-squares solver fails
	// to converge (spec.md §4.2).
	ErrCurveFit = errors.New("payoutcurve: fit did not converge")
	// ErrNotFitted is returned by Predict before a successful Fit.
	ErrNotFitted = errors.New("payoutcurve: curve has not been fit")
	// ErrInsufficientPoints is returned when fewer than two (rank, payout)
	// pairs are supplied.
	ErrInsufficientPoints = errors.New("payoutcurve: need at least two (rank, payout) points")
)
