package payoutcurve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurve_PowerLaw_FitsAndPredicts(t *testing.T) {
	ranks := []float64{1, 2, 5, 10, 50, 100}
	payouts := []float64{500, 250, 100, 50, 10, 5}

	c := NewCurve(PowerLaw)
	err := c.Fit(ranks, payouts)
	require.NoError(t, err)

	pred, err := c.Predict(1)
	require.NoError(t, err)
	assert.Greater(t, pred, 0.0)
	assert.GreaterOrEqual(t, c.R2, -1.0) // sanity: R2 computed, not NaN-propagated
}

func TestCurve_PredictBeforeFit(t *testing.T) {
	c := NewCurve(Exponential)
	_, err := c.Predict(5)
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestCurve_InsufficientPoints(t *testing.T) {
	c := NewCurve(PowerLaw)
	err := c.Fit([]float64{1}, []float64{100})
	assert.ErrorIs(t, err, ErrInsufficientPoints)
}

func TestCurve_PiecewiseLinear_InterpolatesAndExtrapolates(t *testing.T) {
	ranks := []float64{1, 10, 100}
	payouts := []float64{300, 30, 3}

	c := NewCurve(PiecewiseLinear)
	require.NoError(t, c.Fit(ranks, payouts))

	mid, err := c.Predict(5)
	require.NoError(t, err)
	assert.Greater(t, mid, 3.0)
	assert.Less(t, mid, 300.0)

	tail, err := c.Predict(1000)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, tail, 0.0)
}

func TestCurve_PredictionsNeverNegative(t *testing.T) {
	ranks := []float64{1, 5, 20, 100}
	payouts := []float64{50, 10, 2, 0}

	c := NewCurve(Exponential)
	require.NoError(t, c.Fit(ranks, payouts))
	for _, r := range []int{1, 50, 500, 5000} {
		pred, err := c.Predict(r)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, pred, 0.0)
	}
}
