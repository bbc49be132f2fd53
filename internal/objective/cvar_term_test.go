package objective

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/scenario"
)

func TestCVaRTerm_LinearMajorantUpperBoundsEvaluateAcrossBox(t *testing.T) {
	m := twoDriverMatrix()
	term, zetaLo, zetaHi, err := BuildBoundedUpperTailCVaR(m, []int{0, 1}, 2, 0.95, "q0")
	require.NoError(t, err)
	const zetaVar = 2

	lo := []float64{0, 0, zetaLo}
	hi := []float64{1, 1, zetaHi}
	coeffs, constant := term.LinearMajorant(lo, hi, zetaVar)

	majorant := func(x0, x1, zeta float64) float64 {
		return coeffs[0]*x0 + coeffs[1]*x1 + coeffs[zetaVar]*zeta + constant
	}

	samples := []struct{ x0, x1, zeta float64 }{
		{0, 0, zetaLo},
		{1, 0, zetaLo},
		{0, 1, zetaLo},
		{1, 1, zetaLo},
		{1, 1, zetaHi},
		{0.5, 0.5, (zetaLo + zetaHi) / 2},
		{1, 0, zetaHi},
		{0, 1, (zetaLo + zetaHi) / 2},
	}
	for _, s := range samples {
		actual := term.Evaluate([]float64{s.x0, s.x1}, s.zeta)
		bound := majorant(s.x0, s.x1, s.zeta)
		assert.GreaterOrEqual(t, bound, actual-1e-9,
			"majorant must dominate Evaluate at x=(%v,%v) zeta=%v", s.x0, s.x1, s.zeta)
	}
}

// TestCVaRTerm_LinearMajorantReflectsFatTailDriver confirms the majorant
// actually discriminates between drivers rather than collapsing to a
// selection-independent constant: pinning the box to driver 0 alone (the
// fat-right-tail column in twoDriverMatrix) must score higher than pinning
// it to driver 1 alone, so branch-and-bound's node ordering is steered by
// the tail contribution instead of branching order alone.
func TestCVaRTerm_LinearMajorantReflectsFatTailDriver(t *testing.T) {
	m := twoDriverMatrix()
	term, zetaLo, zetaHi, err := BuildBoundedUpperTailCVaR(m, []int{0, 1}, 1, 0.75, "q0")
	require.NoError(t, err)
	const zetaVar = 2

	loA := []float64{1, 0, zetaLo}
	hiA := []float64{1, 0, zetaHi}
	coeffsA, constA := term.LinearMajorant(loA, hiA, zetaVar)
	boundA := coeffsA[0] + coeffsA[zetaVar]*zetaHi + constA

	loB := []float64{0, 1, zetaLo}
	hiB := []float64{0, 1, zetaHi}
	coeffsB, constB := term.LinearMajorant(loB, hiB, zetaVar)
	boundB := coeffsB[1] + coeffsB[zetaVar]*zetaHi + constB

	assert.Greater(t, boundA, boundB, "driver 0's fat right tail must score higher than driver 1's flat series")
}

func TestCVaRTerm_LinearMajorantDegenerateZeroScenarios(t *testing.T) {
	term := &CVaRTerm{
		Matrix:         scenario.NewMatrix(nil),
		DriverVarIndex: []int{0, 1},
		Alpha:          0.9,
		ZetaLo:         0,
		ZetaHi:         100,
		MaxExcess:      50,
	}
	const zetaVar = 2
	coeffs, constant := term.LinearMajorant([]float64{0, 0, 0}, []float64{1, 1, 100}, zetaVar)
	assert.InDelta(t, 1, coeffs[zetaVar], 1e-9)
	assert.Zero(t, coeffs[0])
	assert.Zero(t, coeffs[1])
	assert.Zero(t, constant)
}
