package scenario

import (
	"context"
	"math"
	"math/rand"
)

// MockSource is a deterministic stand-in for the real (out-of-scope)
// scenario model, conforming to the same Source contract (spec.md §6.1).
// It is useful for tests and for standalone operation when no calibrated
// model is wired in.
type MockSource struct {
	DisplayIDs []string
	Means      []float64 // per-driver mean projected points
	Skew       []float64 // per-driver gamma shape parameter (>0); smaller = more right-skewed upside
}

// Sample draws nScenarios independent gamma-shaped outcomes per driver,
// scaled so the mean matches Means[i]. Deterministic given seed.
func (s *MockSource) Sample(ctx context.Context, nScenarios int, seed *int64) (*Matrix, DriverIndexMap, error) {
	if err := ctx.Err(); err != nil {
		return nil, DriverIndexMap{}, err
	}
	sd := int64(42)
	if seed != nil {
		sd = *seed
	}
	rng := rand.New(rand.NewSource(sd))

	d := len(s.DisplayIDs)
	rows := make([][]float64, nScenarios)
	for k := 0; k < nScenarios; k++ {
		row := make([]float64, d)
		for i := 0; i < d; i++ {
			shape := 2.0
			if i < len(s.Skew) && s.Skew[i] > 0 {
				shape = s.Skew[i]
			}
			sample := gammaSample(rng, shape, 1.0)
			mean := 0.0
			if i < len(s.Means) {
				mean = s.Means[i]
			}
			row[i] = math.Max(0, sample/shape*mean)
		}
		rows[k] = row
	}

	return NewMatrix(rows), NewDriverIndexMap(s.DisplayIDs), nil
}

// gammaSample draws from Gamma(shape, scale) using Marsaglia-Tsang, the
// same construction the field sampler (internal/contest) uses for
// ownership-perturbation draws.
func gammaSample(rng *rand.Rand, shape, scale float64) float64 {
	if shape < 1 {
		u := rng.Float64()
		return gammaSample(rng, shape+1, scale) * math.Pow(u, 1/shape)
	}
	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9*d)
	for {
		var x, v float64
		for {
			x = rng.NormFloat64()
			v = 1 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := rng.Float64()
		if u < 1-0.0331*x*x*x*x {
			return d * v * scale
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v * scale
		}
	}
}
