package env

import "math/rand"

// Gaussian is a fixed-parameter reward source. A zero Sigma collapses it to
// a point mass on Mean.
type Gaussian struct {
	Mean  float64
	Sigma float64
}

func (g Gaussian) Sample(rng *rand.Rand) float64 {
	if g.Sigma == 0 {
		return g.Mean
	}
	return g.Mean + g.Sigma*rng.NormFloat64()
}
