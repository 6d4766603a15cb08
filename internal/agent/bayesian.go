package agent

import (
	"fmt"
	"math"
	"math/rand"

	"murphy/internal/env"
)

// observationSigma is the agent's model of the environment's reward noise.
// The conjugate update below assumes it is known and fixed.
const observationSigma = 1.0

// Bayesian keeps a conjugate Gaussian posterior per action: precisions sum,
// the posterior mean is the precision-weighted blend of prior mean and
// observation. The prior mean starts at the optimism offset with unit prior
// sigma. Contexts are pooled exactly like Classical, so the variant shares
// its oscillatory failure mode on policy-dependent environments while
// handling estimate uncertainty in a principled way.
type Bayesian struct {
	core
	means  []float64
	sigmas []float64
}

func NewBayesian(actions int, epsilon, optimism float64, rng *rand.Rand) (*Bayesian, error) {
	c, err := newCore(actions, epsilon, optimism, rng)
	if err != nil {
		return nil, err
	}

	means := make([]float64, actions)
	sigmas := make([]float64, actions)
	for a := range means {
		means[a] = optimism
		sigmas[a] = 1
	}
	return &Bayesian{core: c, means: means, sigmas: sigmas}, nil
}

func (a *Bayesian) Kind() Kind { return KindBayesian }

func (a *Bayesian) Policy() int { return a.declare(a.value) }

func (a *Bayesian) Act(_ env.Context) int { return a.act(a.value) }

func (a *Bayesian) value(action int) float64 { return a.means[action] }

// PosteriorSigma reports the current posterior width for one action.
func (a *Bayesian) PosteriorSigma(action int) float64 { return a.sigmas[action] }

func (a *Bayesian) Update(_ env.Context, action int, reward float64) error {
	if err := a.checkAction(action); err != nil {
		return err
	}

	priorPrecision := 1 / (a.sigmas[action] * a.sigmas[action])
	noisePrecision := 1 / (observationSigma * observationSigma)
	posteriorPrecision := priorPrecision + noisePrecision

	a.means[action] = (a.means[action]*priorPrecision + reward*noisePrecision) / posteriorPrecision
	a.sigmas[action] = 1 / math.Sqrt(posteriorPrecision)

	if !(a.sigmas[action] > 0) || math.IsNaN(a.means[action]) || math.IsInf(a.means[action], 0) {
		return fmt.Errorf("bayesian posterior for action %d degenerated: mean=%v sigma=%v",
			action, a.means[action], a.sigmas[action])
	}
	return nil
}
