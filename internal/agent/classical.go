package agent

import (
	"fmt"
	"math"
	"math/rand"

	"murphy/internal/env"
)

// Classical values each action by the running sample mean of every reward
// ever observed for it, pooled across contexts. Pooling is deliberate: on
// policy-dependent environments it conflates mutually exclusive forecasts,
// which is exactly the failure mode the comparison measures. Optimism holds
// only until an action's first sample, when the incremental mean overwrites
// it.
type Classical struct {
	core
	counts []int
	means  []float64
}

func NewClassical(actions int, epsilon, optimism float64, rng *rand.Rand) (*Classical, error) {
	c, err := newCore(actions, epsilon, optimism, rng)
	if err != nil {
		return nil, err
	}

	means := make([]float64, actions)
	for a := range means {
		means[a] = optimism
	}
	return &Classical{core: c, counts: make([]int, actions), means: means}, nil
}

func (a *Classical) Kind() Kind { return KindClassical }

func (a *Classical) Policy() int { return a.declare(a.value) }

func (a *Classical) Act(_ env.Context) int { return a.act(a.value) }

func (a *Classical) value(action int) float64 { return a.means[action] }

func (a *Classical) Update(_ env.Context, action int, reward float64) error {
	if err := a.checkAction(action); err != nil {
		return err
	}

	a.counts[action]++
	a.means[action] += (reward - a.means[action]) / float64(a.counts[action])
	if math.IsNaN(a.means[action]) || math.IsInf(a.means[action], 0) {
		return fmt.Errorf("classical belief for action %d degenerated to %v", action, a.means[action])
	}
	return nil
}
