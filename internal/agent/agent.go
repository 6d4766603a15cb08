package agent

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"murphy/internal/env"
)

// Agent is one inference strategy over single-step environments. All three
// variants share the ε-greedy action rule and differ only in how they value
// an action from belief state.
type Agent interface {
	Kind() Kind
	// Policy returns the current greedy action with exploration noise left
	// out, breaking ties uniformly at random among maximizers. The draw is
	// cached: the next Act call exploits exactly this declaration, so a
	// predictor fed the declared policy can never disagree with the action
	// the agent would exploit on the same step.
	Policy() int
	// Act returns this step's ε-greedy action.
	Act(ctx env.Context) int
	// Update folds one observed outcome into belief state. It accepts
	// contexts and actions never chosen by Act.
	Update(ctx env.Context, action int, reward float64) error
}

// core carries what every variant shares: the action count, exploration
// rate, optimism offset, the run's random source, and the pending declared
// policy.
type core struct {
	actions  int
	epsilon  float64
	optimism float64
	rng      *rand.Rand

	declared    int
	hasDeclared bool
}

func newCore(actions int, epsilon, optimism float64, rng *rand.Rand) (core, error) {
	if actions <= 0 {
		return core{}, fmt.Errorf("actions must be > 0, got %d", actions)
	}
	if epsilon < 0 || epsilon > 1 {
		return core{}, fmt.Errorf("epsilon must be in [0, 1], got %v", epsilon)
	}
	if math.IsNaN(optimism) || math.IsInf(optimism, 0) {
		return core{}, fmt.Errorf("optimism must be finite, got %v", optimism)
	}
	if rng == nil {
		return core{}, errors.New("rng is required")
	}
	return core{actions: actions, epsilon: epsilon, optimism: optimism, rng: rng}, nil
}

// declare resolves the greedy argmax over value, keeping each maximizer with
// equal probability, and records the draw for the next Act call.
func (c *core) declare(value func(action int) float64) int {
	best := 0
	bestValue := math.Inf(-1)
	maximizers := 0
	for a := 0; a < c.actions; a++ {
		switch v := value(a); {
		case v > bestValue:
			best, bestValue, maximizers = a, v, 1
		case v == bestValue:
			maximizers++
			if c.rng.Intn(maximizers) == 0 {
				best = a
			}
		}
	}
	c.declared = best
	c.hasDeclared = true
	return best
}

// act resolves the ε coin flip. The exploit branch consumes the pending
// declaration when one exists; without one (plain bandits skip Policy) it
// resolves a fresh greedy draw first, still ahead of the coin flip.
func (c *core) act(value func(action int) float64) int {
	exploit := c.declared
	if !c.hasDeclared {
		exploit = c.declare(value)
	}
	c.hasDeclared = false

	if c.epsilon > 0 && c.rng.Float64() < c.epsilon {
		return c.rng.Intn(c.actions)
	}
	return exploit
}

func (c *core) checkAction(action int) error {
	if action < 0 || action >= c.actions {
		return fmt.Errorf("action %d out of range [0, %d)", action, c.actions)
	}
	return nil
}
