package agent

import (
	"fmt"
	"math"
	"math/rand"

	"murphy/internal/env"
)

type cellKey struct {
	ctx    env.Context
	action int
}

// cell is the incremental-mean estimate for one (context, action) pair.
type cell struct {
	count int
	mean  float64
}

// Infrabayesian keeps one belief cell per (context, action) pair and values
// a candidate action by the worst case over the cells consistent with
// declaring it. A perfect predictor forecasting context c while the agent
// declares a different action is a contradiction, so such cells are
// discarded before the minimum is taken (the Nirvana rule) instead of being
// averaged in. Unobserved cells are unconstrained: with optimism unset they
// bound nothing, which leaves never-declared actions at +Inf value and pulls
// the policy toward them. A nonzero optimism turns unobserved cells into a
// finite estimate instead; a small value can then pin the policy to
// whichever action was declared first, since a standing policy never
// produces observations for the contexts other policies would create. That
// blind spot is intentional and the large-optimism initial switch is the
// configured way around it.
type Infrabayesian struct {
	core
	cells map[cellKey]*cell
	seen  map[env.Context]struct{}
}

func NewInfrabayesian(actions int, epsilon, optimism float64, rng *rand.Rand) (*Infrabayesian, error) {
	c, err := newCore(actions, epsilon, optimism, rng)
	if err != nil {
		return nil, err
	}
	return &Infrabayesian{
		core:  c,
		cells: make(map[cellKey]*cell),
		seen:  make(map[env.Context]struct{}),
	}, nil
}

func (a *Infrabayesian) Kind() Kind { return KindInfrabayesian }

func (a *Infrabayesian) Policy() int { return a.declare(a.value) }

func (a *Infrabayesian) Act(_ env.Context) int { return a.act(a.value) }

// consistent reports whether a perfect predictor could forecast ctx while
// the agent declares action. The fixed no-prediction context is consistent
// with every action.
func consistent(ctx env.Context, action int) bool {
	return ctx == env.ContextNone || int(ctx) == action
}

// value is the worst case over consistent cells: the minimum estimate across
// every context whose forecast does not contradict declaring the action. In
// a predictor world the forecast of a declared action is the action itself,
// so the self context joins the candidate set even before it has ever been
// forecast; that is what lets a configured optimism speak for policies never
// yet declared. Min is order-free, so ranging over the seen set stays
// deterministic.
func (a *Infrabayesian) value(action int) float64 {
	worst := math.Inf(1)
	bind := func(ctx env.Context) {
		estimate, bound := a.estimate(ctx, action)
		if bound && estimate < worst {
			worst = estimate
		}
	}

	predicted := false
	for ctx := range a.seen {
		if ctx != env.ContextNone {
			predicted = true
		}
		if consistent(ctx, action) {
			bind(ctx)
		}
	}
	if predicted {
		if _, ok := a.seen[env.Context(action)]; !ok {
			bind(env.Context(action))
		}
	}
	return worst
}

// estimate reports the belief for one cell and whether it binds the worst
// case. An unobserved cell binds only when a nonzero optimism is configured.
func (a *Infrabayesian) estimate(ctx env.Context, action int) (float64, bool) {
	if c, ok := a.cells[cellKey{ctx: ctx, action: action}]; ok && c.count > 0 {
		return c.mean, true
	}
	if a.optimism != 0 {
		return a.optimism, true
	}
	return 0, false
}

func (a *Infrabayesian) Update(ctx env.Context, action int, reward float64) error {
	if err := a.checkAction(action); err != nil {
		return err
	}

	a.seen[ctx] = struct{}{}
	key := cellKey{ctx: ctx, action: action}
	c, ok := a.cells[key]
	if !ok {
		c = &cell{}
		a.cells[key] = c
	}

	c.count++
	c.mean += (reward - c.mean) / float64(c.count)
	if math.IsNaN(c.mean) || math.IsInf(c.mean, 0) {
		return fmt.Errorf("belief cell (context %d, action %d) degenerated to %v", ctx, action, c.mean)
	}
	return nil
}
