package env

// Context identifies which variant of the reward law is in effect for one
// step. Plain bandits run every step under the single fixed ContextNone;
// predictor-based environments run under the predicted action.
type Context int

// ContextNone is the fixed context of environments whose reward law does not
// depend on a prediction.
const ContextNone Context = -1

// Environment is a single-step, stateless decision problem. Implementations
// own their random source and their true generating parameters; the latter
// are never exposed to agents.
type Environment interface {
	Kind() Kind
	NumActions() int
	// NeedsPrediction reports whether the reward law is conditioned on a
	// prediction of the agent's declared policy.
	NeedsPrediction() bool
	// Sample draws one reward for action under ctx and reports the best
	// action for that context alongside it.
	Sample(ctx Context, action int) (float64, int)
	// BestAction reports the context-conditional optimal action without
	// consuming any randomness.
	BestAction(ctx Context) int
}
