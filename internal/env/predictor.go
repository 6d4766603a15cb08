package env

// Predictor maps an agent's declared greedy policy to the action the agent
// is most likely to take. Hard precondition: it must only ever be fed the
// declared policy, never the realized action. Feeding it the realized action
// would let predictions trail exploration noise and make every prediction
// trivially correct, which collapses the experiment.
type Predictor interface {
	Predict(policy int) int
}

// PerfectPredictor returns the declared policy unchanged.
type PerfectPredictor struct{}

func (PerfectPredictor) Predict(policy int) int { return policy }
