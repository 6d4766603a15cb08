package sim

import (
	"context"
	"errors"
	"fmt"

	"murphy/internal/agent"
	"murphy/internal/env"
)

// StepRecord is one line of a run's log.
type StepRecord struct {
	Step    int
	Reward  float64
	Optimal bool
}

// RunOnce drives one agent through one environment for a fixed number of
// steps. Each step is strictly sequential: obtain the context (through the
// predictor when the environment wants one), act, sample, update, log. There
// are no retries and no early exit besides cancellation or a degenerate
// belief update.
func RunOnce(ctx context.Context, e env.Environment, ag agent.Agent, pred env.Predictor, steps int) ([]StepRecord, error) {
	if e == nil {
		return nil, errors.New("environment is required")
	}
	if ag == nil {
		return nil, errors.New("agent is required")
	}
	if steps <= 0 {
		return nil, fmt.Errorf("steps must be > 0, got %d", steps)
	}
	if e.NeedsPrediction() && pred == nil {
		return nil, fmt.Errorf("predictor is required for environment %s", e.Kind())
	}

	log := make([]StepRecord, 0, steps)
	for step := 1; step <= steps; step++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// The predictor sees the declared greedy policy, never the realized
		// action. The declaration is resolved before the exploration coin.
		stepCtx := env.ContextNone
		if e.NeedsPrediction() {
			stepCtx = env.Context(pred.Predict(ag.Policy()))
		}

		action := ag.Act(stepCtx)
		reward, best := e.Sample(stepCtx, action)
		if err := ag.Update(stepCtx, action, reward); err != nil {
			return nil, fmt.Errorf("step %d: %w", step, err)
		}
		log = append(log, StepRecord{Step: step, Reward: reward, Optimal: action == best})
	}
	return log, nil
}
