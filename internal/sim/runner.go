package sim

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"murphy/internal/agent"
	"murphy/internal/env"
)

// Config fixes one experiment: which environment faces which agent, and how
// many independent runs of how many steps feed the aggregate.
type Config struct {
	Env      env.Kind
	Agent    agent.Kind
	Actions  int
	Steps    int
	Runs     int
	Epsilon  float64
	Optimism float64
	Seed     int64
	Workers  int
}

// StepStat is one row of the aggregate curve: same-indexed step records
// averaged across every run.
type StepStat struct {
	Step            int
	MeanReward      float64
	FractionOptimal float64
}

// RunSummary condenses one run's log to its headline numbers.
type RunSummary struct {
	Run             int
	Seed            int64
	MeanReward      float64
	FractionOptimal float64
}

// Result is the output of one aggregated experiment.
type Result struct {
	Curve     []StepStat
	Summaries []RunSummary
}

// Runner executes independent runs of one configuration and reduces their
// logs into a single aggregate.
type Runner struct {
	cfg Config
}

func NewRunner(cfg Config) (*Runner, error) {
	switch cfg.Env {
	case env.KindBandit, env.KindNewcomb, env.KindPolicyBandit:
	default:
		return nil, fmt.Errorf("unsupported environment kind: %s", cfg.Env)
	}
	switch cfg.Agent {
	case agent.KindClassical, agent.KindBayesian, agent.KindInfrabayesian:
	default:
		return nil, fmt.Errorf("unsupported agent kind: %s", cfg.Agent)
	}
	if cfg.Actions <= 0 {
		return nil, fmt.Errorf("actions must be > 0, got %d", cfg.Actions)
	}
	if cfg.Env == env.KindNewcomb && cfg.Actions != 2 {
		return nil, fmt.Errorf("newcomb environment requires exactly 2 actions, got %d", cfg.Actions)
	}
	if cfg.Steps <= 0 {
		return nil, fmt.Errorf("steps must be > 0, got %d", cfg.Steps)
	}
	if cfg.Runs <= 0 {
		return nil, fmt.Errorf("runs must be > 0, got %d", cfg.Runs)
	}
	if cfg.Epsilon < 0 || cfg.Epsilon > 1 {
		return nil, fmt.Errorf("epsilon must be in [0, 1], got %v", cfg.Epsilon)
	}
	if math.IsNaN(cfg.Optimism) || math.IsInf(cfg.Optimism, 0) {
		return nil, fmt.Errorf("optimism must be finite, got %v", cfg.Optimism)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	return &Runner{cfg: cfg}, nil
}

// Config reports the validated configuration, including defaulted fields.
func (r *Runner) Config() Config { return r.cfg }

// Run executes the configured runs and reduces their logs. Run i owns the
// source seeded with Seed+i, shared by its environment and agent and nothing
// else, so scheduling order cannot change any run's log. The reduction walks
// runs in index order, which keeps the aggregate bit-identical across worker
// counts.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	type job struct {
		idx int
	}
	type result struct {
		idx int
		log []StepRecord
		err error
	}

	jobs := make(chan job)
	results := make(chan result, r.cfg.Runs)

	workerCount := r.cfg.Workers
	if workerCount > r.cfg.Runs {
		workerCount = r.cfg.Runs
	}

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				if err := ctx.Err(); err != nil {
					results <- result{idx: j.idx, err: err}
					continue
				}
				log, err := r.runOne(ctx, j.idx)
				results <- result{idx: j.idx, log: log, err: err}
			}
		}()
	}

	for i := 0; i < r.cfg.Runs; i++ {
		jobs <- job{idx: i}
	}
	close(jobs)

	wg.Wait()
	close(results)

	logs := make([][]StepRecord, r.cfg.Runs)
	for res := range results {
		if res.err != nil {
			return Result{}, fmt.Errorf("run %d: %w", res.idx, res.err)
		}
		logs[res.idx] = res.log
	}

	return r.reduce(logs), nil
}

func (r *Runner) runOne(ctx context.Context, idx int) ([]StepRecord, error) {
	rng := rand.New(rand.NewSource(r.cfg.Seed + int64(idx)))

	e, err := env.New(r.cfg.Env, r.cfg.Actions, rng)
	if err != nil {
		return nil, err
	}
	ag, err := agent.New(r.cfg.Agent, r.cfg.Actions, r.cfg.Epsilon, r.cfg.Optimism, rng)
	if err != nil {
		return nil, err
	}
	return RunOnce(ctx, e, ag, env.PerfectPredictor{}, r.cfg.Steps)
}

// reduce averages same-indexed step records across runs. Sums accumulate in
// run index order so the floating point result does not depend on completion
// order.
func (r *Runner) reduce(logs [][]StepRecord) Result {
	curve := make([]StepStat, r.cfg.Steps)
	for s := range curve {
		curve[s].Step = s + 1
	}

	summaries := make([]RunSummary, 0, len(logs))
	for idx, log := range logs {
		rewardTotal := 0.0
		optimalTotal := 0.0
		for s, record := range log {
			curve[s].MeanReward += record.Reward
			rewardTotal += record.Reward
			if record.Optimal {
				curve[s].FractionOptimal++
				optimalTotal++
			}
		}
		summaries = append(summaries, RunSummary{
			Run:             idx + 1,
			Seed:            r.cfg.Seed + int64(idx),
			MeanReward:      rewardTotal / float64(len(log)),
			FractionOptimal: optimalTotal / float64(len(log)),
		})
	}

	runs := float64(len(logs))
	for s := range curve {
		curve[s].MeanReward /= runs
		curve[s].FractionOptimal /= runs
	}
	return Result{Curve: curve, Summaries: summaries}
}
