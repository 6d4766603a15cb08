package stats

import (
	"gonum.org/v1/gonum/stat"

	"murphy/internal/model"
)

// AggregateSummary condenses one experiment: mean and spread across per-run
// summaries, plus the final-decile window of the averaged curve, which is
// what "converged performance" means everywhere else in the repo.
type AggregateSummary struct {
	Runs                       int     `json:"runs"`
	Steps                      int     `json:"steps"`
	RunMeanReward              float64 `json:"run_mean_reward"`
	RunMeanRewardStd           float64 `json:"run_mean_reward_std"`
	RunFractionOptimal         float64 `json:"run_fraction_optimal"`
	RunFractionOptimalStd      float64 `json:"run_fraction_optimal_std"`
	FinalWindowSteps           int     `json:"final_window_steps"`
	FinalWindowMeanReward      float64 `json:"final_window_mean_reward"`
	FinalWindowFractionOptimal float64 `json:"final_window_fraction_optimal"`
}

func Summarize(curve []model.StepStat, runs []model.RunSummary) AggregateSummary {
	summary := AggregateSummary{Runs: len(runs), Steps: len(curve)}

	rewards := make([]float64, 0, len(runs))
	optimals := make([]float64, 0, len(runs))
	for _, run := range runs {
		rewards = append(rewards, run.MeanReward)
		optimals = append(optimals, run.FractionOptimal)
	}
	summary.RunMeanReward, summary.RunMeanRewardStd = meanStd(rewards)
	summary.RunFractionOptimal, summary.RunFractionOptimalStd = meanStd(optimals)

	if len(curve) == 0 {
		return summary
	}
	window := len(curve) / 10
	if window < 1 {
		window = 1
	}
	tail := curve[len(curve)-window:]
	tailRewards := make([]float64, 0, len(tail))
	tailOptimals := make([]float64, 0, len(tail))
	for _, row := range tail {
		tailRewards = append(tailRewards, row.MeanReward)
		tailOptimals = append(tailOptimals, row.FractionOptimal)
	}
	summary.FinalWindowSteps = window
	summary.FinalWindowMeanReward = stat.Mean(tailRewards, nil)
	summary.FinalWindowFractionOptimal = stat.Mean(tailOptimals, nil)
	return summary
}

// meanStd guards the single-sample case: stat.StdDev returns NaN there,
// which json.Marshal refuses to encode.
func meanStd(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	mean := stat.Mean(xs, nil)
	if len(xs) < 2 {
		return mean, 0
	}
	return mean, stat.StdDev(xs, nil)
}
