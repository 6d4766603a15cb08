package storage

import (
	"context"

	"murphy/internal/model"
)

// Store defines persistence operations for experiment records. Curves and
// run summaries are keyed by the owning experiment ID, environment summaries
// by environment kind.
type Store interface {
	Init(ctx context.Context) error
	SaveExperiment(ctx context.Context, experiment model.Experiment) error
	GetExperiment(ctx context.Context, id string) (model.Experiment, bool, error)
	ListExperimentIDs(ctx context.Context) ([]string, error)
	SaveCurve(ctx context.Context, experimentID string, curve []model.StepStat) error
	GetCurve(ctx context.Context, experimentID string) ([]model.StepStat, bool, error)
	SaveRunSummaries(ctx context.Context, experimentID string, summaries []model.RunSummary) error
	GetRunSummaries(ctx context.Context, experimentID string) ([]model.RunSummary, bool, error)
	SaveEnvSummary(ctx context.Context, summary model.EnvSummary) error
	GetEnvSummary(ctx context.Context, env string) (model.EnvSummary, bool, error)
}
