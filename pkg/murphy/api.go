package murphy

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"

	"murphy/internal/agent"
	"murphy/internal/env"
	"murphy/internal/model"
	"murphy/internal/sim"
	"murphy/internal/stats"
	"murphy/internal/storage"
)

const (
	defaultResultsDir = "results"
	defaultExportsDir = "exports"
	defaultDBPath     = "murphy.db"
)

type Options struct {
	StoreKind  string
	DBPath     string
	ResultsDir string
	ExportsDir string
}

type Client struct {
	store storage.Store
	ready bool

	resultsDir string
	exportsDir string
}

// RunRequest describes one aggregated experiment. Zero values select the
// canonical defaults; Epsilon is a pointer because zero is a legal rate.
type RunRequest struct {
	Env      string
	Agent    string
	Actions  int
	Steps    int
	Runs     int
	Epsilon  *float64
	Optimism float64
	Seed     int64
	Workers  int
}

type ExperimentSummary struct {
	ExperimentID string
	ArtifactsDir string
	Config       model.ExperimentConfig
	Summary      stats.AggregateSummary
	Curve        []model.StepStat
}

type ExperimentsRequest struct {
	Limit int
}

type ExperimentItem struct {
	ExperimentID    string
	CreatedAtUTC    string
	Env             string
	Agent           string
	Actions         int
	Steps           int
	Runs            int
	Epsilon         float64
	Optimism        float64
	Seed            int64
	FinalMeanReward float64
}

type CurveRequest struct {
	ExperimentID string
	Latest       bool
	Limit        int
}

type ExportRequest struct {
	ExperimentID string
	Latest       bool
	OutDir       string
}

type ExportSummary struct {
	ExperimentID string
	Path         string
}

type ChartRequest struct {
	ExperimentIDs []string
	Latest        bool
	OutPath       string
	Title         string
}

type ChartSummary struct {
	ExperimentIDs []string
	Path          string
}

type EnvBestItem struct {
	Env          string
	ExperimentID string
	Agent        string
	MeanReward   float64
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	resultsDir := opts.ResultsDir
	if resultsDir == "" {
		resultsDir = defaultResultsDir
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:      store,
		resultsDir: resultsDir,
		exportsDir: exportsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	_, err := c.ensureStore(ctx)
	return err
}

// RunExperiment executes the configured runs, persists the records and lays
// out the artifacts directory. The returned summary carries the resolved
// configuration, including the seed actually used.
func (c *Client) RunExperiment(ctx context.Context, req RunRequest) (ExperimentSummary, error) {
	envKind := env.Normalize(req.Env)
	if req.Env == "" {
		envKind = env.KindBandit
	}
	agentKind := agent.Normalize(req.Agent)
	if req.Agent == "" {
		agentKind = agent.KindClassical
	}
	if req.Actions <= 0 {
		if envKind == env.KindNewcomb {
			req.Actions = 2
		} else {
			req.Actions = 10
		}
	}
	if req.Steps <= 0 {
		req.Steps = 1000
	}
	if req.Runs <= 0 {
		req.Runs = 2000
	}
	epsilon := 0.1
	if req.Epsilon != nil {
		epsilon = *req.Epsilon
	}
	if req.Workers <= 0 {
		req.Workers = runtime.NumCPU()
	}
	seed := req.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	runner, err := sim.NewRunner(sim.Config{
		Env:      envKind,
		Agent:    agentKind,
		Actions:  req.Actions,
		Steps:    req.Steps,
		Runs:     req.Runs,
		Epsilon:  epsilon,
		Optimism: req.Optimism,
		Seed:     seed,
		Workers:  req.Workers,
	})
	if err != nil {
		return ExperimentSummary{}, err
	}

	result, err := runner.Run(ctx)
	if err != nil {
		return ExperimentSummary{}, err
	}

	now := time.Now().UTC()
	experimentID := uuid.NewString()
	config := model.ExperimentConfig{
		Env:      string(envKind),
		Agent:    string(agentKind),
		Actions:  req.Actions,
		Steps:    req.Steps,
		Runs:     req.Runs,
		Epsilon:  epsilon,
		Optimism: req.Optimism,
		Seed:     seed,
		Workers:  req.Workers,
	}

	curve := make([]model.StepStat, 0, len(result.Curve))
	for _, row := range result.Curve {
		curve = append(curve, model.StepStat{
			Step:            row.Step,
			MeanReward:      row.MeanReward,
			FractionOptimal: row.FractionOptimal,
		})
	}
	runSummaries := make([]model.RunSummary, 0, len(result.Summaries))
	for _, s := range result.Summaries {
		runSummaries = append(runSummaries, model.RunSummary{
			Run:             s.Run,
			Seed:            s.Seed,
			MeanReward:      s.MeanReward,
			FractionOptimal: s.FractionOptimal,
		})
	}
	summary := stats.Summarize(curve, runSummaries)

	experiment := model.Experiment{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		ID:                   experimentID,
		CreatedAtUTC:         now.Format(time.RFC3339Nano),
		Config:               config,
		FinalMeanReward:      summary.FinalWindowMeanReward,
		FinalFractionOptimal: summary.FinalWindowFractionOptimal,
	}

	store, err := c.ensureStore(ctx)
	if err != nil {
		return ExperimentSummary{}, err
	}
	if err := store.SaveExperiment(ctx, experiment); err != nil {
		return ExperimentSummary{}, err
	}
	if err := store.SaveCurve(ctx, experimentID, curve); err != nil {
		return ExperimentSummary{}, err
	}
	if err := store.SaveRunSummaries(ctx, experimentID, runSummaries); err != nil {
		return ExperimentSummary{}, err
	}
	if err := c.updateEnvSummary(ctx, experiment); err != nil {
		return ExperimentSummary{}, err
	}

	artifactsDir, err := stats.WriteExperimentArtifacts(c.resultsDir, stats.ExperimentArtifacts{
		Experiment:   experiment,
		Curve:        curve,
		RunSummaries: runSummaries,
		Summary:      summary,
	})
	if err != nil {
		return ExperimentSummary{}, err
	}
	if err := stats.AppendExperimentIndex(c.resultsDir, stats.IndexEntry{
		ExperimentID:    experimentID,
		Env:             config.Env,
		Agent:           config.Agent,
		Actions:         config.Actions,
		Steps:           config.Steps,
		Runs:            config.Runs,
		Epsilon:         config.Epsilon,
		Optimism:        config.Optimism,
		Seed:            config.Seed,
		FinalMeanReward: experiment.FinalMeanReward,
		CreatedAtUTC:    experiment.CreatedAtUTC,
	}); err != nil {
		return ExperimentSummary{}, err
	}

	return ExperimentSummary{
		ExperimentID: experimentID,
		ArtifactsDir: filepath.Clean(artifactsDir),
		Config:       config,
		Summary:      summary,
		Curve:        curve,
	}, nil
}

func (c *Client) Experiments(_ context.Context, req ExperimentsRequest) ([]ExperimentItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}

	entries, err := stats.ListExperimentIndex(c.resultsDir)
	if err != nil {
		return nil, err
	}
	if len(entries) > req.Limit {
		entries = entries[:req.Limit]
	}

	out := make([]ExperimentItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, ExperimentItem{
			ExperimentID:    e.ExperimentID,
			CreatedAtUTC:    e.CreatedAtUTC,
			Env:             e.Env,
			Agent:           e.Agent,
			Actions:         e.Actions,
			Steps:           e.Steps,
			Runs:            e.Runs,
			Epsilon:         e.Epsilon,
			Optimism:        e.Optimism,
			Seed:            e.Seed,
			FinalMeanReward: e.FinalMeanReward,
		})
	}
	return out, nil
}

func (c *Client) Curve(ctx context.Context, req CurveRequest) ([]model.StepStat, error) {
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}
	experimentID, err := c.resolveExperimentID(req.ExperimentID, req.Latest)
	if err != nil {
		return nil, err
	}

	curve, err := c.loadCurve(ctx, experimentID)
	if err != nil {
		return nil, err
	}
	if req.Limit > 0 && len(curve) > req.Limit {
		curve = curve[:req.Limit]
	}
	return curve, nil
}

func (c *Client) ExportCurveCSV(_ context.Context, req ExportRequest) (ExportSummary, error) {
	experimentID, err := c.resolveExperimentID(req.ExperimentID, req.Latest)
	if err != nil {
		return ExportSummary{}, err
	}
	if req.OutDir == "" {
		req.OutDir = c.exportsDir
	}

	path, err := stats.ExportCurveCSV(c.resultsDir, experimentID, req.OutDir)
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{ExperimentID: experimentID, Path: filepath.Clean(path)}, nil
}

// WriteCurveChart renders one labeled series per requested experiment onto a
// single comparison page.
func (c *Client) WriteCurveChart(ctx context.Context, req ChartRequest) (ChartSummary, error) {
	if len(req.ExperimentIDs) > 0 && req.Latest {
		return ChartSummary{}, errors.New("use either experiment ids or latest")
	}
	experimentIDs := req.ExperimentIDs
	if req.Latest {
		id, err := c.resolveExperimentID("", true)
		if err != nil {
			return ChartSummary{}, err
		}
		experimentIDs = []string{id}
	}
	if len(experimentIDs) == 0 {
		return ChartSummary{}, errors.New("chart requires experiment ids or latest")
	}
	outPath := req.OutPath
	if outPath == "" {
		outPath = filepath.Join(c.exportsDir, experimentIDs[0]+"_curve.html")
	}
	title := req.Title
	if title == "" {
		title = "experiment"
	}

	series := make([]stats.CurveSeries, 0, len(experimentIDs))
	for _, id := range experimentIDs {
		curve, err := c.loadCurve(ctx, id)
		if err != nil {
			return ChartSummary{}, err
		}
		series = append(series, stats.CurveSeries{Label: c.seriesLabel(id), Curve: curve})
	}

	if err := stats.WriteCurveChart(outPath, title, series); err != nil {
		return ChartSummary{}, err
	}
	return ChartSummary{ExperimentIDs: experimentIDs, Path: filepath.Clean(outPath)}, nil
}

func (c *Client) EnvBest(ctx context.Context, envName string) (EnvBestItem, error) {
	if envName == "" {
		return EnvBestItem{}, errors.New("environment kind is required")
	}
	envKind := env.Normalize(envName)

	store, err := c.ensureStore(ctx)
	if err != nil {
		return EnvBestItem{}, err
	}
	summary, ok, err := store.GetEnvSummary(ctx, string(envKind))
	if err != nil {
		return EnvBestItem{}, err
	}
	if !ok {
		return EnvBestItem{}, fmt.Errorf("no experiments recorded for environment: %s", envKind)
	}
	return EnvBestItem{
		Env:          summary.Env,
		ExperimentID: summary.BestExperimentID,
		Agent:        summary.BestAgent,
		MeanReward:   summary.BestMeanReward,
	}, nil
}

func (c *Client) ensureStore(ctx context.Context) (storage.Store, error) {
	if c.ready {
		return c.store, nil
	}
	if err := c.store.Init(ctx); err != nil {
		return nil, err
	}
	c.ready = true
	return c.store, nil
}

func (c *Client) resolveExperimentID(experimentID string, latest bool) (string, error) {
	if experimentID != "" && latest {
		return "", errors.New("use either experiment id or latest")
	}
	if experimentID != "" {
		return experimentID, nil
	}
	if !latest {
		return "", errors.New("experiment id or latest is required")
	}

	entries, err := stats.ListExperimentIndex(c.resultsDir)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", errors.New("no experiments available")
	}
	return entries[0].ExperimentID, nil
}

// loadCurve prefers the store and falls back to the artifacts directory, so
// the default memory backend still serves curves across processes.
func (c *Client) loadCurve(ctx context.Context, experimentID string) ([]model.StepStat, error) {
	store, err := c.ensureStore(ctx)
	if err != nil {
		return nil, err
	}
	curve, ok, err := store.GetCurve(ctx, experimentID)
	if err != nil {
		return nil, err
	}
	if !ok {
		curve, ok, err = stats.ReadCurveArtifact(c.resultsDir, experimentID)
		if err != nil {
			return nil, err
		}
	}
	if !ok {
		return nil, fmt.Errorf("curve not found for experiment id: %s", experimentID)
	}
	return curve, nil
}

func (c *Client) seriesLabel(experimentID string) string {
	record, ok, err := stats.ReadExperimentRecord(c.resultsDir, experimentID)
	if err != nil || !ok {
		return experimentID
	}
	return fmt.Sprintf("%s/%s", record.Config.Agent, record.Config.Env)
}

func (c *Client) updateEnvSummary(ctx context.Context, experiment model.Experiment) error {
	store, err := c.ensureStore(ctx)
	if err != nil {
		return err
	}
	existing, ok, err := store.GetEnvSummary(ctx, experiment.Config.Env)
	if err != nil {
		return err
	}
	if ok && existing.BestMeanReward >= experiment.FinalMeanReward {
		return nil
	}
	return store.SaveEnvSummary(ctx, model.EnvSummary{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		Env:              experiment.Config.Env,
		BestExperimentID: experiment.ID,
		BestAgent:        experiment.Config.Agent,
		BestMeanReward:   experiment.FinalMeanReward,
	})
}
