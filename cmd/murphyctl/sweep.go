package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"murphy/internal/stats"
	"murphy/internal/storage"
	murphyapi "murphy/pkg/murphy"
)

// sweepParams holds the overridable knobs of one experiment. Numeric fields
// are pointers so a manifest can distinguish "unset" from an explicit zero,
// which matters for epsilon and optimism.
type sweepParams struct {
	Env      string   `yaml:"env"`
	Agent    string   `yaml:"agent"`
	Actions  *int     `yaml:"actions"`
	Steps    *int     `yaml:"steps"`
	Runs     *int     `yaml:"runs"`
	Epsilon  *float64 `yaml:"epsilon"`
	Optimism *float64 `yaml:"optimism"`
	Seed     *int64   `yaml:"seed"`
	Workers  *int     `yaml:"workers"`
}

type sweepExperiment struct {
	Label       string `yaml:"label"`
	sweepParams `yaml:",inline"`
}

type sweepManifest struct {
	Name        string            `yaml:"name"`
	Defaults    sweepParams       `yaml:"defaults"`
	Experiments []sweepExperiment `yaml:"experiments"`
}

func runSweep(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sweep", flag.ContinueOnError)
	manifestPath := fs.String("manifest", "", "sweep manifest YAML path")
	chartPath := fs.String("chart", "", "comparison chart HTML path (empty disables the chart)")
	storeKind := fs.String("store", storage.DefaultStoreKind, "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "murphy.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *manifestPath == "" {
		return errors.New("sweep requires --manifest")
	}

	manifest, err := loadSweepManifest(*manifestPath)
	if err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	series := make([]stats.CurveSeries, 0, len(manifest.Experiments))
	for _, exp := range manifest.Experiments {
		resolved := exp.sweepParams.merged(manifest.Defaults)
		summary, err := client.RunExperiment(ctx, resolved.request())
		if err != nil {
			return fmt.Errorf("sweep experiment %s: %w", exp.Label, err)
		}

		fmt.Printf("sweep experiment label=%s experiment_id=%s env=%s agent=%s final_window_mean_reward=%.6f final_window_fraction_optimal=%.6f\n",
			exp.Label,
			summary.ExperimentID,
			summary.Config.Env,
			summary.Config.Agent,
			summary.Summary.FinalWindowMeanReward,
			summary.Summary.FinalWindowFractionOptimal,
		)
		series = append(series, stats.CurveSeries{Label: exp.Label, Curve: summary.Curve})
	}

	if *chartPath != "" {
		if err := stats.WriteCurveChart(*chartPath, manifest.Name, series); err != nil {
			return err
		}
		fmt.Printf("sweep chart written path=%s\n", filepath.Clean(*chartPath))
	}

	fmt.Printf("sweep completed name=%s experiments=%d\n", manifest.Name, len(manifest.Experiments))
	return nil
}

func loadSweepManifest(path string) (sweepManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return sweepManifest{}, err
	}

	var manifest sweepManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return sweepManifest{}, fmt.Errorf("parse sweep manifest: %w", err)
	}
	if manifest.Name == "" {
		manifest.Name = "sweep"
	}
	if len(manifest.Experiments) == 0 {
		return sweepManifest{}, errors.New("sweep manifest has no experiments")
	}

	seen := make(map[string]bool, len(manifest.Experiments))
	for i, exp := range manifest.Experiments {
		if exp.Label == "" {
			return sweepManifest{}, fmt.Errorf("sweep experiment %d requires a label", i+1)
		}
		if seen[exp.Label] {
			return sweepManifest{}, fmt.Errorf("duplicate sweep label: %s", exp.Label)
		}
		seen[exp.Label] = true
	}
	return manifest, nil
}

// merged layers the experiment's explicit values over the manifest defaults.
func (p sweepParams) merged(base sweepParams) sweepParams {
	out := base
	if p.Env != "" {
		out.Env = p.Env
	}
	if p.Agent != "" {
		out.Agent = p.Agent
	}
	if p.Actions != nil {
		out.Actions = p.Actions
	}
	if p.Steps != nil {
		out.Steps = p.Steps
	}
	if p.Runs != nil {
		out.Runs = p.Runs
	}
	if p.Epsilon != nil {
		out.Epsilon = p.Epsilon
	}
	if p.Optimism != nil {
		out.Optimism = p.Optimism
	}
	if p.Seed != nil {
		out.Seed = p.Seed
	}
	if p.Workers != nil {
		out.Workers = p.Workers
	}
	return out
}

func (p sweepParams) request() murphyapi.RunRequest {
	req := murphyapi.RunRequest{
		Env:     p.Env,
		Agent:   p.Agent,
		Epsilon: p.Epsilon,
	}
	if p.Actions != nil {
		req.Actions = *p.Actions
	}
	if p.Steps != nil {
		req.Steps = *p.Steps
	}
	if p.Runs != nil {
		req.Runs = *p.Runs
	}
	if p.Optimism != nil {
		req.Optimism = *p.Optimism
	}
	if p.Seed != nil {
		req.Seed = *p.Seed
	}
	if p.Workers != nil {
		req.Workers = *p.Workers
	}
	return req
}
