package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"murphy/internal/storage"
	murphyapi "murphy/pkg/murphy"
)

const (
	resultsDir = "results"
	exportsDir = "exports"

	version = "0.1.0"
	usage   = "usage: murphyctl <init|run|sweep|experiments|curve|export|chart|env-best|version|help> [flags]"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "run":
		return runRun(ctx, args[1:])
	case "sweep":
		return runSweep(ctx, args[1:])
	case "experiments":
		return runExperiments(ctx, args[1:])
	case "curve":
		return runCurve(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	case "chart":
		return runChart(ctx, args[1:])
	case "env-best":
		return runEnvBest(ctx, args[1:])
	case "version":
		fmt.Printf("murphyctl version=%s\n", version)
		return nil
	case "help":
		fmt.Println(usage)
		return nil
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func newClient(storeKind, dbPath string) (*murphyapi.Client, error) {
	return murphyapi.New(murphyapi.Options{
		StoreKind:  storeKind,
		DBPath:     dbPath,
		ResultsDir: resultsDir,
		ExportsDir: exportsDir,
	})
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind, "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "murphy.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Init(ctx); err != nil {
		return err
	}

	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	envName := fs.String("env", "bandit", "environment kind: bandit|newcomb|policy-dependent-bandit")
	agentName := fs.String("agent", "classical", "agent kind: classical|bayesian|infrabayesian")
	actions := fs.Int("actions", 0, "action count (0 uses the environment default)")
	steps := fs.Int("steps", 1000, "steps per run")
	runs := fs.Int("runs", 2000, "independent runs to average")
	epsilon := fs.Float64("epsilon", 0.1, "exploration rate in [0,1]")
	optimism := fs.Float64("optimism", 0.0, "initial value estimate for unseen actions")
	seed := fs.Int64("seed", 0, "rng seed (0 draws one from the clock)")
	workers := fs.Int("workers", 0, "worker count (0 uses all CPUs)")
	tail := fs.Int("tail", 5, "trailing curve points to print (<=0 disables)")
	storeKind := fs.String("store", storage.DefaultStoreKind, "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "murphy.db", "sqlite database path")
	jsonOut := fs.Bool("json", false, "emit experiment summary as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.RunExperiment(ctx, murphyapi.RunRequest{
		Env:      *envName,
		Agent:    *agentName,
		Actions:  *actions,
		Steps:    *steps,
		Runs:     *runs,
		Epsilon:  epsilon,
		Optimism: *optimism,
		Seed:     *seed,
		Workers:  *workers,
	})
	if err != nil {
		return err
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	cfg := summary.Config
	fmt.Printf("experiment completed experiment_id=%s env=%s agent=%s actions=%d steps=%d runs=%d epsilon=%.3f optimism=%.3f seed=%d\n",
		summary.ExperimentID, cfg.Env, cfg.Agent, cfg.Actions, cfg.Steps, cfg.Runs, cfg.Epsilon, cfg.Optimism, cfg.Seed)
	if *tail > 0 {
		curve := summary.Curve
		if len(curve) > *tail {
			curve = curve[len(curve)-*tail:]
		}
		for _, point := range curve {
			fmt.Printf("step=%d mean_reward=%.6f fraction_optimal=%.6f\n", point.Step, point.MeanReward, point.FractionOptimal)
		}
	}
	fmt.Printf("final_window_mean_reward=%.6f final_window_fraction_optimal=%.6f\n",
		summary.Summary.FinalWindowMeanReward, summary.Summary.FinalWindowFractionOptimal)
	fmt.Printf("run_mean_reward=%.6f run_mean_reward_std=%.6f\n",
		summary.Summary.RunMeanReward, summary.Summary.RunMeanRewardStd)
	fmt.Printf("artifacts_dir=%s\n", summary.ArtifactsDir)
	return nil
}

func runExperiments(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("experiments", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max experiments to list")
	jsonOut := fs.Bool("json", false, "emit experiments list as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind, "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "murphy.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	experiments, err := client.Experiments(ctx, murphyapi.ExperimentsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if len(experiments) == 0 {
		fmt.Println("no experiments found")
		return nil
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(experiments)
	}

	for _, e := range experiments {
		fmt.Printf("experiment_id=%s created_at=%s env=%s agent=%s actions=%d steps=%d runs=%d epsilon=%.3f optimism=%.3f seed=%d final_mean_reward=%.6f\n",
			e.ExperimentID,
			e.CreatedAtUTC,
			e.Env,
			e.Agent,
			e.Actions,
			e.Steps,
			e.Runs,
			e.Epsilon,
			e.Optimism,
			e.Seed,
			e.FinalMeanReward,
		)
	}
	return nil
}

func runCurve(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("curve", flag.ContinueOnError)
	experimentID := fs.String("experiment-id", "", "experiment id")
	latest := fs.Bool("latest", false, "show curve for the most recent experiment from the index")
	limit := fs.Int("limit", 50, "max curve points to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit curve points as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind, "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "murphy.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *experimentID != "" && *latest {
		return errors.New("use either --experiment-id or --latest, not both")
	}
	if *experimentID == "" && !*latest {
		return errors.New("curve requires --experiment-id or --latest")
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	capped := *limit
	if capped < 0 {
		capped = 0
	}
	curve, err := client.Curve(ctx, murphyapi.CurveRequest{
		ExperimentID: *experimentID,
		Latest:       *latest,
		Limit:        capped,
	})
	if err != nil {
		return err
	}
	if len(curve) == 0 {
		fmt.Println("no curve points")
		return nil
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(curve)
	}

	for _, point := range curve {
		fmt.Printf("step=%d mean_reward=%.6f fraction_optimal=%.6f\n", point.Step, point.MeanReward, point.FractionOptimal)
	}
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	experimentID := fs.String("experiment-id", "", "experiment id")
	latest := fs.Bool("latest", false, "export the most recent experiment from the index")
	outDir := fs.String("out-dir", exportsDir, "output directory for the CSV")
	storeKind := fs.String("store", storage.DefaultStoreKind, "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "murphy.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *experimentID != "" && *latest {
		return errors.New("use either --experiment-id or --latest, not both")
	}
	if *experimentID == "" && !*latest {
		return errors.New("export requires --experiment-id or --latest")
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	exported, err := client.ExportCurveCSV(ctx, murphyapi.ExportRequest{
		ExperimentID: *experimentID,
		Latest:       *latest,
		OutDir:       *outDir,
	})
	if err != nil {
		return err
	}

	fmt.Printf("curve exported experiment_id=%s path=%s\n", exported.ExperimentID, exported.Path)
	return nil
}

func runChart(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("chart", flag.ContinueOnError)
	experimentIDs := fs.String("experiment-ids", "", "comma-separated experiment ids to compare")
	latest := fs.Bool("latest", false, "chart the most recent experiment from the index")
	outPath := fs.String("out", "", "output HTML path (defaults under the exports directory)")
	title := fs.String("title", "", "chart title")
	storeKind := fs.String("store", storage.DefaultStoreKind, "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "murphy.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	chart, err := client.WriteCurveChart(ctx, murphyapi.ChartRequest{
		ExperimentIDs: splitIDs(*experimentIDs),
		Latest:        *latest,
		OutPath:       *outPath,
		Title:         *title,
	})
	if err != nil {
		return err
	}

	fmt.Printf("chart written experiments=%d path=%s\n", len(chart.ExperimentIDs), chart.Path)
	return nil
}

func runEnvBest(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("env-best", flag.ContinueOnError)
	envName := fs.String("env", "", "environment kind")
	jsonOut := fs.Bool("json", false, "emit summary as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind, "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "murphy.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *envName == "" {
		return errors.New("env-best requires --env")
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	best, err := client.EnvBest(ctx, *envName)
	if err != nil {
		return err
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(best)
	}

	fmt.Printf("env=%s best_experiment_id=%s best_agent=%s best_mean_reward=%.6f\n",
		best.Env, best.ExperimentID, best.Agent, best.MeanReward)
	return nil
}

func splitIDs(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
}

func usageError(msg string) error {
	return fmt.Errorf("%s\n%s", msg, usage)
}
