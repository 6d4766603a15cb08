package storage

import (
	"context"
	"testing"

	"murphy/internal/model"
)

func testExperiment(id string) model.Experiment {
	return model.Experiment{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		ID:              id,
		CreatedAtUTC:    "2026-02-11T10:00:00Z",
		Config: model.ExperimentConfig{
			Env:     "bandit",
			Agent:   "classical",
			Actions: 10,
			Steps:   1000,
			Runs:    2000,
			Epsilon: 0.1,
			Seed:    42,
			Workers: 4,
		},
		FinalMeanReward:      1.32,
		FinalFractionOptimal: 0.79,
	}
}

func TestMemoryStoreExperimentRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := testExperiment("exp-1")
	if err := store.SaveExperiment(ctx, input); err != nil {
		t.Fatalf("save experiment: %v", err)
	}

	output, ok, err := store.GetExperiment(ctx, "exp-1")
	if err != nil {
		t.Fatalf("get experiment: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted experiment")
	}
	if output.Config.Env != "bandit" || output.Config.Runs != 2000 {
		t.Fatalf("unexpected experiment: %+v", output)
	}

	_, ok, err = store.GetExperiment(ctx, "missing")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if ok {
		t.Fatal("expected missing experiment to report absent")
	}
}

func TestMemoryStoreCurveCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := []model.StepStat{
		{Step: 1, MeanReward: 0.1, FractionOptimal: 0.2},
		{Step: 2, MeanReward: 0.4, FractionOptimal: 0.3},
	}
	if err := store.SaveCurve(ctx, "exp-1", input); err != nil {
		t.Fatalf("save curve: %v", err)
	}
	input[0].MeanReward = 99

	output, ok, err := store.GetCurve(ctx, "exp-1")
	if err != nil {
		t.Fatalf("get curve: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted curve")
	}
	if output[0].MeanReward != 0.1 {
		t.Fatalf("stored curve shares backing array with caller: %+v", output)
	}

	output[1].MeanReward = 99
	again, _, err := store.GetCurve(ctx, "exp-1")
	if err != nil {
		t.Fatalf("get curve: %v", err)
	}
	if again[1].MeanReward != 0.4 {
		t.Fatalf("returned curve shares backing array with store: %+v", again)
	}
}

func TestMemoryStoreRunSummariesRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := []model.RunSummary{
		{Run: 1, Seed: 42, MeanReward: 1.1, FractionOptimal: 0.7},
		{Run: 2, Seed: 43, MeanReward: 1.2, FractionOptimal: 0.8},
	}
	if err := store.SaveRunSummaries(ctx, "exp-1", input); err != nil {
		t.Fatalf("save run summaries: %v", err)
	}

	output, ok, err := store.GetRunSummaries(ctx, "exp-1")
	if err != nil {
		t.Fatalf("get run summaries: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted run summaries")
	}
	if len(output) != 2 || output[1].Seed != 43 {
		t.Fatalf("unexpected run summaries: %+v", output)
	}
}

func TestMemoryStoreEnvSummaryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := model.EnvSummary{
		VersionedRecord:  model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		Env:              "newcomb",
		BestExperimentID: "exp-7",
		BestAgent:        "infrabayesian",
		BestMeanReward:   99.8,
	}
	if err := store.SaveEnvSummary(ctx, input); err != nil {
		t.Fatalf("save env summary: %v", err)
	}

	output, ok, err := store.GetEnvSummary(ctx, "newcomb")
	if err != nil {
		t.Fatalf("get env summary: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted env summary")
	}
	if output.BestAgent != "infrabayesian" || output.BestMeanReward != 99.8 {
		t.Fatalf("unexpected env summary: %+v", output)
	}
}

func TestMemoryStoreListExperimentIDsSorted(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	for _, id := range []string{"exp-b", "exp-a", "exp-c"} {
		if err := store.SaveExperiment(ctx, testExperiment(id)); err != nil {
			t.Fatalf("save experiment %s: %v", id, err)
		}
	}

	ids, err := store.ListExperimentIDs(ctx)
	if err != nil {
		t.Fatalf("list experiment ids: %v", err)
	}
	if len(ids) != 3 || ids[0] != "exp-a" || ids[2] != "exp-c" {
		t.Fatalf("unexpected id order: %v", ids)
	}
}

func TestMemoryStoreRequiresInit(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.SaveExperiment(ctx, testExperiment("exp-1")); err == nil {
		t.Fatal("expected save before init to fail")
	}
	if _, _, err := store.GetExperiment(ctx, "exp-1"); err == nil {
		t.Fatal("expected get before init to fail")
	}
}
