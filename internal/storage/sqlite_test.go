//go:build sqlite

package storage

import (
	"context"
	"path/filepath"
	"testing"

	"murphy/internal/model"
)

func TestSQLiteStoreExperimentRoundTrip(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "murphy.db")

	store := NewSQLiteStore(dbPath)
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	experiment := testExperiment("exp-1")
	if err := store.SaveExperiment(ctx, experiment); err != nil {
		t.Fatalf("save experiment: %v", err)
	}

	loaded, ok, err := store.GetExperiment(ctx, experiment.ID)
	if err != nil {
		t.Fatalf("get experiment: %v", err)
	}
	if !ok {
		t.Fatalf("expected experiment %s", experiment.ID)
	}
	if loaded.Config.Agent != experiment.Config.Agent || loaded.FinalMeanReward != experiment.FinalMeanReward {
		t.Fatalf("unexpected experiment loaded: %+v", loaded)
	}

	curve := []model.StepStat{
		{Step: 1, MeanReward: 0.2, FractionOptimal: 0.1},
		{Step: 2, MeanReward: 0.5, FractionOptimal: 0.3},
	}
	if err := store.SaveCurve(ctx, experiment.ID, curve); err != nil {
		t.Fatalf("save curve: %v", err)
	}
	loadedCurve, ok, err := store.GetCurve(ctx, experiment.ID)
	if err != nil {
		t.Fatalf("get curve: %v", err)
	}
	if !ok {
		t.Fatal("expected curve exp-1")
	}
	if len(loadedCurve) != 2 || loadedCurve[1].MeanReward != 0.5 {
		t.Fatalf("unexpected curve loaded: %+v", loadedCurve)
	}

	summaries := []model.RunSummary{
		{Run: 1, Seed: 42, MeanReward: 1.1, FractionOptimal: 0.7},
	}
	if err := store.SaveRunSummaries(ctx, experiment.ID, summaries); err != nil {
		t.Fatalf("save run summaries: %v", err)
	}
	loadedSummaries, ok, err := store.GetRunSummaries(ctx, experiment.ID)
	if err != nil {
		t.Fatalf("get run summaries: %v", err)
	}
	if !ok {
		t.Fatal("expected run summaries exp-1")
	}
	if len(loadedSummaries) != 1 || loadedSummaries[0].Seed != 42 {
		t.Fatalf("unexpected run summaries loaded: %+v", loadedSummaries)
	}

	envSummary := model.EnvSummary{
		VersionedRecord:  model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		Env:              "bandit",
		BestExperimentID: experiment.ID,
		BestAgent:        "classical",
		BestMeanReward:   1.32,
	}
	if err := store.SaveEnvSummary(ctx, envSummary); err != nil {
		t.Fatalf("save env summary: %v", err)
	}
	loadedEnv, ok, err := store.GetEnvSummary(ctx, "bandit")
	if err != nil {
		t.Fatalf("get env summary: %v", err)
	}
	if !ok {
		t.Fatal("expected env summary bandit")
	}
	if loadedEnv.BestExperimentID != experiment.ID {
		t.Fatalf("unexpected env summary loaded: %+v", loadedEnv)
	}

	ids, err := store.ListExperimentIDs(ctx)
	if err != nil {
		t.Fatalf("list experiment ids: %v", err)
	}
	if len(ids) != 1 || ids[0] != experiment.ID {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

func TestSQLiteStoreUpsertsExperiment(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "murphy.db")

	store := NewSQLiteStore(dbPath)
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	experiment := testExperiment("exp-1")
	if err := store.SaveExperiment(ctx, experiment); err != nil {
		t.Fatalf("first save: %v", err)
	}
	experiment.FinalMeanReward = 2.5
	if err := store.SaveExperiment(ctx, experiment); err != nil {
		t.Fatalf("second save: %v", err)
	}

	loaded, ok, err := store.GetExperiment(ctx, "exp-1")
	if err != nil {
		t.Fatalf("get experiment: %v", err)
	}
	if !ok || loaded.FinalMeanReward != 2.5 {
		t.Fatalf("expected upserted experiment, got ok=%t value=%+v", ok, loaded)
	}
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "murphy.db")

	first := NewSQLiteStore(dbPath)
	if err := first.Init(ctx); err != nil {
		t.Fatalf("first init: %v", err)
	}
	experiment := testExperiment("persisted-experiment")
	if err := first.SaveExperiment(ctx, experiment); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}

	second := NewSQLiteStore(dbPath)
	if err := second.Init(ctx); err != nil {
		t.Fatalf("second init: %v", err)
	}
	t.Cleanup(func() {
		_ = second.Close()
	})

	loaded, ok, err := second.GetExperiment(ctx, experiment.ID)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if !ok || loaded.ID != experiment.ID {
		t.Fatalf("expected persisted experiment, got ok=%t value=%+v", ok, loaded)
	}
}
