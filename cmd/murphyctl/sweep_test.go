package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, payload string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sweep.yaml")
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLoadSweepManifestMergesDefaults(t *testing.T) {
	path := writeManifest(t, `
name: bandit-agents
defaults:
  env: bandit
  agent: classical
  actions: 10
  steps: 500
  runs: 200
  epsilon: 0.1
  seed: 42
  workers: 4
experiments:
  - label: classical
  - label: optimistic
    epsilon: 0.0
    optimism: 5.0
  - label: bayesian
    agent: bayesian
`)

	manifest, err := loadSweepManifest(path)
	if err != nil {
		t.Fatalf("load manifest: %v", err)
	}
	if manifest.Name != "bandit-agents" || len(manifest.Experiments) != 3 {
		t.Fatalf("unexpected manifest shape: name=%s experiments=%d", manifest.Name, len(manifest.Experiments))
	}

	base := manifest.Experiments[0].sweepParams.merged(manifest.Defaults).request()
	if base.Env != "bandit" || base.Agent != "classical" || base.Actions != 10 || base.Steps != 500 {
		t.Fatalf("unexpected base request: %+v", base)
	}
	if base.Epsilon == nil || *base.Epsilon != 0.1 {
		t.Fatalf("expected default epsilon 0.1, got %v", base.Epsilon)
	}

	// An explicit zero epsilon must survive the merge rather than falling
	// back to the default exploration rate.
	optimistic := manifest.Experiments[1].sweepParams.merged(manifest.Defaults).request()
	if optimistic.Epsilon == nil || *optimistic.Epsilon != 0 {
		t.Fatalf("expected explicit zero epsilon, got %v", optimistic.Epsilon)
	}
	if optimistic.Optimism != 5 || optimistic.Steps != 500 || optimistic.Seed != 42 {
		t.Fatalf("unexpected optimistic request: %+v", optimistic)
	}

	bayesian := manifest.Experiments[2].sweepParams.merged(manifest.Defaults).request()
	if bayesian.Agent != "bayesian" || bayesian.Env != "bandit" {
		t.Fatalf("unexpected bayesian request: %+v", bayesian)
	}
}

func TestLoadSweepManifestDefaultsName(t *testing.T) {
	path := writeManifest(t, `
experiments:
  - label: only
    steps: 10
`)

	manifest, err := loadSweepManifest(path)
	if err != nil {
		t.Fatalf("load manifest: %v", err)
	}
	if manifest.Name != "sweep" {
		t.Fatalf("expected default name, got %s", manifest.Name)
	}
}

func TestLoadSweepManifestValidation(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		want    string
	}{
		{
			name:    "no experiments",
			payload: "name: empty\n",
			want:    "no experiments",
		},
		{
			name: "missing label",
			payload: `
experiments:
  - agent: classical
`,
			want: "requires a label",
		},
		{
			name: "duplicate label",
			payload: `
experiments:
  - label: twin
  - label: twin
`,
			want: "duplicate sweep label",
		},
		{
			name:    "malformed yaml",
			payload: "experiments: [",
			want:    "parse sweep manifest",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeManifest(t, tc.payload)
			_, err := loadSweepManifest(path)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got: %v", tc.want, err)
			}
		})
	}
}

func TestLoadSweepManifestMissingFile(t *testing.T) {
	_, err := loadSweepManifest(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected missing file error")
	}
}
