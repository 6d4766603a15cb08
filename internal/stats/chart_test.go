package stats

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"murphy/internal/model"
)

func TestWriteCurveChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "charts", "bandit.html")

	series := []CurveSeries{
		{
			Label: "classical",
			Curve: []model.StepStat{
				{Step: 1, MeanReward: 0.1, FractionOptimal: 0.1},
				{Step: 2, MeanReward: 0.5, FractionOptimal: 0.4},
			},
		},
		{
			Label: "bayesian",
			Curve: []model.StepStat{
				{Step: 1, MeanReward: 0.2, FractionOptimal: 0.2},
				{Step: 2, MeanReward: 0.6, FractionOptimal: 0.5},
			},
		},
	}
	if err := WriteCurveChart(path, "bandit", series); err != nil {
		t.Fatalf("write chart: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read chart: %v", err)
	}
	html := string(data)
	if len(html) == 0 {
		t.Fatal("expected non-empty chart page")
	}
	for _, label := range []string{"classical", "bayesian", "bandit mean reward", "bandit fraction optimal"} {
		if !strings.Contains(html, label) {
			t.Fatalf("chart page missing %q", label)
		}
	}
}

func TestWriteCurveChartValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.html")

	if err := WriteCurveChart(path, "empty", nil); err == nil {
		t.Fatal("expected error for no series")
	}
	series := []CurveSeries{{Label: "classical"}}
	if err := WriteCurveChart(path, "empty", series); err == nil {
		t.Fatal("expected error for empty curve")
	}
}
