package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"murphy/internal/model"
)

const experimentIndexFile = "experiment_index.json"

// ExperimentArtifacts is everything one aggregated experiment leaves on
// disk: the persisted record, the averaged curve, the per-run summaries and
// the gonum summary block.
type ExperimentArtifacts struct {
	Experiment   model.Experiment   `json:"experiment"`
	Curve        []model.StepStat   `json:"curve"`
	RunSummaries []model.RunSummary `json:"run_summaries"`
	Summary      AggregateSummary   `json:"summary"`
}

type IndexEntry struct {
	ExperimentID    string  `json:"experiment_id"`
	Env             string  `json:"env"`
	Agent           string  `json:"agent"`
	Actions         int     `json:"actions"`
	Steps           int     `json:"steps"`
	Runs            int     `json:"runs"`
	Epsilon         float64 `json:"epsilon"`
	Optimism        float64 `json:"optimism"`
	Seed            int64   `json:"seed"`
	FinalMeanReward float64 `json:"final_mean_reward"`
	CreatedAtUTC    string  `json:"created_at_utc"`
}

// WriteExperimentArtifacts lays out results/<id>/{config,curve,run_summaries,
// summary}.json and returns the experiment directory.
func WriteExperimentArtifacts(baseDir string, artifacts ExperimentArtifacts) (string, error) {
	if artifacts.Experiment.ID == "" {
		return "", fmt.Errorf("experiment id is required")
	}

	experimentDir := filepath.Join(baseDir, artifacts.Experiment.ID)
	if err := os.MkdirAll(experimentDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(experimentDir, "config.json"), artifacts.Experiment); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(experimentDir, "curve.json"), artifacts.Curve); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(experimentDir, "run_summaries.json"), artifacts.RunSummaries); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(experimentDir, "summary.json"), artifacts.Summary); err != nil {
		return "", err
	}

	return experimentDir, nil
}

func AppendExperimentIndex(baseDir string, entry IndexEntry) error {
	if entry.ExperimentID == "" {
		return fmt.Errorf("experiment id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListExperimentIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].ExperimentID == entry.ExperimentID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, experimentIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, experimentIndexFile), index)
}

func ListExperimentIndex(baseDir string) ([]IndexEntry, error) {
	path := filepath.Join(baseDir, experimentIndexFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []IndexEntry{}, nil
		}
		return nil, err
	}

	var entries []IndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	type indexedEntry struct {
		entry IndexEntry
		idx   int
	}
	indexed := make([]indexedEntry, len(entries))
	for i := range entries {
		indexed[i] = indexedEntry{entry: entries[i], idx: i}
	}
	sort.Slice(indexed, func(i, j int) bool {
		if indexed[i].entry.CreatedAtUTC == indexed[j].entry.CreatedAtUTC {
			// Prefer later appended entries for equal timestamps.
			return indexed[i].idx > indexed[j].idx
		}
		return indexed[i].entry.CreatedAtUTC > indexed[j].entry.CreatedAtUTC
	})

	sorted := make([]IndexEntry, 0, len(indexed))
	for _, item := range indexed {
		sorted = append(sorted, item.entry)
	}
	return sorted, nil
}

func ReadExperimentRecord(baseDir, experimentID string) (model.Experiment, bool, error) {
	path := filepath.Join(baseDir, experimentID, "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.Experiment{}, false, nil
		}
		return model.Experiment{}, false, err
	}

	var experiment model.Experiment
	if err := json.Unmarshal(data, &experiment); err != nil {
		return model.Experiment{}, false, err
	}
	return experiment, true, nil
}

func ReadCurveArtifact(baseDir, experimentID string) ([]model.StepStat, bool, error) {
	path := filepath.Join(baseDir, experimentID, "curve.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var curve []model.StepStat
	if err := json.Unmarshal(data, &curve); err != nil {
		return nil, false, err
	}
	return curve, true, nil
}

func ReadSummaryArtifact(baseDir, experimentID string) (AggregateSummary, bool, error) {
	path := filepath.Join(baseDir, experimentID, "summary.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return AggregateSummary{}, false, nil
		}
		return AggregateSummary{}, false, err
	}

	var summary AggregateSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return AggregateSummary{}, false, err
	}
	return summary, true, nil
}

// ExportCurveCSV flattens a stored curve into outDir/<id>_curve.csv.
func ExportCurveCSV(baseDir, experimentID, outDir string) (string, error) {
	if experimentID == "" {
		return "", fmt.Errorf("experiment id is required")
	}

	curve, ok, err := ReadCurveArtifact(baseDir, experimentID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("no curve artifact for experiment %s", experimentID)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(outDir, experimentID+"_curve.csv")
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"step", "mean_reward", "fraction_optimal"}); err != nil {
		return "", err
	}
	for _, row := range curve {
		if err := writer.Write([]string{
			strconv.Itoa(row.Step),
			strconv.FormatFloat(row.MeanReward, 'f', -1, 64),
			strconv.FormatFloat(row.FractionOptimal, 'f', -1, 64),
		}); err != nil {
			return "", err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}
	return path, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}
