package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// ExperimentConfig is the invocation surface of one aggregated experiment.
// Seed holds the value actually used, after any clock-based defaulting, so
// a persisted experiment stays reproducible.
type ExperimentConfig struct {
	Env      string  `json:"env"`
	Agent    string  `json:"agent"`
	Actions  int     `json:"actions"`
	Steps    int     `json:"steps"`
	Runs     int     `json:"runs"`
	Epsilon  float64 `json:"epsilon"`
	Optimism float64 `json:"optimism"`
	Seed     int64   `json:"seed"`
	Workers  int     `json:"workers"`
}

type StepStat struct {
	Step            int     `json:"step"`
	MeanReward      float64 `json:"mean_reward"`
	FractionOptimal float64 `json:"fraction_optimal"`
}

type RunSummary struct {
	Run             int     `json:"run"`
	Seed            int64   `json:"seed"`
	MeanReward      float64 `json:"mean_reward"`
	FractionOptimal float64 `json:"fraction_optimal"`
}

type Experiment struct {
	VersionedRecord
	ID                   string           `json:"id"`
	CreatedAtUTC         string           `json:"created_at_utc"`
	Config               ExperimentConfig `json:"config"`
	FinalMeanReward      float64          `json:"final_mean_reward"`
	FinalFractionOptimal float64          `json:"final_fraction_optimal"`
}

type EnvSummary struct {
	VersionedRecord
	Env              string  `json:"env"`
	BestExperimentID string  `json:"best_experiment_id"`
	BestAgent        string  `json:"best_agent"`
	BestMeanReward   float64 `json:"best_mean_reward"`
}
