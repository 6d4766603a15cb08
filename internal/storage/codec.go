package storage

import (
	"encoding/json"
	"errors"

	"murphy/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeExperiment(e model.Experiment) ([]byte, error) {
	return json.Marshal(e)
}

func DecodeExperiment(data []byte) (model.Experiment, error) {
	var experiment model.Experiment
	if err := json.Unmarshal(data, &experiment); err != nil {
		return model.Experiment{}, err
	}
	if err := checkVersion(experiment.VersionedRecord); err != nil {
		return model.Experiment{}, err
	}
	return experiment, nil
}

func EncodeEnvSummary(s model.EnvSummary) ([]byte, error) {
	return json.Marshal(s)
}

func DecodeEnvSummary(data []byte) (model.EnvSummary, error) {
	var summary model.EnvSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return model.EnvSummary{}, err
	}
	if err := checkVersion(summary.VersionedRecord); err != nil {
		return model.EnvSummary{}, err
	}
	return summary, nil
}

func EncodeCurve(curve []model.StepStat) ([]byte, error) {
	return json.Marshal(curve)
}

func DecodeCurve(data []byte) ([]model.StepStat, error) {
	var curve []model.StepStat
	if err := json.Unmarshal(data, &curve); err != nil {
		return nil, err
	}
	return curve, nil
}

func EncodeRunSummaries(summaries []model.RunSummary) ([]byte, error) {
	return json.Marshal(summaries)
}

func DecodeRunSummaries(data []byte) ([]model.RunSummary, error) {
	var summaries []model.RunSummary
	if err := json.Unmarshal(data, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
