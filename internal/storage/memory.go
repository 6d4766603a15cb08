package storage

import (
	"context"
	"errors"
	"sort"
	"sync"

	"murphy/internal/model"
)

type MemoryStore struct {
	mu           sync.RWMutex
	initialized  bool
	experiments  map[string]model.Experiment
	curves       map[string][]model.StepStat
	runSummaries map[string][]model.RunSummary
	envSummaries map[string]model.EnvSummary
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.experiments = make(map[string]model.Experiment)
	s.curves = make(map[string][]model.StepStat)
	s.runSummaries = make(map[string][]model.RunSummary)
	s.envSummaries = make(map[string]model.EnvSummary)
	return nil
}

func (s *MemoryStore) ready() error {
	if !s.initialized {
		return errors.New("store is not initialized")
	}
	return nil
}

func (s *MemoryStore) SaveExperiment(_ context.Context, experiment model.Experiment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return err
	}
	s.experiments[experiment.ID] = experiment
	return nil
}

func (s *MemoryStore) GetExperiment(_ context.Context, id string) (model.Experiment, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.ready(); err != nil {
		return model.Experiment{}, false, err
	}
	experiment, ok := s.experiments[id]
	return experiment, ok, nil
}

func (s *MemoryStore) ListExperimentIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.ready(); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(s.experiments))
	for id := range s.experiments {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) SaveCurve(_ context.Context, experimentID string, curve []model.StepStat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return err
	}
	copied := make([]model.StepStat, len(curve))
	copy(copied, curve)
	s.curves[experimentID] = copied
	return nil
}

func (s *MemoryStore) GetCurve(_ context.Context, experimentID string) ([]model.StepStat, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.ready(); err != nil {
		return nil, false, err
	}
	curve, ok := s.curves[experimentID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.StepStat, len(curve))
	copy(copied, curve)
	return copied, true, nil
}

func (s *MemoryStore) SaveRunSummaries(_ context.Context, experimentID string, summaries []model.RunSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return err
	}
	copied := make([]model.RunSummary, len(summaries))
	copy(copied, summaries)
	s.runSummaries[experimentID] = copied
	return nil
}

func (s *MemoryStore) GetRunSummaries(_ context.Context, experimentID string) ([]model.RunSummary, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.ready(); err != nil {
		return nil, false, err
	}
	summaries, ok := s.runSummaries[experimentID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.RunSummary, len(summaries))
	copy(copied, summaries)
	return copied, true, nil
}

func (s *MemoryStore) SaveEnvSummary(_ context.Context, summary model.EnvSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return err
	}
	s.envSummaries[summary.Env] = summary
	return nil
}

func (s *MemoryStore) GetEnvSummary(_ context.Context, env string) (model.EnvSummary, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.ready(); err != nil {
		return model.EnvSummary{}, false, err
	}
	summary, ok := s.envSummaries[env]
	return summary, ok, nil
}
