package store

import (
	"context"
	"fmt"

	"github.com/v0xg/streamchapters/internal/chapter"
)

const (
	KeyIsRunning = "isRunning"
	KeyProgress  = "progress"
	KeyRunID     = "runId"
	KeyJobData   = "jobData"
	KeySettings  = "settings"
)

// Snapshot is everything a late-attaching observer needs to rebuild status
type Snapshot struct {
	IsRunning bool              `json:"isRunning"`
	Progress  chapter.Progress  `json:"progress"`
	RunID     string            `json:"runId,omitempty"`
	JobData   string            `json:"jobData,omitempty"`
	Settings  *chapter.Settings `json:"settings,omitempty"`
}

// RunStore persists run state into a KV
type RunStore struct {
	kv KV
}

func NewRunStore(kv KV) *RunStore {
	return &RunStore{kv: kv}
}

func (s *RunStore) SaveRunning(ctx context.Context, running bool) error {
	return s.kv.Set(ctx, KeyIsRunning, running)
}

func (s *RunStore) SaveProgress(ctx context.Context, p chapter.Progress) error {
	return s.kv.Set(ctx, KeyProgress, p)
}

func (s *RunStore) SaveRunID(ctx context.Context, runID string) error {
	return s.kv.Set(ctx, KeyRunID, runID)
}

// SaveInput remembers the last raw job text and settings
func (s *RunStore) SaveInput(ctx context.Context, jobData string, settings chapter.Settings) error {
	if err := s.kv.Set(ctx, KeyJobData, jobData); err != nil {
		return err
	}
	return s.kv.Set(ctx, KeySettings, settings)
}

// ClearJobData forgets the remembered job text
func (s *RunStore) ClearJobData(ctx context.Context) error {
	return s.kv.Delete(ctx, KeyJobData)
}

func (s *RunStore) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	if _, err := s.kv.Get(ctx, KeyIsRunning, &snap.IsRunning); err != nil {
		return Snapshot{}, err
	}
	if _, err := s.kv.Get(ctx, KeyProgress, &snap.Progress); err != nil {
		return Snapshot{}, err
	}
	if _, err := s.kv.Get(ctx, KeyRunID, &snap.RunID); err != nil {
		return Snapshot{}, err
	}
	if _, err := s.kv.Get(ctx, KeyJobData, &snap.JobData); err != nil {
		return Snapshot{}, err
	}
	var settings chapter.Settings
	found, err := s.kv.Get(ctx, KeySettings, &settings)
	if err != nil {
		return Snapshot{}, err
	}
	if found {
		snap.Settings = &settings
	}
	return snap, nil
}

// RecoverStale clears an isRunning flag left behind by a process that died
// mid-run. It reports whether anything was cleared.
func (s *RunStore) RecoverStale(ctx context.Context) (bool, error) {
	var running bool
	if _, err := s.kv.Get(ctx, KeyIsRunning, &running); err != nil {
		return false, err
	}
	if !running {
		return false, nil
	}
	if err := s.SaveRunning(ctx, false); err != nil {
		return false, fmt.Errorf("clear stale run: %w", err)
	}
	return true, nil
}
