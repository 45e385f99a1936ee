// Package memory provides an in-memory run history used for tests and
// ephemeral environments. The sqlite and postgres stores embed it and
// snapshot its state after every write.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"ifcqa/pkg/domain"
)

// Compile-time contract assertion.
var _ domain.RunStore = (*Store)(nil)

// RunRecord aliases domain.RunRecord.
type RunRecord = domain.RunRecord

// Snapshot captures a point-in-time clone of the store state.
type Snapshot struct {
	Runs map[string]RunRecord `json:"runs"`
}

// Store keeps run records in memory.
type Store struct {
	mu   sync.RWMutex
	runs map[string]RunRecord
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{runs: make(map[string]RunRecord)}
}

// SaveRun inserts or replaces a run record.
func (s *Store) SaveRun(ctx context.Context, run RunRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(run.ID) == "" {
		return fmt.Errorf("run id required")
	}
	s.mu.Lock()
	s.runs[run.ID] = cloneRun(run)
	s.mu.Unlock()
	return nil
}

// GetRun returns the run with id, if present.
func (s *Store) GetRun(ctx context.Context, id string) (RunRecord, bool, error) {
	if err := ctx.Err(); err != nil {
		return RunRecord{}, false, err
	}
	s.mu.RLock()
	run, ok := s.runs[id]
	s.mu.RUnlock()
	if !ok {
		return RunRecord{}, false, nil
	}
	return cloneRun(run), true, nil
}

// ListRuns returns all runs, newest first. Ties order by id.
func (s *Store) ListRuns(ctx context.Context) ([]RunRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]RunRecord, 0, len(s.runs))
	for _, run := range s.runs {
		out = append(out, cloneRun(run))
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.After(out[j].StartedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ExportState returns a deep copy of the stored runs.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	runs := make(map[string]RunRecord, len(s.runs))
	for id, run := range s.runs {
		runs[id] = cloneRun(run)
	}
	return Snapshot{Runs: runs}
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	runs := make(map[string]RunRecord, len(snapshot.Runs))
	for id, run := range snapshot.Runs {
		if run.ID == "" {
			run.ID = id
		}
		runs[run.ID] = cloneRun(run)
	}
	s.mu.Lock()
	s.runs = runs
	s.mu.Unlock()
}

func cloneRun(run RunRecord) RunRecord {
	if run.Artifacts != nil {
		run.Artifacts = append([]string(nil), run.Artifacts...)
	}
	if run.Summary.ByRule != nil {
		run.Summary.ByRule = append([]domain.RuleCounts(nil), run.Summary.ByRule...)
	}
	return run
}
