package source

import (
	"sync"

	"github.com/pkg/errors"

	"timetable-planner/internal/entity"
)

// ErrRunNotFound is returned by LoadAssignments when runID was never saved.
var ErrRunNotFound = errors.New("source: run not found")

// MemoryPersistence is a mutex-guarded, in-process Persistence
// implementation, sufficient for the CLI's single-process lifetime.
type MemoryPersistence struct {
	mu   sync.RWMutex
	runs map[string][]entity.Assignment
}

// NewMemoryPersistence creates an empty store.
func NewMemoryPersistence() *MemoryPersistence {
	return &MemoryPersistence{runs: map[string][]entity.Assignment{}}
}

// SaveAssignments stores a copy of assignments under runID.
func (m *MemoryPersistence) SaveAssignments(runID string, assignments []entity.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]entity.Assignment, len(assignments))
	copy(stored, assignments)
	m.runs[runID] = stored
	return nil
}

// LoadAssignments retrieves a previously saved run's assignments.
func (m *MemoryPersistence) LoadAssignments(runID string) ([]entity.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stored, ok := m.runs[runID]
	if !ok {
		return nil, errors.Wrapf(ErrRunNotFound, "run %s", runID)
	}
	out := make([]entity.Assignment, len(stored))
	copy(out, stored)
	return out, nil
}
