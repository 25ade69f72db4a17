package github

import (
	"sync"

	"github.com/Kamar-Folarin/commit-health/internal/models"
)

// StatusManager tracks syncs that are currently running. Several runs of the
// same repository may be active at once; the store's primary key keeps their
// inserts from double counting.
type StatusManager struct {
	mu     sync.RWMutex
	active map[string]map[string]*models.SyncRun
}

// NewStatusManager creates a new status manager
func NewStatusManager() *StatusManager {
	return &StatusManager{
		active: make(map[string]map[string]*models.SyncRun),
	}
}

// Begin registers run as active
func (m *StatusManager) Begin(run *models.SyncRun) {
	m.mu.Lock()
	defer m.mu.Unlock()

	runs, ok := m.active[run.Repository]
	if !ok {
		runs = make(map[string]*models.SyncRun)
		m.active[run.Repository] = runs
	}
	snapshot := *run
	runs[run.RunID] = &snapshot
}

// Update stores the latest state of an active run
func (m *StatusManager) Update(run *models.SyncRun) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if runs, ok := m.active[run.Repository]; ok {
		if _, exists := runs[run.RunID]; exists {
			snapshot := *run
			runs[run.RunID] = &snapshot
		}
	}
}

// Finish removes run from the active set
func (m *StatusManager) Finish(run *models.SyncRun) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if runs, ok := m.active[run.Repository]; ok {
		delete(runs, run.RunID)
		if len(runs) == 0 {
			delete(m.active, run.Repository)
		}
	}
}

// Active returns a copy of the most recently started running sync of repo
func (m *StatusManager) Active(repo string) (*models.SyncRun, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *models.SyncRun
	for _, run := range m.active[repo] {
		if latest == nil || run.StartedAt.After(latest.StartedAt) ||
			(run.StartedAt.Equal(latest.StartedAt) && run.RunID > latest.RunID) {
			latest = run
		}
	}
	if latest == nil {
		return nil, false
	}
	snapshot := *latest
	return &snapshot, true
}

// Count returns how many syncs of repo are running
func (m *StatusManager) Count(repo string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.active[repo])
}
