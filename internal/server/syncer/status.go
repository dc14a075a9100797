// Package syncer coordinates background library syncs: at most one job per
// user at a time, bounded by a timeout, with pollable progress.
package syncer

import (
	"sync"
	"time"
)

// State is the lifecycle stage of a user's most recent sync.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateTimedOut  State = "timed_out"
)

const (
	MessageReady     = "Ready to sync"
	MessageStarting  = "Starting library sync..."
	MessageCompleted = "Library sync completed successfully"
)

// Status is the in-memory sync record of one user.
type Status struct {
	IsSyncing bool
	LastSync  *time.Time
	Message   string
	State     State
}

func idleStatus() Status {
	return Status{Message: MessageReady, State: StateIdle}
}

func (s Status) clone() Status {
	if s.LastSync != nil {
		t := *s.LastSync
		s.LastSync = &t
	}
	return s
}

// StatusStore holds per-user sync status. Implementations must make
// TryBegin an atomic check-and-set.
type StatusStore interface {
	// Get returns a snapshot; unknown users are idle.
	Get(userID string) Status
	// TryBegin marks the user as syncing unless a sync is already running.
	TryBegin(userID, message string) bool
	// Update applies fn to the user's record under the store's lock.
	Update(userID string, fn func(*Status))
	// Finish clears the syncing flag.
	Finish(userID string)
}

// MemoryStatusStore is a process-local StatusStore.
type MemoryStatusStore struct {
	mu    sync.Mutex
	items map[string]*Status
}

var _ StatusStore = (*MemoryStatusStore)(nil)

func NewMemoryStatusStore() *MemoryStatusStore {
	return &MemoryStatusStore{items: make(map[string]*Status)}
}

func (m *MemoryStatusStore) Get(userID string) Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.items[userID]; ok {
		return s.clone()
	}
	return idleStatus()
}

func (m *MemoryStatusStore) TryBegin(userID, message string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.entry(userID)
	if s.IsSyncing {
		return false
	}
	s.IsSyncing = true
	s.State = StateRunning
	s.Message = message
	return true
}

func (m *MemoryStatusStore) Update(userID string, fn func(*Status)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fn(m.entry(userID))
}

func (m *MemoryStatusStore) Finish(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entry(userID).IsSyncing = false
}

func (m *MemoryStatusStore) entry(userID string) *Status {
	s, ok := m.items[userID]
	if !ok {
		st := idleStatus()
		s = &st
		m.items[userID] = s
	}
	return s
}
