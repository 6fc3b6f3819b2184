// Package widgetstate gives each widget instance a private, durably
// persisted state bag keyed by instance id, independent of the widget's
// mount lifecycle: state survives page switches and full restarts.
package widgetstate

import (
	"sync"

	"cubedeck/internal/logx"
)

var stateLogger = logx.GetScope("widgetstate")

// Store is the in-memory state map mirrored to a durable backend. Every
// mutation rewrites the whole map; fine at the expected cardinality of tens
// of widget instances, and it keeps the durable copy trivially consistent.
type Store struct {
	mu      sync.RWMutex
	states  map[string]map[string]any
	backend Backend
}

// New loads the durable copy through backend. A corrupt or unreadable
// durable copy degrades to an empty store; startup never fails here.
func New(backend Backend) *Store {
	states, err := backend.Load()
	if err != nil {
		stateLogger.Sugar().Warnf("load widget states failed, starting empty: %v", err)
		states = map[string]map[string]any{}
	}
	if states == nil {
		states = map[string]map[string]any{}
	}
	return &Store{states: states, backend: backend}
}

// GetState returns the state for a widget instance, or ok=false when none
// exists. The returned map is a copy; mutate through UpdateState/SetState.
func (s *Store) GetState(instanceID string) (map[string]any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[instanceID]
	if !ok {
		return nil, false
	}
	return copyState(state), true
}

// SetState replaces the instance's state wholesale.
func (s *Store) SetState(instanceID string, state map[string]any) {
	s.mu.Lock()
	s.states[instanceID] = copyState(state)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()
	s.persist(snapshot)
}

// UpdateState shallow-merges partial into the existing state (or an empty
// one).
func (s *Store) UpdateState(instanceID string, partial map[string]any) {
	s.mu.Lock()
	existing, ok := s.states[instanceID]
	if !ok {
		existing = map[string]any{}
		s.states[instanceID] = existing
	}
	for k, v := range partial {
		existing[k] = v
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()
	s.persist(snapshot)
}

// DeleteState removes the entry entirely. Called when a widget instance is
// permanently removed from a page, so orphaned state cannot accumulate.
func (s *Store) DeleteState(instanceID string) {
	s.mu.Lock()
	delete(s.states, instanceID)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()
	s.persist(snapshot)
}

// ClearAll wipes every entry. Test/reset use.
func (s *Store) ClearAll() {
	s.mu.Lock()
	s.states = map[string]map[string]any{}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()
	s.persist(snapshot)
}

// Len reports how many instances currently hold state.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.states)
}

func (s *Store) snapshotLocked() map[string]map[string]any {
	out := make(map[string]map[string]any, len(s.states))
	for id, st := range s.states {
		out[id] = copyState(st)
	}
	return out
}

func (s *Store) persist(snapshot map[string]map[string]any) {
	if err := s.backend.Save(snapshot); err != nil {
		stateLogger.Sugar().Warnf("persist widget states failed: %v", err)
	}
}

func copyState(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
