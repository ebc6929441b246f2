// Package audit keeps the append-only trail of every validation decision.
package audit

import (
	"context"
	"sort"
	"sync"

	"github.com/ppiankov/quizguard/internal/model"
)

// Store persists audit entries. Entries are never updated or deleted;
// corrections are new entries that supersede older ones.
type Store interface {
	// Append persists one entry
	Append(ctx context.Context, entry model.AuditEntry) error

	// Entries returns the entries for one content id in sequence order
	Entries(ctx context.Context, contentID string) ([]model.AuditEntry, error)

	// All returns every entry in sequence order
	All(ctx context.Context) ([]model.AuditEntry, error)

	// LastSequence returns the highest sequence stored, 0 when empty
	LastSequence(ctx context.Context) (int64, error)
}

// MemoryStore is an in-process Store
type MemoryStore struct {
	mu      sync.RWMutex
	entries []model.AuditEntry
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(ctx context.Context, entry model.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry.Clone())
	return nil
}

func (s *MemoryStore) Entries(ctx context.Context, contentID string) ([]model.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.AuditEntry
	for _, e := range s.entries {
		if e.ContentID == contentID {
			out = append(out, e.Clone())
		}
	}
	sortBySequence(out)
	return out, nil
}

func (s *MemoryStore) All(ctx context.Context) ([]model.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.AuditEntry, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Clone()
	}
	sortBySequence(out)
	return out, nil
}

func (s *MemoryStore) LastSequence(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var last int64
	for _, e := range s.entries {
		if e.Sequence > last {
			last = e.Sequence
		}
	}
	return last, nil
}

func sortBySequence(entries []model.AuditEntry) {
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Sequence < entries[j].Sequence })
}

func filterContent(entries []model.AuditEntry, contentID string) []model.AuditEntry {
	var out []model.AuditEntry
	for _, e := range entries {
		if e.ContentID == contentID {
			out = append(out, e)
		}
	}
	return out
}
