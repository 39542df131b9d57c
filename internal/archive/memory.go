package archive

import (
	"context"
	"sort"
	"sync"
)

// MemoryArchive is the in-process fallback when no database is
// configured. Same contract as the Postgres archive, nothing survives
// a restart.
type MemoryArchive struct {
	mu      sync.RWMutex
	records map[string]*Record
}

func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{records: make(map[string]*Record)}
}

func (a *MemoryArchive) SaveGame(_ context.Context, rec *Record) error {
	if rec == nil {
		return nil
	}
	cp := *rec
	a.mu.Lock()
	a.records[rec.SessionID] = &cp
	a.mu.Unlock()
	return nil
}

func (a *MemoryArchive) RecentGames(_ context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 20
	}
	a.mu.RLock()
	out := make([]*Record, 0, len(a.records))
	for _, rec := range a.records {
		cp := *rec
		out = append(out, &cp)
	}
	a.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].EndedAt.After(out[j].EndedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (a *MemoryArchive) GameBySession(_ context.Context, sessionID string) (*Record, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	rec, ok := a.records[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (a *MemoryArchive) Close() error { return nil }
