// Package memory holds in-process stores for local runs and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/MrKriegler/go-warranty/internal/core"
)

type draftEntry struct {
	draft     core.QuoteDraft
	expiresAt time.Time // zero means no expiry
}

// DraftStore is a mutex-guarded map. Expired entries are dropped on read.
type DraftStore struct {
	mu    sync.Mutex
	items map[string]draftEntry
	clock func() time.Time
}

func NewDraftStore() *DraftStore {
	return &DraftStore{items: make(map[string]draftEntry), clock: time.Now}
}

func (s *DraftStore) Save(_ context.Context, draft core.QuoteDraft, ttl time.Duration) error {
	e := draftEntry{draft: draft}
	if ttl > 0 {
		e.expiresAt = s.clock().Add(ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[draft.ID] = e
	return nil
}

func (s *DraftStore) Get(_ context.Context, id string) (core.QuoteDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[id]
	if !ok {
		return core.QuoteDraft{}, core.ErrDraftNotFound
	}
	if !e.expiresAt.IsZero() && !s.clock().Before(e.expiresAt) {
		delete(s.items, id)
		return core.QuoteDraft{}, core.ErrDraftNotFound
	}
	return e.draft, nil
}

func (s *DraftStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}
