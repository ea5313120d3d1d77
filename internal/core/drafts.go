package core

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// QuoteDraft is checkout state saved between visits.
type QuoteDraft struct {
	ID      string          `json:"id"`
	Data    json.RawMessage `json:"data"`
	SavedAt time.Time       `json:"saved_at"`
}

// Expired reports whether the draft is older than ttl at now.
func (d QuoteDraft) Expired(now time.Time, ttl time.Duration) bool {
	return ttl > 0 && now.Sub(d.SavedAt) >= ttl
}

// DraftStore is a key/value store whose entries expire after a TTL.
type DraftStore interface {
	Save(ctx context.Context, draft QuoteDraft, ttl time.Duration) error
	Get(ctx context.Context, id string) (QuoteDraft, error)
	Delete(ctx context.Context, id string) error
}

const maxDraftBytes = 64 << 10

func (d QuoteDraft) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("%w: missing draft ID", ErrValidation)
	}
	if len(d.Data) == 0 || !json.Valid(d.Data) {
		return fmt.Errorf("%w: draft data must be JSON", ErrValidation)
	}
	if len(d.Data) > maxDraftBytes {
		return fmt.Errorf("%w: draft data too large", ErrValidation)
	}
	return nil
}

var ErrDraftNotFound = fmt.Errorf("%w: quote draft not found", ErrNotFound)

type DraftService interface {
	Save(ctx context.Context, id string, data json.RawMessage) (QuoteDraft, error)
	Get(ctx context.Context, id string) (QuoteDraft, error)
	Delete(ctx context.Context, id string) error
}

type draftService struct {
	store DraftStore
	ttl   time.Duration
	clock func() time.Time
}

func NewDraftService(store DraftStore, ttl time.Duration) DraftService {
	return &draftService{store: store, ttl: ttl, clock: time.Now}
}

func (s *draftService) Save(ctx context.Context, id string, data json.RawMessage) (QuoteDraft, error) {
	draft := QuoteDraft{ID: id, Data: data, SavedAt: s.clock().UTC()}
	if err := draft.Validate(); err != nil {
		return QuoteDraft{}, err
	}
	if err := s.store.Save(ctx, draft, s.ttl); err != nil {
		return QuoteDraft{}, err
	}
	return draft, nil
}

func (s *draftService) Get(ctx context.Context, id string) (QuoteDraft, error) {
	if id == "" {
		return QuoteDraft{}, fmt.Errorf("%w: missing draft ID", ErrValidation)
	}
	draft, err := s.store.Get(ctx, id)
	if err != nil {
		return QuoteDraft{}, err
	}
	// Stores may keep entries past the TTL; the timestamp is authoritative
	if draft.Expired(s.clock(), s.ttl) {
		_ = s.store.Delete(ctx, id)
		return QuoteDraft{}, ErrDraftNotFound
	}
	return draft, nil
}

func (s *draftService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: missing draft ID", ErrValidation)
	}
	return s.store.Delete(ctx, id)
}
