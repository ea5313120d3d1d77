package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrKriegler/go-warranty/internal/core"
)

const draftKeyPrefix = "warranty:quote_draft:"

func draftKey(id string) string {
	return draftKeyPrefix + id
}

// DraftStore keeps quote drafts as JSON values with a Redis TTL.
type DraftStore struct {
	client goredis.UniversalClient
}

func NewDraftStore(client goredis.UniversalClient) *DraftStore {
	return &DraftStore{client: client}
}

func (s *DraftStore) Save(ctx context.Context, draft core.QuoteDraft, ttl time.Duration) error {
	b, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("drafts.marshal: %w", err)
	}
	if err := s.client.Set(ctx, draftKey(draft.ID), b, ttl).Err(); err != nil {
		return fmt.Errorf("drafts.set: %w", err)
	}
	return nil
}

func (s *DraftStore) Get(ctx context.Context, id string) (core.QuoteDraft, error) {
	b, err := s.client.Get(ctx, draftKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return core.QuoteDraft{}, core.ErrDraftNotFound
		}
		return core.QuoteDraft{}, fmt.Errorf("drafts.get: %w", err)
	}

	var draft core.QuoteDraft
	if err := json.Unmarshal(b, &draft); err != nil {
		return core.QuoteDraft{}, fmt.Errorf("drafts.unmarshal: %w", err)
	}
	return draft, nil
}

func (s *DraftStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, draftKey(id)).Err(); err != nil {
		return fmt.Errorf("drafts.del: %w", err)
	}
	return nil
}
