package core

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftServiceRoundTrip(t *testing.T) {
	store := &memDraftStore{}
	svc := NewDraftService(store, time.Hour).(*draftService)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.clock = func() time.Time { return now }
	ctx := context.Background()

	_, err := svc.Save(ctx, "d1", json.RawMessage(`{"reg":"AB12CDE"}`))
	require.NoError(t, err)

	got, err := svc.Get(ctx, "d1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"reg":"AB12CDE"}`, string(got.Data))
	assert.Equal(t, now, got.SavedAt)
}

func TestDraftServiceExpiresOnRead(t *testing.T) {
	store := &memDraftStore{}
	svc := NewDraftService(store, time.Hour).(*draftService)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.clock = func() time.Time { return now }
	ctx := context.Background()

	_, err := svc.Save(ctx, "d1", json.RawMessage(`{}`))
	require.NoError(t, err)

	now = now.Add(time.Hour)
	_, err = svc.Get(ctx, "d1")
	assert.ErrorIs(t, err, ErrDraftNotFound)
	assert.Empty(t, store.rows)
}

func TestDraftServiceRejectsBadInput(t *testing.T) {
	svc := NewDraftService(&memDraftStore{}, time.Hour)
	ctx := context.Background()

	_, err := svc.Save(ctx, "", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Save(ctx, "d1", json.RawMessage(`{not json`))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Get(ctx, "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestQuoteDraftExpired(t *testing.T) {
	saved := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	d := QuoteDraft{SavedAt: saved}

	assert.False(t, d.Expired(saved.Add(59*time.Minute), time.Hour))
	assert.True(t, d.Expired(saved.Add(time.Hour), time.Hour))
	assert.False(t, d.Expired(saved.Add(1000*time.Hour), 0))
}
