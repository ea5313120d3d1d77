package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCampaign() CampaignSettings {
	return CampaignSettings{
		Code:         "email25save",
		Type:         DiscountTypeFixed,
		Value:        25,
		ValidityDays: 30,
	}
}

type stepClock struct {
	now time.Time
}

func (c *stepClock) Now() time.Time { return c.now }

func (c *stepClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestDiscountService(t *testing.T, repo DiscountRepo) (*discountService, *stepClock) {
	t.Helper()
	svc, err := NewDiscountService(repo, testCampaign())
	require.NoError(t, err)
	clock := &stepClock{now: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
	ds := svc.(*discountService)
	ds.clock = clock.Now
	return ds, clock
}

func TestRefreshCampaignCreatesCode(t *testing.T) {
	repo := newMemDiscountRepo()
	svc, clock := newTestDiscountService(t, repo)

	code, err := svc.RefreshCampaign(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "EMAIL25SAVE", code.Code)
	assert.Equal(t, DiscountTypeFixed, code.Type)
	assert.InDelta(t, 25.0, code.Value, 0.0001)
	assert.Equal(t, clock.now, code.ValidFrom)
	assert.Equal(t, clock.now.AddDate(0, 0, 30), code.ValidTo)
	assert.Nil(t, code.UsageLimit)
	assert.Zero(t, code.UsedCount)
	assert.True(t, code.Active)
	assert.False(t, code.Archived)
}

func TestRefreshCampaignTwiceKeepsOneRowAndExtendsWindow(t *testing.T) {
	repo := newMemDiscountRepo()
	svc, clock := newTestDiscountService(t, repo)
	ctx := context.Background()

	first, err := svc.RefreshCampaign(ctx)
	require.NoError(t, err)

	// Redemptions happen elsewhere; simulate one and an archived state.
	row := repo.rows["EMAIL25SAVE"]
	row.UsedCount = 7
	row.Archived = true
	limit := 10
	row.UsageLimit = &limit
	repo.rows["EMAIL25SAVE"] = row

	clock.Advance(2 * time.Hour)
	second, err := svc.RefreshCampaign(ctx)
	require.NoError(t, err)

	codes, err := svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, codes, 1)

	assert.True(t, second.ValidTo.After(first.ValidTo))
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 7, second.UsedCount)
	assert.Nil(t, second.UsageLimit)
	assert.False(t, second.Archived)
	assert.True(t, second.Active)
}

func TestRefreshCampaignWithinOneSecondStillExtendsWindow(t *testing.T) {
	tests := map[string]time.Duration{
		"sub-second":   300 * time.Millisecond,
		"same instant": 0,
	}
	for name, step := range tests {
		t.Run(name, func(t *testing.T) {
			repo := newMemDiscountRepo()
			svc, clock := newTestDiscountService(t, repo)
			ctx := context.Background()

			first, err := svc.RefreshCampaign(ctx)
			require.NoError(t, err)

			clock.Advance(step)
			second, err := svc.RefreshCampaign(ctx)
			require.NoError(t, err)

			assert.True(t, second.ValidTo.After(first.ValidTo),
				"first=%s second=%s", first.ValidTo, second.ValidTo)
			assert.True(t, second.ValidFrom.After(first.ValidFrom))
		})
	}
}

func TestRefreshCampaignNeverEndsBeforeStoredWindow(t *testing.T) {
	repo := newMemDiscountRepo()
	svc, clock := newTestDiscountService(t, repo)

	// Another instance already refreshed with a later clock.
	stored := clock.now.AddDate(0, 0, 30).Add(750 * time.Millisecond)
	repo.rows["EMAIL25SAVE"] = DiscountCode{
		ID:        "existing",
		Code:      "EMAIL25SAVE",
		Type:      DiscountTypeFixed,
		Value:     25,
		ValidFrom: clock.now.Add(750 * time.Millisecond),
		ValidTo:   stored,
		Active:    true,
	}

	code, err := svc.RefreshCampaign(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "existing", code.ID)
	assert.Equal(t, stored.Add(time.Millisecond), code.ValidTo)
}

func TestRefreshCampaignRetriesOnConflict(t *testing.T) {
	repo := newMemDiscountRepo()
	repo.upsertErrs = []error{ErrDiscountConflict}
	svc, _ := newTestDiscountService(t, repo)

	code, err := svc.RefreshCampaign(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "EMAIL25SAVE", code.Code)
}

func TestRefreshCampaignSurfacesStoreErrors(t *testing.T) {
	repo := newMemDiscountRepo()
	boom := errors.New("connection reset")
	repo.upsertErrs = []error{boom}
	svc, _ := newTestDiscountService(t, repo)

	_, err := svc.RefreshCampaign(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestExpireCodesIsIdempotent(t *testing.T) {
	repo := newMemDiscountRepo()
	svc, clock := newTestDiscountService(t, repo)
	ctx := context.Background()

	_, err := svc.RefreshCampaign(ctx)
	require.NoError(t, err)

	n, err := svc.ExpireCodes(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	clock.Advance(31 * 24 * time.Hour)
	n, err = svc.ExpireCodes(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = svc.ExpireCodes(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	code, err := svc.Get(ctx, "EMAIL25SAVE")
	require.NoError(t, err)
	assert.True(t, code.Archived)
}

func TestCheckRedeemable(t *testing.T) {
	repo := newMemDiscountRepo()
	svc, clock := newTestDiscountService(t, repo)
	ctx := context.Background()

	_, err := svc.RefreshCampaign(ctx)
	require.NoError(t, err)

	_, err = svc.CheckRedeemable(ctx, " email25save ", "gold")
	assert.NoError(t, err)

	clock.Advance(31 * 24 * time.Hour)
	_, err = svc.CheckRedeemable(ctx, "EMAIL25SAVE", "")
	assert.ErrorIs(t, err, ErrDiscountExpired)

	_, err = svc.ExpireCodes(ctx)
	require.NoError(t, err)
	_, err = svc.CheckRedeemable(ctx, "EMAIL25SAVE", "")
	assert.ErrorIs(t, err, ErrDiscountArchived)

	_, err = svc.CheckRedeemable(ctx, "NOPE", "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.CheckRedeemable(ctx, "  ", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDiscountCodeCheckRedeemable(t *testing.T) {
	now := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	base := DiscountCode{
		Code:      "X",
		Active:    true,
		ValidFrom: now.AddDate(0, 0, -1),
		ValidTo:   now.AddDate(0, 0, 1),
	}
	limit := 2

	tests := []struct {
		name   string
		mutate func(*DiscountCode)
		want   error
	}{
		{"valid", func(*DiscountCode) {}, nil},
		{"archived beats everything", func(d *DiscountCode) { d.Archived = true; d.ValidTo = now.AddDate(1, 0, 0) }, ErrDiscountArchived},
		{"inactive", func(d *DiscountCode) { d.Active = false }, ErrDiscountInactive},
		{"not yet valid", func(d *DiscountCode) { d.ValidFrom = now.Add(time.Hour) }, ErrDiscountNotYetValid},
		{"expired at boundary", func(d *DiscountCode) { d.ValidTo = now }, ErrDiscountExpired},
		{"usage exhausted", func(d *DiscountCode) { d.UsageLimit = &limit; d.UsedCount = 2 }, ErrDiscountExhausted},
		{"usage left", func(d *DiscountCode) { d.UsageLimit = &limit; d.UsedCount = 1 }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := base
			tt.mutate(&d)
			err := d.CheckRedeemable(now)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDiscountCodeValidate(t *testing.T) {
	now := time.Now()
	d := DiscountCode{Code: "X", ValidFrom: now, ValidTo: now}
	assert.ErrorIs(t, d.Validate(), ErrValidation)

	d.ValidTo = now.Add(time.Second)
	assert.NoError(t, d.Validate())
}

func TestAppliesTo(t *testing.T) {
	d := DiscountCode{}
	assert.True(t, d.AppliesTo("anything"))

	d.ApplicableProducts = []string{"Gold", "platinum"}
	assert.True(t, d.AppliesTo("gold"))
	assert.False(t, d.AppliesTo("basic"))
}

func TestCampaignSettingsValidate(t *testing.T) {
	ok := testCampaign()
	assert.NoError(t, ok.Validate())

	bad := ok
	bad.Code = " "
	assert.ErrorIs(t, bad.Validate(), ErrValidation)

	bad = ok
	bad.Type = "bogus"
	assert.ErrorIs(t, bad.Validate(), ErrValidation)

	bad = ok
	bad.Type = DiscountTypePercentage
	bad.Value = 150
	assert.ErrorIs(t, bad.Validate(), ErrValidation)

	bad = ok
	bad.ValidityDays = 0
	assert.ErrorIs(t, bad.Validate(), ErrValidation)

	_, err := NewDiscountService(newMemDiscountRepo(), bad)
	assert.Error(t, err)
}
