package core

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/MrKriegler/go-warranty/internal/platform/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleIssueInput() IssueInput {
	return IssueInput{
		OrderRef: "pi_123",
		Customer: Customer{FirstName: "Sam", LastName: "Reed", Email: " Sam.Reed@Example.com "},
		Vehicle:  Vehicle{Registration: "ab12 cde", Make: "Ford", Model: "Focus", Mileage: 42000},
		PlanTier: "Gold",
		// Stored in the legacy snake_case form by checkout
		PaymentType: "two_yearly",
		StartDate:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestIssueFromOrder(t *testing.T) {
	policies := newMemPolicyRepo()
	discounts := newMemDiscountRepo()
	dsvc, _ := newTestDiscountService(t, discounts)
	svc := NewPolicyService(policies, dsvc, discardLogger())

	p, err := svc.IssueFromOrder(context.Background(), sampleIssueInput())
	require.NoError(t, err)

	assert.Equal(t, "WP-2025-000001", p.Number)
	assert.Equal(t, "sam.reed@example.com", p.Customer.Email)
	assert.Equal(t, "AB12CDE", p.Vehicle.Registration)
	assert.Equal(t, 24, p.DurationMonths)
	assert.Equal(t, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), p.EndDate)
	assert.True(t, p.Coverage.MOTFee)
	assert.True(t, p.Coverage.WearTear)
	assert.False(t, p.Coverage.TyreCover)
	assert.True(t, p.Coverage.TransferCover)
	assert.Equal(t, PolicyStatusActive, p.Status)

	// the order event refreshed the campaign code
	_, err = discounts.GetByCode(context.Background(), "EMAIL25SAVE")
	assert.NoError(t, err)
}

func TestIssueFromOrderIsIdempotent(t *testing.T) {
	policies := newMemPolicyRepo()
	svc := NewPolicyService(policies, nil, discardLogger())
	ctx := context.Background()

	first, err := svc.IssueFromOrder(ctx, sampleIssueInput())
	require.NoError(t, err)
	second, err := svc.IssueFromOrder(ctx, sampleIssueInput())
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, policies.rows, 1)
}

func TestIssueFromOrderReplayWithPaddedOrderRef(t *testing.T) {
	policies := newMemPolicyRepo()
	svc := NewPolicyService(policies, nil, discardLogger())
	ctx := context.Background()

	in := sampleIssueInput()
	in.OrderRef = " pi_pad "
	first, err := svc.IssueFromOrder(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "pi_pad", first.OrderRef)

	for _, ref := range []string{" pi_pad ", "pi_pad", "\tpi_pad"} {
		in.OrderRef = ref
		again, err := svc.IssueFromOrder(ctx, in)
		require.NoError(t, err, "order ref %q", ref)
		assert.Equal(t, first.ID, again.ID)
		assert.Equal(t, first.Number, again.Number)
	}
	assert.Len(t, policies.rows, 1)
	assert.Equal(t, 1, policies.seq, "replays must not consume policy numbers")
}

func TestIssueFromOrderPrefersAtomicNumbering(t *testing.T) {
	repo := &numberingPolicyRepo{memPolicyRepo: newMemPolicyRepo()}
	svc := NewPolicyService(repo, nil, discardLogger())
	ctx := context.Background()

	p, err := svc.IssueFromOrder(ctx, sampleIssueInput())
	require.NoError(t, err)
	assert.Equal(t, "WP-2025-000001", p.Number)
	assert.Equal(t, 1, repo.calls)

	// A lost race returns the winner and leaves the sequence untouched.
	repo.missFirst = true
	got, err := svc.IssueFromOrder(ctx, sampleIssueInput())
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, 2, repo.calls)
	assert.Equal(t, 1, repo.seq)
}

func TestIssueFromOrderUnknownPaymentTypeWarnsOnce(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	before := testutil.ToFloat64(metrics.UnknownPaymentTypesTotal)

	svc := NewPolicyService(newMemPolicyRepo(), nil, discardLogger())
	in := sampleIssueInput()
	in.PaymentType = "fortnightly"
	_, err := svc.IssueFromOrder(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.UnknownPaymentTypesTotal))
	assert.Equal(t, 1, strings.Count(buf.String(), "unknown payment type"))
}

func TestIssueFromOrderSurvivesDiscountFailure(t *testing.T) {
	discounts := newMemDiscountRepo()
	discounts.upsertErrs = []error{errors.New("db down")}
	dsvc, _ := newTestDiscountService(t, discounts)
	svc := NewPolicyService(newMemPolicyRepo(), dsvc, discardLogger())

	p, err := svc.IssueFromOrder(context.Background(), sampleIssueInput())
	require.NoError(t, err)
	assert.NotEmpty(t, p.Number)
}

func TestIssueFromOrderDefaultsUnknownPaymentType(t *testing.T) {
	svc := NewPolicyService(newMemPolicyRepo(), nil, discardLogger())
	in := sampleIssueInput()
	in.PaymentType = "quarterly"

	p, err := svc.IssueFromOrder(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 12, p.DurationMonths)
	assert.Equal(t, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), p.EndDate)
}

func TestIssueFromOrderValidation(t *testing.T) {
	svc := NewPolicyService(newMemPolicyRepo(), nil, discardLogger())

	tests := map[string]func(*IssueInput){
		"missing order ref": func(in *IssueInput) { in.OrderRef = " " },
		"bad email":         func(in *IssueInput) { in.Customer.Email = "nope" },
		"missing reg":       func(in *IssueInput) { in.Vehicle.Registration = "" },
		"missing tier":      func(in *IssueInput) { in.PlanTier = "" },
		"missing payment":   func(in *IssueInput) { in.PaymentType = "" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			in := sampleIssueInput()
			mutate(&in)
			_, err := svc.IssueFromOrder(context.Background(), in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestIssueFromOrderRaceReturnsWinner(t *testing.T) {
	policies := newMemPolicyRepo()
	svc := NewPolicyService(policies, nil, discardLogger())
	ctx := context.Background()

	winner, err := svc.IssueFromOrder(ctx, sampleIssueInput())
	require.NoError(t, err)

	// Simulate a lost race: lookup misses, insert hits the unique index.
	policies.createErr = ErrPolicyExists
	racing := &racyPolicyRepo{memPolicyRepo: policies, missFirst: true}
	svc = NewPolicyService(racing, nil, discardLogger())

	got, err := svc.IssueFromOrder(ctx, sampleIssueInput())
	require.NoError(t, err)
	assert.Equal(t, winner.ID, got.ID)
}

type racyPolicyRepo struct {
	*memPolicyRepo
	missFirst bool
}

func (r *racyPolicyRepo) GetByOrderRef(ctx context.Context, orderRef string) (Policy, error) {
	if r.missFirst {
		r.missFirst = false
		return Policy{}, ErrPolicyNotFound
	}
	return r.memPolicyRepo.GetByOrderRef(ctx, orderRef)
}

// numberingPolicyRepo allocates and inserts in one step, rolling the number
// back when the order reference already exists.
type numberingPolicyRepo struct {
	*memPolicyRepo
	missFirst bool
	calls     int
}

func (r *numberingPolicyRepo) GetByOrderRef(ctx context.Context, orderRef string) (Policy, error) {
	if r.missFirst {
		r.missFirst = false
		return Policy{}, ErrPolicyNotFound
	}
	return r.memPolicyRepo.GetByOrderRef(ctx, orderRef)
}

func (r *numberingPolicyRepo) CreateNumbered(ctx context.Context, p Policy) (Policy, error) {
	r.calls++
	if _, err := r.memPolicyRepo.GetByOrderRef(ctx, p.OrderRef); err == nil {
		return Policy{}, ErrPolicyExists
	}
	number, err := r.NextPolicyNumber(ctx)
	if err != nil {
		return Policy{}, err
	}
	p.Number = number
	if err := r.Create(ctx, p); err != nil {
		return Policy{}, err
	}
	return p, nil
}

func TestListByCustomerClampsPaging(t *testing.T) {
	policies := newMemPolicyRepo()
	svc := NewPolicyService(policies, nil, discardLogger())
	ctx := context.Background()

	for _, ref := range []string{"a", "b", "c"} {
		in := sampleIssueInput()
		in.OrderRef = ref
		_, err := svc.IssueFromOrder(ctx, in)
		require.NoError(t, err)
	}

	list, total, err := svc.ListByCustomer(ctx, "SAM.REED@example.com", 0, -5)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, list, 3)

	_, _, err = svc.ListByCustomer(ctx, "", 10, 0)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPolicyLookups(t *testing.T) {
	svc := NewPolicyService(newMemPolicyRepo(), nil, discardLogger())
	ctx := context.Background()

	p, err := svc.IssueFromOrder(ctx, sampleIssueInput())
	require.NoError(t, err)

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Number, got.Number)

	got, err = svc.GetByNumber(ctx, "wp-2025-000001")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = svc.Get(ctx, "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
