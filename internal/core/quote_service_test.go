package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuote(t *testing.T) {
	svc := NewQuoteService()

	q, err := svc.Quote(context.Background(), QuoteInput{
		PlanTier:    "Platinum",
		PaymentType: "FIVE_YEARLY",
		StartDate:   time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, 60, q.Months)
	assert.Equal(t, "60 months", q.DisplayText)
	assert.Equal(t, "60 months", q.PaymentFrequency)
	assert.Equal(t, time.Date(2029, 2, 28, 0, 0, 0, 0, time.UTC), q.EndDate)
	assert.True(t, q.Coverage.EuropeCover)
	assert.True(t, q.KnownPaymentType)
	// the legacy resolver has no 60 month tier
	assert.True(t, q.LegacyMismatch)
}

func TestQuoteDefaultsStartDateToToday(t *testing.T) {
	svc := NewQuoteService().(*quoteService)
	svc.clock = func() time.Time { return time.Date(2025, 5, 6, 15, 4, 5, 0, time.UTC) }

	q, err := svc.Quote(context.Background(), QuoteInput{PlanTier: "basic", PaymentType: "monthly"})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 5, 6, 0, 0, 0, 0, time.UTC), q.StartDate)
	assert.Equal(t, time.Date(2026, 5, 6, 0, 0, 0, 0, time.UTC), q.EndDate)
	assert.Equal(t, "Monthly", q.PaymentFrequency)
	assert.False(t, q.LegacyMismatch)
}

func TestQuoteUnknownPaymentType(t *testing.T) {
	q, err := NewQuoteService().Quote(context.Background(), QuoteInput{PlanTier: "gold", PaymentType: "weekly"})
	require.NoError(t, err)

	assert.Equal(t, 12, q.Months)
	assert.Equal(t, "weekly", q.PaymentFrequency)
	assert.False(t, q.KnownPaymentType)
}

func TestQuoteValidation(t *testing.T) {
	_, err := NewQuoteService().Quote(context.Background(), QuoteInput{PaymentType: "monthly"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewQuoteService().Quote(context.Background(), QuoteInput{PlanTier: "gold"})
	assert.ErrorIs(t, err, ErrValidation)
}
