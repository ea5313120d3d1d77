package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MrKriegler/go-warranty/internal/warranty"
)

type QuoteInput struct {
	PlanTier    string    `json:"plan_tier"`
	PaymentType string    `json:"payment_type"`
	StartDate   time.Time `json:"start_date"`
}

// WarrantyQuote is what checkout renders before payment.
type WarrantyQuote struct {
	PlanTier         string                     `json:"plan_tier"`
	PaymentType      string                     `json:"payment_type"`
	Months           int                        `json:"months"`
	DisplayText      string                     `json:"display_text"`
	PaymentFrequency string                     `json:"payment_frequency"`
	EmailText        string                     `json:"email_text"`
	StartDate        time.Time                  `json:"start_date"`
	EndDate          time.Time                  `json:"end_date"`
	Coverage         warranty.EligibilityMatrix `json:"coverage"`
	KnownPaymentType bool                       `json:"known_payment_type"`
	LegacyMismatch   bool                       `json:"legacy_mismatch"`
}

// Quoting is pure domain logic; no I/O.
type QuoteService interface {
	Quote(ctx context.Context, in QuoteInput) (WarrantyQuote, error)
}

func (in QuoteInput) Validate() error {
	if strings.TrimSpace(in.PlanTier) == "" {
		return fmt.Errorf("%w: missing plan tier", ErrValidation)
	}
	if strings.TrimSpace(in.PaymentType) == "" {
		return fmt.Errorf("%w: missing payment type", ErrValidation)
	}
	return nil
}
