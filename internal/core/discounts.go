package core

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type DiscountType string

const (
	DiscountTypeFixed      DiscountType = "fixed"
	DiscountTypePercentage DiscountType = "percentage"
)

// DiscountCode is a promotional code. Campaign codes are shared by every
// customer and have their validity window pushed forward on each order.
type DiscountCode struct {
	ID                 string       `json:"id"`
	Code               string       `json:"code"`
	Type               DiscountType `json:"type"`
	Value              float64      `json:"value"`
	ValidFrom          time.Time    `json:"valid_from"`
	ValidTo            time.Time    `json:"valid_to"`
	UsageLimit         *int         `json:"usage_limit"` // nil means unlimited
	UsedCount          int          `json:"used_count"`
	Active             bool         `json:"active"`
	Archived           bool         `json:"archived"`
	ApplicableProducts []string     `json:"applicable_products"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

// CampaignSettings configures the shared campaign code.
type CampaignSettings struct {
	Code               string
	Type               DiscountType
	Value              float64
	ValidityDays       int
	ApplicableProducts []string
}

type DiscountRepo interface {
	// UpsertByCode inserts d or, when the code exists, overwrites type, value,
	// validity window, usage limit and sets it active and unarchived. UsedCount,
	// ID and ApplicableProducts of an existing row are kept. Must be atomic.
	UpsertByCode(ctx context.Context, d DiscountCode) (DiscountCode, error)
	GetByCode(ctx context.Context, code string) (DiscountCode, error)
	List(ctx context.Context, includeArchived bool) ([]DiscountCode, error)
	// ExpireCodes archives every unarchived code with valid_to before cutoff.
	ExpireCodes(ctx context.Context, before time.Time) (int64, error)
}

// NormalizeCode canonicalizes a code for storage and lookup.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s CampaignSettings) Validate() error {
	if NormalizeCode(s.Code) == "" {
		return fmt.Errorf("%w: missing campaign code", ErrValidation)
	}
	switch s.Type {
	case DiscountTypeFixed:
	case DiscountTypePercentage:
		if s.Value > 100 {
			return fmt.Errorf("%w: percentage discount above 100", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown discount type %q", ErrValidation, s.Type)
	}
	if s.Value <= 0 {
		return fmt.Errorf("%w: discount value must be > 0", ErrValidation)
	}
	if s.ValidityDays <= 0 {
		return fmt.Errorf("%w: validity days must be > 0", ErrValidation)
	}
	return nil
}

func (d DiscountCode) Validate() error {
	if d.Code == "" {
		return fmt.Errorf("%w: missing code", ErrValidation)
	}
	if !d.ValidTo.After(d.ValidFrom) {
		return fmt.Errorf("%w: valid_to must be after valid_from", ErrValidation)
	}
	if d.UsageLimit != nil && *d.UsageLimit < 0 {
		return fmt.Errorf("%w: usage limit must be >= 0", ErrValidation)
	}
	return nil
}

// CheckRedeemable returns nil when the code can be applied at now.
// Archived codes are never redeemable.
func (d DiscountCode) CheckRedeemable(now time.Time) error {
	switch {
	case d.Archived:
		return ErrDiscountArchived
	case !d.Active:
		return ErrDiscountInactive
	case now.Before(d.ValidFrom):
		return ErrDiscountNotYetValid
	case !now.Before(d.ValidTo):
		return ErrDiscountExpired
	case d.UsageLimit != nil && d.UsedCount >= *d.UsageLimit:
		return ErrDiscountExhausted
	}
	return nil
}

// AppliesTo reports whether the code may be used for product. An empty
// product list means every product.
func (d DiscountCode) AppliesTo(product string) bool {
	if len(d.ApplicableProducts) == 0 {
		return true
	}
	for _, p := range d.ApplicableProducts {
		if strings.EqualFold(p, product) {
			return true
		}
	}
	return false
}

var (
	ErrDiscountNotFound    = fmt.Errorf("%w: discount code not found", ErrNotFound)
	ErrDiscountConflict    = fmt.Errorf("%w: discount code already exists", ErrConflict)
	ErrDiscountArchived    = fmt.Errorf("%w: discount code is archived", ErrInvalidState)
	ErrDiscountInactive    = fmt.Errorf("%w: discount code is inactive", ErrInvalidState)
	ErrDiscountNotYetValid = fmt.Errorf("%w: discount code is not valid yet", ErrInvalidState)
	ErrDiscountExpired     = fmt.Errorf("%w: discount code has expired", ErrInvalidState)
	ErrDiscountExhausted   = fmt.Errorf("%w: discount code usage limit reached", ErrInvalidState)
	ErrDiscountNotEligible = fmt.Errorf("%w: discount code does not apply to product", ErrInvalidState)
)
