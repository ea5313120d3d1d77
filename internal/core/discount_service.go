package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MrKriegler/go-warranty/internal/platform/ids"
)

type DiscountService interface {
	// RefreshCampaign creates the campaign code or pushes its window forward
	RefreshCampaign(ctx context.Context) (DiscountCode, error)

	// ExpireCodes archives codes whose validity window has passed
	ExpireCodes(ctx context.Context) (int64, error)

	// Get retrieves a code
	Get(ctx context.Context, code string) (DiscountCode, error)

	// List returns codes, optionally including archived ones
	List(ctx context.Context, includeArchived bool) ([]DiscountCode, error)

	// CheckRedeemable loads a code and verifies it can be applied to product
	CheckRedeemable(ctx context.Context, code, product string) (DiscountCode, error)
}

type discountService struct {
	codes    DiscountRepo
	campaign CampaignSettings
	clock    func() time.Time

	mu        sync.Mutex
	lastStart time.Time
}

func NewDiscountService(codes DiscountRepo, campaign CampaignSettings) (DiscountService, error) {
	if err := campaign.Validate(); err != nil {
		return nil, err
	}
	campaign.Code = NormalizeCode(campaign.Code)
	return &discountService{
		codes:    codes,
		campaign: campaign,
		clock:    time.Now,
	}, nil
}

// now is truncated to milliseconds, the coarsest precision any store keeps.
func (s *discountService) now() time.Time {
	return s.clock().UTC().Truncate(time.Millisecond)
}

// windowStart never hands out the same instant twice in this process.
func (s *discountService) windowStart() time.Time {
	t := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if !t.After(s.lastStart) {
		t = s.lastStart.Add(time.Millisecond)
	}
	s.lastStart = t
	return t
}

func (s *discountService) RefreshCampaign(ctx context.Context) (DiscountCode, error) {
	// 1) Compute the new window
	now := s.windowStart()
	validTo := now.AddDate(0, 0, s.campaign.ValidityDays)

	// 2) Every refresh ends later than the stored window, even when another
	// instance refreshed within the same millisecond
	current, err := s.codes.GetByCode(ctx, s.campaign.Code)
	switch {
	case err == nil:
		if !validTo.After(current.ValidTo) {
			validTo = current.ValidTo.Add(time.Millisecond)
		}
	case !errors.Is(err, ErrDiscountNotFound):
		return DiscountCode{}, fmt.Errorf("refresh campaign code %s: %w", s.campaign.Code, err)
	}

	// 3) Upsert
	code := DiscountCode{
		ID:                 ids.New(),
		Code:               s.campaign.Code,
		Type:               s.campaign.Type,
		Value:              s.campaign.Value,
		ValidFrom:          now,
		ValidTo:            validTo,
		UsageLimit:         nil,
		UsedCount:          0,
		Active:             true,
		Archived:           false,
		ApplicableProducts: s.campaign.ApplicableProducts,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := code.Validate(); err != nil {
		return DiscountCode{}, err
	}

	saved, err := s.codes.UpsertByCode(ctx, code)
	if errors.Is(err, ErrDiscountConflict) {
		// Race condition - a concurrent first insert won; the row exists now
		saved, err = s.codes.UpsertByCode(ctx, code)
	}
	if err != nil {
		return DiscountCode{}, fmt.Errorf("refresh campaign code %s: %w", code.Code, err)
	}
	return saved, nil
}

func (s *discountService) ExpireCodes(ctx context.Context) (int64, error) {
	n, err := s.codes.ExpireCodes(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("expire discount codes: %w", err)
	}
	return n, nil
}

func (s *discountService) Get(ctx context.Context, code string) (DiscountCode, error) {
	code = NormalizeCode(code)
	if code == "" {
		return DiscountCode{}, fmt.Errorf("%w: missing discount code", ErrValidation)
	}
	return s.codes.GetByCode(ctx, code)
}

func (s *discountService) List(ctx context.Context, includeArchived bool) ([]DiscountCode, error) {
	return s.codes.List(ctx, includeArchived)
}

func (s *discountService) CheckRedeemable(ctx context.Context, code, product string) (DiscountCode, error) {
	d, err := s.Get(ctx, code)
	if err != nil {
		return DiscountCode{}, err
	}
	if err := d.CheckRedeemable(s.clock()); err != nil {
		return d, err
	}
	if product != "" && !d.AppliesTo(product) {
		return d, ErrDiscountNotEligible
	}
	return d, nil
}
