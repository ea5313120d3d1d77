package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MrKriegler/go-warranty/internal/platform/ids"
	"github.com/MrKriegler/go-warranty/internal/platform/metrics"
	"github.com/MrKriegler/go-warranty/internal/warranty"
)

type PolicyService interface {
	// IssueFromOrder creates a policy for a paid order; repeated calls with the
	// same order reference return the existing policy
	IssueFromOrder(ctx context.Context, in IssueInput) (Policy, error)

	// Get retrieves a policy by ID
	Get(ctx context.Context, id string) (Policy, error)

	// GetByNumber retrieves a policy by policy number
	GetByNumber(ctx context.Context, number string) (Policy, error)

	// ListByCustomer returns a customer's policies, newest first
	ListByCustomer(ctx context.Context, email string, limit, offset int) ([]Policy, int64, error)
}

type policyService struct {
	policies  PolicyRepo
	discounts DiscountService
	log       *slog.Logger
	clock     func() time.Time
}

// NewPolicyService wires policy issuance. discounts may be nil, in which case
// no campaign refresh happens on issuance.
func NewPolicyService(policies PolicyRepo, discounts DiscountService, log *slog.Logger) PolicyService {
	return &policyService{
		policies:  policies,
		discounts: discounts,
		log:       log,
		clock:     time.Now,
	}
}

func (s *policyService) IssueFromOrder(ctx context.Context, in IssueInput) (Policy, error) {
	// 1) Validate
	if err := in.Validate(); err != nil {
		return Policy{}, err
	}

	in.OrderRef = strings.TrimSpace(in.OrderRef)

	// 2) Idempotency on order reference
	existing, err := s.policies.GetByOrderRef(ctx, in.OrderRef)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrPolicyNotFound) {
		return Policy{}, err
	}

	// 3) Calculate dates and coverage
	now := s.clock().UTC().Truncate(time.Second)
	start := in.StartDate
	if start.IsZero() {
		start = now
	}
	start = start.UTC()

	if !warranty.IsKnownPaymentType(in.PaymentType) {
		metrics.UnknownPaymentTypesTotal.Inc()
	}
	months := warranty.DurationInMonths(in.PaymentType)

	policy := Policy{
		ID:       ids.New(),
		OrderRef: in.OrderRef,
		Customer: Customer{
			FirstName: strings.TrimSpace(in.Customer.FirstName),
			LastName:  strings.TrimSpace(in.Customer.LastName),
			Email:     NormalizeEmail(in.Customer.Email),
			Phone:     strings.TrimSpace(in.Customer.Phone),
		},
		Vehicle: Vehicle{
			Registration: NormalizeRegistration(in.Vehicle.Registration),
			Make:         in.Vehicle.Make,
			Model:        in.Vehicle.Model,
			Mileage:      in.Vehicle.Mileage,
		},
		PlanTier:       in.PlanTier,
		PaymentType:    in.PaymentType,
		DurationMonths: months,
		Coverage:       warranty.Coverage(in.PlanTier),
		DiscountCode:   NormalizeCode(in.DiscountCode),
		Status:         PolicyStatusActive,
		StartDate:      start,
		EndDate:        warranty.AddMonths(start, months),
		IssuedAt:       now,
	}

	// 4) Number and save policy
	policy, err = s.create(ctx, policy)
	if err != nil {
		if errors.Is(err, ErrPolicyExists) {
			// Race condition - policy was created by another request
			return s.policies.GetByOrderRef(ctx, in.OrderRef)
		}
		return Policy{}, err
	}
	metrics.PoliciesIssuedTotal.WithLabelValues(strings.ToLower(policy.PlanTier)).Inc()

	// 5) Refresh the campaign code (best-effort, the policy is already issued)
	s.refreshCampaign(ctx, policy)

	return policy, nil
}

// create numbers and inserts the policy, in one transaction when the store
// supports it.
func (s *policyService) create(ctx context.Context, policy Policy) (Policy, error) {
	if repo, ok := s.policies.(NumberingPolicyRepo); ok {
		return repo.CreateNumbered(ctx, policy)
	}

	number, err := s.policies.NextPolicyNumber(ctx)
	if err != nil {
		return Policy{}, fmt.Errorf("failed to generate policy number: %w", err)
	}
	policy.Number = number
	if err := s.policies.Create(ctx, policy); err != nil {
		return Policy{}, err
	}
	return policy, nil
}

func (s *policyService) refreshCampaign(ctx context.Context, policy Policy) {
	if s.discounts == nil {
		return
	}
	code, err := s.discounts.RefreshCampaign(ctx)
	if err != nil {
		metrics.CampaignRefreshTotal.WithLabelValues("error").Inc()
		s.log.ErrorContext(ctx, "campaign code refresh failed",
			"policy_number", policy.Number,
			"err", err)
		return
	}
	metrics.CampaignRefreshTotal.WithLabelValues("ok").Inc()
	s.log.InfoContext(ctx, "campaign code refreshed",
		"policy_number", policy.Number,
		"code", code.Code,
		"valid_to", code.ValidTo)
}

func (s *policyService) Get(ctx context.Context, id string) (Policy, error) {
	if id == "" {
		return Policy{}, fmt.Errorf("%w: missing policy ID", ErrValidation)
	}
	return s.policies.Get(ctx, id)
}

func (s *policyService) GetByNumber(ctx context.Context, number string) (Policy, error) {
	if number == "" {
		return Policy{}, fmt.Errorf("%w: missing policy number", ErrValidation)
	}
	return s.policies.GetByNumber(ctx, strings.ToUpper(number))
}

func (s *policyService) ListByCustomer(ctx context.Context, email string, limit, offset int) ([]Policy, int64, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, 0, fmt.Errorf("%w: missing customer email", ErrValidation)
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.policies.ListByCustomer(ctx, email, limit, offset)
}
