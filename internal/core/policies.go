package core

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/MrKriegler/go-warranty/internal/warranty"
)

type PolicyStatus string

const (
	PolicyStatusActive    PolicyStatus = "active"
	PolicyStatusCancelled PolicyStatus = "cancelled"
	PolicyStatusExpired   PolicyStatus = "expired"
)

// Customer is the buyer snapshot taken at checkout.
type Customer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

// Vehicle is the covered vehicle.
type Vehicle struct {
	Registration string `json:"registration"`
	Make         string `json:"make,omitempty"`
	Model        string `json:"model,omitempty"`
	Mileage      int    `json:"mileage,omitempty"`
}

// Policy is an issued vehicle warranty.
type Policy struct {
	ID             string                     `json:"id"`
	Number         string                     `json:"number"`    // e.g. WP-2025-000001
	OrderRef       string                     `json:"order_ref"` // payment processor reference, unique
	Customer       Customer                   `json:"customer"`
	Vehicle        Vehicle                    `json:"vehicle"`
	PlanTier       string                     `json:"plan_tier"`
	PaymentType    string                     `json:"payment_type"`
	DurationMonths int                        `json:"duration_months"`
	Coverage       warranty.EligibilityMatrix `json:"coverage"`
	DiscountCode   string                     `json:"discount_code,omitempty"`
	Status         PolicyStatus               `json:"status"`
	StartDate      time.Time                  `json:"start_date"`
	EndDate        time.Time                  `json:"end_date"` // StartDate + DurationMonths
	IssuedAt       time.Time                  `json:"issued_at"`
}

// IssueInput is what checkout hands over once payment has succeeded.
type IssueInput struct {
	OrderRef     string    `json:"order_ref"`
	Customer     Customer  `json:"customer"`
	Vehicle      Vehicle   `json:"vehicle"`
	PlanTier     string    `json:"plan_tier"`
	PaymentType  string    `json:"payment_type"`
	DiscountCode string    `json:"discount_code,omitempty"`
	StartDate    time.Time `json:"start_date"`
}

type PolicyRepo interface {
	Create(ctx context.Context, policy Policy) error
	Get(ctx context.Context, id string) (Policy, error)
	GetByNumber(ctx context.Context, number string) (Policy, error)
	GetByOrderRef(ctx context.Context, orderRef string) (Policy, error)
	ListByCustomer(ctx context.Context, email string, limit, offset int) ([]Policy, int64, error)
	NextPolicyNumber(ctx context.Context) (string, error)
}

// NumberingPolicyRepo is implemented by stores that allocate the policy number
// and insert the policy atomically; a duplicate order reference does not
// consume a number.
type NumberingPolicyRepo interface {
	CreateNumbered(ctx context.Context, policy Policy) (Policy, error)
}

func (in IssueInput) Validate() error {
	if strings.TrimSpace(in.OrderRef) == "" {
		return fmt.Errorf("%w: missing order reference", ErrValidation)
	}
	if _, err := mail.ParseAddress(in.Customer.Email); err != nil {
		return fmt.Errorf("%w: invalid customer email", ErrValidation)
	}
	if strings.TrimSpace(in.Vehicle.Registration) == "" {
		return fmt.Errorf("%w: missing vehicle registration", ErrValidation)
	}
	if strings.TrimSpace(in.PlanTier) == "" {
		return fmt.Errorf("%w: missing plan tier", ErrValidation)
	}
	if strings.TrimSpace(in.PaymentType) == "" {
		return fmt.Errorf("%w: missing payment type", ErrValidation)
	}
	return nil
}

// NormalizeEmail lower-cases and trims an email for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeRegistration strips spaces and upper-cases a number plate.
func NormalizeRegistration(reg string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(reg), " ", ""))
}

var (
	ErrPolicyNotFound = fmt.Errorf("%w: policy not found", ErrNotFound)
	ErrPolicyExists   = fmt.Errorf("%w: policy already exists for order", ErrConflict)
)
