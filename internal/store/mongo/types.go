package mongo

import (
	"time"

	"github.com/MrKriegler/go-warranty/internal/core"
	"github.com/MrKriegler/go-warranty/internal/warranty"
)

const (
	ColDiscountCodes = "discount_codes"
	ColPolicies      = "policies"
	ColCounters      = "counters"
)

// DiscountCode
type DiscountCodeDoc struct {
	ID                 string    `bson:"_id"`
	Code               string    `bson:"code"` // unique index
	Type               string    `bson:"type"`
	Value              float64   `bson:"value"`
	ValidFrom          time.Time `bson:"valid_from"`
	ValidTo            time.Time `bson:"valid_to"`
	UsageLimit         *int      `bson:"usage_limit"`
	UsedCount          int       `bson:"used_count"`
	Active             bool      `bson:"active"`
	Archived           bool      `bson:"archived"`
	ApplicableProducts []string  `bson:"applicable_products"`
	CreatedAt          time.Time `bson:"created_at"`
	UpdatedAt          time.Time `bson:"updated_at"`
}

func fromDiscountCodeDoc(d DiscountCodeDoc) core.DiscountCode {
	return core.DiscountCode{
		ID:                 d.ID,
		Code:               d.Code,
		Type:               core.DiscountType(d.Type),
		Value:              d.Value,
		ValidFrom:          d.ValidFrom.UTC(),
		ValidTo:            d.ValidTo.UTC(),
		UsageLimit:         d.UsageLimit,
		UsedCount:          d.UsedCount,
		Active:             d.Active,
		Archived:           d.Archived,
		ApplicableProducts: d.ApplicableProducts,
		CreatedAt:          d.CreatedAt.UTC(),
		UpdatedAt:          d.UpdatedAt.UTC(),
	}
}

// Policy
type CustomerDoc struct {
	FirstName string `bson:"first_name"`
	LastName  string `bson:"last_name"`
	Email     string `bson:"email"`
	Phone     string `bson:"phone,omitempty"`
}

type VehicleDoc struct {
	Registration string `bson:"registration"`
	Make         string `bson:"make,omitempty"`
	Model        string `bson:"model,omitempty"`
	Mileage      int    `bson:"mileage"`
}

type CoverageDoc struct {
	MOTFee        bool `bson:"mot_fee"`
	TyreCover     bool `bson:"tyre_cover"`
	WearTear      bool `bson:"wear_tear"`
	EuropeCover   bool `bson:"europe_cover"`
	TransferCover bool `bson:"transfer_cover"`
}

type PolicyDoc struct {
	ID             string      `bson:"_id"`
	Number         string      `bson:"number"`    // unique index
	OrderRef       string      `bson:"order_ref"` // unique index
	Customer       CustomerDoc `bson:"customer"`
	Vehicle        VehicleDoc  `bson:"vehicle"`
	PlanTier       string      `bson:"plan_tier"`
	PaymentType    string      `bson:"payment_type"`
	DurationMonths int         `bson:"duration_months"`
	Coverage       CoverageDoc `bson:"coverage"`
	DiscountCode   string      `bson:"discount_code,omitempty"`
	Status         string      `bson:"status"`
	StartDate      time.Time   `bson:"start_date"`
	EndDate        time.Time   `bson:"end_date"`
	IssuedAt       time.Time   `bson:"issued_at"`
}

func fromPolicyDoc(d PolicyDoc) core.Policy {
	return core.Policy{
		ID:       d.ID,
		Number:   d.Number,
		OrderRef: d.OrderRef,
		Customer: core.Customer{
			FirstName: d.Customer.FirstName,
			LastName:  d.Customer.LastName,
			Email:     d.Customer.Email,
			Phone:     d.Customer.Phone,
		},
		Vehicle: core.Vehicle{
			Registration: d.Vehicle.Registration,
			Make:         d.Vehicle.Make,
			Model:        d.Vehicle.Model,
			Mileage:      d.Vehicle.Mileage,
		},
		PlanTier:       d.PlanTier,
		PaymentType:    d.PaymentType,
		DurationMonths: d.DurationMonths,
		Coverage: warranty.EligibilityMatrix{
			MOTFee:        d.Coverage.MOTFee,
			TyreCover:     d.Coverage.TyreCover,
			WearTear:      d.Coverage.WearTear,
			EuropeCover:   d.Coverage.EuropeCover,
			TransferCover: d.Coverage.TransferCover,
		},
		DiscountCode: d.DiscountCode,
		Status:       core.PolicyStatus(d.Status),
		StartDate:    d.StartDate.UTC(),
		EndDate:      d.EndDate.UTC(),
		IssuedAt:     d.IssuedAt.UTC(),
	}
}

func toPolicyDoc(p core.Policy) PolicyDoc {
	return PolicyDoc{
		ID:       p.ID,
		Number:   p.Number,
		OrderRef: p.OrderRef,
		Customer: CustomerDoc{
			FirstName: p.Customer.FirstName,
			LastName:  p.Customer.LastName,
			Email:     p.Customer.Email,
			Phone:     p.Customer.Phone,
		},
		Vehicle: VehicleDoc{
			Registration: p.Vehicle.Registration,
			Make:         p.Vehicle.Make,
			Model:        p.Vehicle.Model,
			Mileage:      p.Vehicle.Mileage,
		},
		PlanTier:       p.PlanTier,
		PaymentType:    p.PaymentType,
		DurationMonths: p.DurationMonths,
		Coverage: CoverageDoc{
			MOTFee:        p.Coverage.MOTFee,
			TyreCover:     p.Coverage.TyreCover,
			WearTear:      p.Coverage.WearTear,
			EuropeCover:   p.Coverage.EuropeCover,
			TransferCover: p.Coverage.TransferCover,
		},
		DiscountCode: p.DiscountCode,
		Status:       string(p.Status),
		StartDate:    p.StartDate,
		EndDate:      p.EndDate,
		IssuedAt:     p.IssuedAt,
	}
}
