package sqldb

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MrKriegler/go-warranty/internal/core"
	"github.com/MrKriegler/go-warranty/internal/warranty"
)

const (
	TableDiscountCodes = "discount_codes"
	TablePolicies      = "policies"
	TableCounters      = "counters"
)

// stringList is stored as a JSON array in a TEXT column so both dialects share it.
type stringList []string

func (l stringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *stringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("stringList: unsupported type %T", src)
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("stringList: %w", err)
	}
	*l = out
	return nil
}

// Discount code
type discountRow struct {
	ID                 string        `db:"id"`
	Code               string        `db:"code"`
	Type               string        `db:"type"`
	Value              float64       `db:"value"`
	ValidFrom          time.Time     `db:"valid_from"`
	ValidTo            time.Time     `db:"valid_to"`
	UsageLimit         sql.NullInt64 `db:"usage_limit"`
	UsedCount          int           `db:"used_count"`
	Active             bool          `db:"active"`
	Archived           bool          `db:"archived"`
	ApplicableProducts stringList    `db:"applicable_products"`
	CreatedAt          time.Time     `db:"created_at"`
	UpdatedAt          time.Time     `db:"updated_at"`
}

const discountColumns = `id, code, type, value, valid_from, valid_to, usage_limit, used_count,
	active, archived, applicable_products, created_at, updated_at`

func fromDiscountRow(r discountRow) core.DiscountCode {
	d := core.DiscountCode{
		ID:                 r.ID,
		Code:               r.Code,
		Type:               core.DiscountType(r.Type),
		Value:              r.Value,
		ValidFrom:          r.ValidFrom.UTC(),
		ValidTo:            r.ValidTo.UTC(),
		UsedCount:          r.UsedCount,
		Active:             r.Active,
		Archived:           r.Archived,
		ApplicableProducts: []string(r.ApplicableProducts),
		CreatedAt:          r.CreatedAt.UTC(),
		UpdatedAt:          r.UpdatedAt.UTC(),
	}
	if r.UsageLimit.Valid {
		limit := int(r.UsageLimit.Int64)
		d.UsageLimit = &limit
	}
	return d
}

func toDiscountRow(d core.DiscountCode) discountRow {
	r := discountRow{
		ID:                 d.ID,
		Code:               d.Code,
		Type:               string(d.Type),
		Value:              d.Value,
		ValidFrom:          d.ValidFrom.UTC(),
		ValidTo:            d.ValidTo.UTC(),
		UsedCount:          d.UsedCount,
		Active:             d.Active,
		Archived:           d.Archived,
		ApplicableProducts: stringList(d.ApplicableProducts),
		CreatedAt:          d.CreatedAt.UTC(),
		UpdatedAt:          d.UpdatedAt.UTC(),
	}
	if d.UsageLimit != nil {
		r.UsageLimit = sql.NullInt64{Int64: int64(*d.UsageLimit), Valid: true}
	}
	return r
}

// Policy
type policyRow struct {
	ID                  string    `db:"id"`
	Number              string    `db:"number"`
	OrderRef            string    `db:"order_ref"`
	CustomerFirstName   string    `db:"customer_first_name"`
	CustomerLastName    string    `db:"customer_last_name"`
	CustomerEmail       string    `db:"customer_email"`
	CustomerPhone       string    `db:"customer_phone"`
	VehicleRegistration string    `db:"vehicle_registration"`
	VehicleMake         string    `db:"vehicle_make"`
	VehicleModel        string    `db:"vehicle_model"`
	VehicleMileage      int       `db:"vehicle_mileage"`
	PlanTier            string    `db:"plan_tier"`
	PaymentType         string    `db:"payment_type"`
	DurationMonths      int       `db:"duration_months"`
	MOTFee              bool      `db:"mot_fee"`
	TyreCover           bool      `db:"tyre_cover"`
	WearTear            bool      `db:"wear_tear"`
	EuropeCover         bool      `db:"europe_cover"`
	TransferCover       bool      `db:"transfer_cover"`
	DiscountCode        string    `db:"discount_code"`
	Status              string    `db:"status"`
	StartDate           time.Time `db:"start_date"`
	EndDate             time.Time `db:"end_date"`
	IssuedAt            time.Time `db:"issued_at"`
}

const policyColumns = `id, number, order_ref, customer_first_name, customer_last_name, customer_email,
	customer_phone, vehicle_registration, vehicle_make, vehicle_model, vehicle_mileage, plan_tier,
	payment_type, duration_months, mot_fee, tyre_cover, wear_tear, europe_cover, transfer_cover,
	discount_code, status, start_date, end_date, issued_at`

func fromPolicyRow(r policyRow) core.Policy {
	return core.Policy{
		ID:       r.ID,
		Number:   r.Number,
		OrderRef: r.OrderRef,
		Customer: core.Customer{
			FirstName: r.CustomerFirstName,
			LastName:  r.CustomerLastName,
			Email:     r.CustomerEmail,
			Phone:     r.CustomerPhone,
		},
		Vehicle: core.Vehicle{
			Registration: r.VehicleRegistration,
			Make:         r.VehicleMake,
			Model:        r.VehicleModel,
			Mileage:      r.VehicleMileage,
		},
		PlanTier:       r.PlanTier,
		PaymentType:    r.PaymentType,
		DurationMonths: r.DurationMonths,
		Coverage: warranty.EligibilityMatrix{
			MOTFee:        r.MOTFee,
			TyreCover:     r.TyreCover,
			WearTear:      r.WearTear,
			EuropeCover:   r.EuropeCover,
			TransferCover: r.TransferCover,
		},
		DiscountCode: r.DiscountCode,
		Status:       core.PolicyStatus(r.Status),
		StartDate:    r.StartDate.UTC(),
		EndDate:      r.EndDate.UTC(),
		IssuedAt:     r.IssuedAt.UTC(),
	}
}

func toPolicyRow(p core.Policy) policyRow {
	return policyRow{
		ID:                  p.ID,
		Number:              p.Number,
		OrderRef:            p.OrderRef,
		CustomerFirstName:   p.Customer.FirstName,
		CustomerLastName:    p.Customer.LastName,
		CustomerEmail:       p.Customer.Email,
		CustomerPhone:       p.Customer.Phone,
		VehicleRegistration: p.Vehicle.Registration,
		VehicleMake:         p.Vehicle.Make,
		VehicleModel:        p.Vehicle.Model,
		VehicleMileage:      p.Vehicle.Mileage,
		PlanTier:            p.PlanTier,
		PaymentType:         p.PaymentType,
		DurationMonths:      p.DurationMonths,
		MOTFee:              p.Coverage.MOTFee,
		TyreCover:           p.Coverage.TyreCover,
		WearTear:            p.Coverage.WearTear,
		EuropeCover:         p.Coverage.EuropeCover,
		TransferCover:       p.Coverage.TransferCover,
		DiscountCode:        p.DiscountCode,
		Status:              string(p.Status),
		StartDate:           p.StartDate.UTC(),
		EndDate:             p.EndDate.UTC(),
		IssuedAt:            p.IssuedAt.UTC(),
	}
}
