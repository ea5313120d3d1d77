// Package warranty resolves payment plans into coverage durations and plan tiers
// into the benefits they include. Everything here is pure and safe for concurrent use.
package warranty

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// DefaultMonths is used when a payment type cannot be classified.
const DefaultMonths = 12

type durationClass struct {
	months  int
	label   string
	aliases []string
}

// Order matters only for readability; aliases never overlap between classes.
var durationClasses = []durationClass{
	{months: 12, label: "Monthly", aliases: []string{"monthly", "month", "permonth"}},
	{months: 12, label: "12 months", aliases: []string{"yearly", "annual", "annually", "year", "12months", "12month", "1year", "oneyear", "oneyearly"}},
	{months: 24, label: "24 months", aliases: []string{"twoyearly", "twoyear", "twoyears", "24months", "24month", "2year", "2years", "biennial"}},
	{months: 36, label: "36 months", aliases: []string{"threeyearly", "threeyear", "threeyears", "36months", "36month", "3year", "3years"}},
	{months: 48, label: "48 months", aliases: []string{"fouryearly", "fouryear", "fouryears", "48months", "48month", "4year", "4years"}},
	{months: 60, label: "60 months", aliases: []string{"fiveyearly", "fiveyear", "fiveyears", "60months", "60month", "5year", "5years"}},
}

var aliasIndex = buildAliasIndex()

func buildAliasIndex() map[string]durationClass {
	idx := make(map[string]durationClass)
	for _, c := range durationClasses {
		for _, a := range c.aliases {
			idx[a] = c
		}
	}
	return idx
}

// DurationInfo is the aggregate view used by checkout and emails.
type DurationInfo struct {
	Months           int    `json:"months"`
	DisplayText      string `json:"display_text"`
	PaymentFrequency string `json:"payment_frequency"`
}

// NormalizePaymentType trims, lower-cases and strips underscores and hyphens.
func NormalizePaymentType(paymentType string) string {
	s := strings.ToLower(strings.TrimSpace(paymentType))
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, "-", "")
	return strings.TrimSpace(s)
}

func classify(paymentType string) (durationClass, bool) {
	c, ok := aliasIndex[NormalizePaymentType(paymentType)]
	return c, ok
}

// IsKnownPaymentType reports whether paymentType maps to a duration class.
func IsKnownPaymentType(paymentType string) bool {
	_, ok := classify(paymentType)
	return ok
}

// DurationInMonths returns the coverage length for a payment type.
// Unrecognized input falls back to DefaultMonths and logs a warning.
func DurationInMonths(paymentType string) int {
	if c, ok := classify(paymentType); ok {
		return c.months
	}
	slog.Warn("unknown payment type, defaulting warranty duration",
		"payment_type", paymentType,
		"months", DefaultMonths)
	return DefaultMonths
}

// DurationDisplay formats the resolved duration as "<N> months".
func DurationDisplay(paymentType string) string {
	return fmt.Sprintf("%d months", DurationInMonths(paymentType))
}

// PaymentTypeDisplay returns a customer-facing label for the payment type.
// Unlike DurationInMonths, unknown input is returned exactly as given.
func PaymentTypeDisplay(paymentType string) string {
	if c, ok := classify(paymentType); ok {
		return c.label
	}
	return paymentType
}

// PolicyEndDate adds the resolved number of calendar months to start.
func PolicyEndDate(start time.Time, paymentType string) time.Time {
	return AddMonths(start, DurationInMonths(paymentType))
}

// PaymentDurationInfo bundles months, display text and payment frequency.
func PaymentDurationInfo(paymentType string) DurationInfo {
	months := DurationInMonths(paymentType)
	return DurationInfo{
		Months:           months,
		DisplayText:      fmt.Sprintf("%d months", months),
		PaymentFrequency: PaymentTypeDisplay(paymentType),
	}
}

// FormatDurationForEmail renders the duration for transactional emails.
func FormatDurationForEmail(paymentType string) string {
	return formatMonths(DurationInMonths(paymentType))
}

func formatMonths(n int) string {
	if n == 1 {
		return "1 month"
	}
	return fmt.Sprintf("%d months", n)
}

// AddMonths moves t forward by n calendar months. When the target month is
// shorter than t's day, the result lands on that month's last day.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(first.Year(), first.Month(), t.Location()); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
