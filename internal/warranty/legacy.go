package warranty

import "strings"

// Legacy helpers kept for stored policies and older checkout payloads. They only
// understand four payment types and pass anything else through untouched, which
// disagrees with DurationInMonths for unknown, 48 and 60 month input.

var legacyDurations = map[string]string{
	"monthly":      "12 months",
	"yearly":       "12 months",
	"two_yearly":   "24 months",
	"three_yearly": "36 months",
}

var legacyLabels = map[string]string{
	"monthly":      "Monthly",
	"yearly":       "Yearly",
	"two_yearly":   "2 Years",
	"three_yearly": "3 Years",
}

func legacyKey(paymentType string) string {
	return strings.ToLower(strings.TrimSpace(paymentType))
}

// LegacyDuration returns the old "<N> months" text, or paymentType unchanged.
func LegacyDuration(paymentType string) string {
	if v, ok := legacyDurations[legacyKey(paymentType)]; ok {
		return v
	}
	return paymentType
}

// LegacyPaymentTypeDisplay returns the old payment label, or paymentType unchanged.
func LegacyPaymentTypeDisplay(paymentType string) string {
	if v, ok := legacyLabels[legacyKey(paymentType)]; ok {
		return v
	}
	return paymentType
}

// Divergence describes how the legacy and current resolvers treat one input.
type Divergence struct {
	PaymentType    string `json:"payment_type"`
	Current        string `json:"current"`
	Legacy         string `json:"legacy"`
	CurrentLabel   string `json:"current_label"`
	LegacyLabel    string `json:"legacy_label"`
	DurationsAgree bool   `json:"durations_agree"`
}

// CompareResolvers reports the current and legacy results for paymentType.
func CompareResolvers(paymentType string) Divergence {
	current := DurationDisplay(paymentType)
	legacy := LegacyDuration(paymentType)
	return Divergence{
		PaymentType:    paymentType,
		Current:        current,
		Legacy:         legacy,
		CurrentLabel:   PaymentTypeDisplay(paymentType),
		LegacyLabel:    LegacyPaymentTypeDisplay(paymentType),
		DurationsAgree: current == legacy,
	}
}
