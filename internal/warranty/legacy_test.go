package warranty

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLegacyDuration(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"monthly", "12 months"},
		{"yearly", "12 months"},
		{"two_yearly", "24 months"},
		{"Three_Yearly", "36 months"},
		// no 48/60 tiers and no normalization
		{"four_yearly", "four_yearly"},
		{"five_yearly", "five_yearly"},
		{"twoyearly", "twoyearly"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LegacyDuration(tt.in), "LegacyDuration(%q)", tt.in)
	}
}

func TestLegacyPaymentTypeDisplay(t *testing.T) {
	assert.Equal(t, "Monthly", LegacyPaymentTypeDisplay("monthly"))
	assert.Equal(t, "Yearly", LegacyPaymentTypeDisplay("yearly"))
	assert.Equal(t, "2 Years", LegacyPaymentTypeDisplay("two_yearly"))
	assert.Equal(t, "3 Years", LegacyPaymentTypeDisplay("three_yearly"))
	assert.Equal(t, "annual", LegacyPaymentTypeDisplay("annual"))
}

func TestCompareResolvers(t *testing.T) {
	d := CompareResolvers("two_yearly")
	assert.True(t, d.DurationsAgree)
	assert.Equal(t, "24 months", d.Current)

	d = CompareResolvers("five_yearly")
	assert.False(t, d.DurationsAgree)
	assert.Equal(t, "60 months", d.Current)
	assert.Equal(t, "five_yearly", d.Legacy)

	d = CompareResolvers("mystery")
	assert.False(t, d.DurationsAgree)
	assert.Equal(t, "12 months", d.Current)
	assert.Equal(t, "mystery", d.Legacy)
	assert.Equal(t, "mystery", d.CurrentLabel)
}
