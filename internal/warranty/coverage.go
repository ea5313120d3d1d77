package warranty

import "strings"

type Benefit string

const (
	BenefitMOTFee        Benefit = "motFee"
	BenefitTyreCover     Benefit = "tyreCover"
	BenefitWearTear      Benefit = "wearTear"
	BenefitEuropeCover   Benefit = "europeCover"
	BenefitTransferCover Benefit = "transferCover"
)

// Benefits lists every benefit in display order.
var Benefits = []Benefit{
	BenefitMOTFee,
	BenefitTyreCover,
	BenefitWearTear,
	BenefitEuropeCover,
	BenefitTransferCover,
}

// ParseBenefit matches a benefit key case-insensitively.
func ParseBenefit(s string) (Benefit, bool) {
	for _, b := range Benefits {
		if strings.EqualFold(string(b), strings.TrimSpace(s)) {
			return b, true
		}
	}
	return "", false
}

// EligibilityMatrix is the set of ancillary benefits a plan tier includes.
type EligibilityMatrix struct {
	MOTFee        bool `json:"mot_fee"`
	TyreCover     bool `json:"tyre_cover"`
	WearTear      bool `json:"wear_tear"`
	EuropeCover   bool `json:"europe_cover"`
	TransferCover bool `json:"transfer_cover"`
}

// CoverageStatus reports whether planTier includes benefit. Tiers are matched by
// case-insensitive substring, so "Gold Extra" counts as gold. Transfer cover is
// available on every plan; unknown benefits are never covered.
func CoverageStatus(planTier string, benefit Benefit) bool {
	tier := strings.ToLower(planTier)
	platinum := strings.Contains(tier, "platinum")
	gold := strings.Contains(tier, "gold")

	switch benefit {
	case BenefitMOTFee, BenefitWearTear:
		return platinum || gold
	case BenefitTyreCover, BenefitEuropeCover:
		return platinum
	case BenefitTransferCover:
		return true
	default:
		return false
	}
}

// Coverage builds the full eligibility matrix for planTier.
func Coverage(planTier string) EligibilityMatrix {
	return EligibilityMatrix{
		MOTFee:        CoverageStatus(planTier, BenefitMOTFee),
		TyreCover:     CoverageStatus(planTier, BenefitTyreCover),
		WearTear:      CoverageStatus(planTier, BenefitWearTear),
		EuropeCover:   CoverageStatus(planTier, BenefitEuropeCover),
		TransferCover: CoverageStatus(planTier, BenefitTransferCover),
	}
}
