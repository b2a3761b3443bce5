// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rules

import "github.com/pdiddy/governance-engine/pkg/types"

// Land category penalties.
const (
	CustodianLandPenalty = 0.25
	OtherLandPenalty     = 0.15
	SarakPenalty         = CategoryCap
)

// Category checks land-category eligibility. Gair Mumkin Sarak is a
// disqualifying block, not a weighted penalty.
type Category struct{}

func (Category) Name() types.RuleName { return types.RuleCategory }

func (Category) Applies(types.LandRecord) bool { return true }

func (Category) Evaluate(rec types.LandRecord) types.RuleOutcome {
	switch rec.Category {
	case types.CategoryAgricultural:
		return pass("agricultural land")
	case types.CategoryGairMumkinMakan:
		return pass("gair mumkin makan (inhabited structure)")
	case types.CategoryCustodian:
		return warn(CustodianLandPenalty, "custodian/evacuee land, title provisional")
	case types.CategoryGairMumkinSarak:
		return fail(SarakPenalty, true, "gair mumkin sarak (road/encroachment) is ineligible")
	}
	return warn(OtherLandPenalty, "non-agricultural land category "+string(rec.Category))
}
