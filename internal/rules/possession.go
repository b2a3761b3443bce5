// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rules

import (
	"fmt"

	"github.com/pdiddy/governance-engine/pkg/types"
)

// Possession penalties. Inheritance passes without penalty and routes the
// record to the grace channel instead. A penalized status is a warning so
// that its penalty is named in the trace.
const (
	CustodianOccupantPenalty = 0.10
	DisputedPenalty          = 0.40
)

// Possession checks possession and inheritance status.
type Possession struct {
	GraceMonths int
}

func (Possession) Name() types.RuleName { return types.RulePossession }

func (Possession) Applies(types.LandRecord) bool { return true }

func (r Possession) Evaluate(rec types.LandRecord) types.RuleOutcome {
	switch rec.Possession {
	case types.PossessionSelfCultivated:
		return pass("self-cultivated")
	case types.PossessionInherited:
		return pass(fmt.Sprintf("inheritance mutation pending, %d month grace", r.GraceMonths))
	case types.PossessionCustodian:
		return warn(CustodianOccupantPenalty, "custodian occupant, title provisional")
	case types.PossessionDisputed:
		return warn(DisputedPenalty, "possession disputed")
	}
	return warn(DisputedPenalty, "unknown possession status "+string(rec.Possession))
}
