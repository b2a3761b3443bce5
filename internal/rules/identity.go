// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rules

import (
	"fmt"

	"github.com/pdiddy/governance-engine/internal/fuzzy"
	"github.com/pdiddy/governance-engine/pkg/types"
)

const (
	// IdentityPenaltyPerEdit is charged for each edit beyond the fuzzy
	// match budget.
	IdentityPenaltyPerEdit = 0.05

	// IdentityMinSimilarity is the lowest similarity at which a variant
	// still counts as the same person spelled differently.
	IdentityMinSimilarity = 0.5
)

// Identity compares the claimed owner name with prior-seen variants for
// the same parcel.
type Identity struct {
	Matcher  fuzzy.Matcher
	MaxEdits int
}

func (Identity) Name() types.RuleName { return types.RuleIdentity }

func (Identity) Applies(types.LandRecord) bool { return true }

func (r Identity) Evaluate(rec types.LandRecord) types.RuleOutcome {
	if len(rec.KnownNames) == 0 {
		return pass("no prior variant")
	}
	m := r.Matcher
	if m == nil {
		m = fuzzy.Levenshtein{}
	}

	closest, cmp, _ := fuzzy.Best(m, rec.OwnerKey, rec.KnownNames)
	if cmp.Distance <= r.MaxEdits {
		return pass(fmt.Sprintf("matches variant %q within %d edits", closest, cmp.Distance))
	}

	bestSim := 0.0
	for _, v := range rec.KnownNames {
		bestSim = max(bestSim, m.Compare(rec.OwnerKey, v).Similarity)
	}
	if bestSim < IdentityMinSimilarity {
		return fail(IdentityCap, true, fmt.Sprintf("%q matches no prior variant (best similarity %.2f)", rec.OwnerKey, bestSim))
	}

	excess := cmp.Distance - r.MaxEdits
	return warn(min(IdentityPenaltyPerEdit*float64(excess), IdentityCap),
		fmt.Sprintf("%q differs from variant %q by %d edits (%d above threshold)", rec.OwnerKey, closest, cmp.Distance, excess))
}
