// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rules implements the per-record rule evaluators. Each evaluator
// is a pure function of one LandRecord; none performs I/O or shares state,
// so a set may be run concurrently.
package rules

import (
	"errors"
	"sync"

	"github.com/pdiddy/governance-engine/internal/fuzzy"
	"github.com/pdiddy/governance-engine/pkg/types"
)

// Evaluator assesses one concern of a LandRecord.
type Evaluator interface {
	Name() types.RuleName

	// Applies reports whether the evaluator has the inputs it needs.
	// An evaluator that does not apply contributes no outcome.
	Applies(rec types.LandRecord) bool

	Evaluate(rec types.LandRecord) types.RuleOutcome
}

// Penalty caps per rule. An outcome's delta never exceeds its rule's cap.
const (
	IdentityCap   = 0.30
	CategoryCap   = 0.40
	PossessionCap = 0.40
	GISCap        = 0.30
)

// Cap returns the maximum penalty for a rule, or 0 for an unknown rule.
func Cap(rule types.RuleName) float64 {
	switch rule {
	case types.RuleIdentity:
		return IdentityCap
	case types.RuleCategory:
		return CategoryCap
	case types.RulePossession:
		return PossessionCap
	case types.RuleGIS:
		return GISCap
	}
	return 0
}

// ClampDelta bounds d to [0, Cap(rule)].
func ClampDelta(rule types.RuleName, d float64) float64 {
	return min(max(d, 0), Cap(rule))
}

// DefaultSet returns the four evaluators in their fixed order: identity,
// land category, possession, GIS.
func DefaultSet(cfg types.EngineConfig, m fuzzy.Matcher) []Evaluator {
	if m == nil {
		m = fuzzy.Levenshtein{}
	}
	return []Evaluator{
		Identity{Matcher: m, MaxEdits: cfg.FuzzyMaxEdits},
		Category{},
		Possession{GraceMonths: cfg.GracePeriodMonths},
		GIS{ToleranceMeters: cfg.GISToleranceMeters},
	}
}

// EvaluateAll runs every applicable evaluator in set against rec and
// returns the outcomes in set order. Deltas are clamped to each rule's cap.
// An outcome that fails Validate, such as a warning without evidence, is
// an error: the record cannot be scored with a silent penalty.
func EvaluateAll(set []Evaluator, rec types.LandRecord) ([]types.RuleOutcome, error) {
	slots := make([]*types.RuleOutcome, len(set))

	var wg sync.WaitGroup
	for i, ev := range set {
		if !ev.Applies(rec) {
			continue
		}
		wg.Go(func() {
			o := ev.Evaluate(rec)
			o.Rule = ev.Name()
			o.Delta = ClampDelta(o.Rule, o.Delta)
			slots[i] = &o
		})
	}
	wg.Wait()

	out := make([]types.RuleOutcome, 0, len(set))
	var errs []error
	for _, o := range slots {
		if o == nil {
			continue
		}
		if err := o.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, *o)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

func pass(evidence string) types.RuleOutcome {
	return types.RuleOutcome{Verdict: types.VerdictPass, Evidence: evidence}
}

func warn(delta float64, evidence string) types.RuleOutcome {
	return types.RuleOutcome{Verdict: types.VerdictWarn, Delta: delta, Evidence: evidence}
}

func fail(delta float64, disqualifying bool, evidence string) types.RuleOutcome {
	return types.RuleOutcome{Verdict: types.VerdictFail, Delta: delta, Disqualifying: disqualifying, Evidence: evidence}
}
