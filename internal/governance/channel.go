// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package governance

import (
	"fmt"

	"github.com/pdiddy/governance-engine/pkg/types"
)

// Override names.
const (
	OverrideHardFail           = "hard_fail"
	OverrideInheritanceGrace   = "inheritance_grace"
	OverrideCustodianOccupancy = "custodian_occupancy"
	OverrideScoreThreshold     = "score_threshold"
	OverrideBelowThreshold     = "below_threshold"
)

// Subject is what an override inspects.
type Subject struct {
	Record         types.LandRecord
	Outcomes       []types.RuleOutcome
	Score          float64
	GreenThreshold float64
}

// Override is one named step of the channel priority chain. Match returns
// the triggering rule (empty when the override is not rule-driven), a
// reason, and whether it fired.
type Override struct {
	Name    string
	Channel types.Channel
	Match   func(s Subject) (rule types.RuleName, reason string, ok bool)
}

// Overrides is the channel priority chain, evaluated top to bottom; the
// first match wins. The last entry always matches.
var Overrides = []Override{
	{Name: OverrideHardFail, Channel: types.ChannelRed, Match: hardFail},
	{Name: OverrideInheritanceGrace, Channel: types.ChannelGrey, Match: inheritanceGrace},
	{Name: OverrideCustodianOccupancy, Channel: types.ChannelAmber, Match: custodianOccupancy},
	{Name: OverrideScoreThreshold, Channel: types.ChannelGreen, Match: scoreThreshold},
	{Name: OverrideBelowThreshold, Channel: types.ChannelAmber, Match: belowThreshold},
}

// Classify walks the chain and returns the channel and the driver of the
// first override that matches.
func Classify(s Subject) (types.Channel, types.Driver) {
	for _, o := range Overrides {
		if rule, reason, ok := o.Match(s); ok {
			return o.Channel, types.Driver{Override: o.Name, Rule: rule, Reason: reason}
		}
	}
	// Unreachable while below_threshold closes the chain.
	return types.ChannelAmber, types.Driver{Override: OverrideBelowThreshold, Reason: "no override matched"}
}

func hardFail(s Subject) (types.RuleName, string, bool) {
	for _, o := range s.Outcomes {
		if o.Disqualifying {
			return o.Rule, o.Evidence, true
		}
	}
	return "", "", false
}

func inheritanceGrace(s Subject) (types.RuleName, string, bool) {
	if s.Record.Possession != types.PossessionInherited {
		return "", "", false
	}
	return types.RulePossession, outcomeEvidence(s.Outcomes, types.RulePossession, "inheritance mutation pending"), true
}

// custodianOccupancy matches custodian possession only. Custodian land held
// by a self-cultivating owner is weighed through its category penalty.
func custodianOccupancy(s Subject) (types.RuleName, string, bool) {
	if s.Record.Possession != types.PossessionCustodian {
		return "", "", false
	}
	return types.RulePossession, outcomeEvidence(s.Outcomes, types.RulePossession, "custodian occupant"), true
}

func scoreThreshold(s Subject) (types.RuleName, string, bool) {
	if s.Score < s.GreenThreshold {
		return "", "", false
	}
	return "", fmt.Sprintf("score %.4f >= %.2f", s.Score, s.GreenThreshold), true
}

func belowThreshold(s Subject) (types.RuleName, string, bool) {
	return heaviestRule(s.Outcomes), fmt.Sprintf("score %.4f < %.2f", s.Score, s.GreenThreshold), true
}

// heaviestRule returns the rule with the largest penalty, earliest first
// on ties, or "" when nothing was penalized.
func heaviestRule(outcomes []types.RuleOutcome) types.RuleName {
	var (
		rule types.RuleName
		most float64
	)
	for _, o := range outcomes {
		if o.Delta > most {
			rule, most = o.Rule, o.Delta
		}
	}
	return rule
}

func outcomeEvidence(outcomes []types.RuleOutcome, rule types.RuleName, fallback string) string {
	for _, o := range outcomes {
		if o.Rule == rule && o.Evidence != "" {
			return o.Evidence
		}
	}
	return fallback
}
