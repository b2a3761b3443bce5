// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package governance combines rule outcomes into a trust score and routes
// each record to a governance channel through an ordered override chain.
//
// Hard overrides dominate the numeric score: a disqualifying outcome is
// RED even when the score would clear the green threshold, and pending
// inheritance is GREY regardless of score.
package governance

import (
	"fmt"
	"math"

	"github.com/pdiddy/governance-engine/internal/rules"
	"github.com/pdiddy/governance-engine/pkg/types"
)

// Action texts recorded with each result.
const (
	ActionAutoApprove = "Auto-Approve KCC"
	ActionCropLoan    = "Issue CRC (Crop Loan Only)"
	ActionProvisional = "Provisional Review"
)

// Score starts at 1, subtracts each outcome's penalty clamped to its
// rule's cap, and returns the result clamped to [0, 1] and rounded to
// four decimals.
func Score(outcomes []types.RuleOutcome) float64 {
	score := 1.0
	for _, o := range outcomes {
		score -= rules.ClampDelta(o.Rule, o.Delta)
	}
	score = min(max(score, 0), 1)
	return math.Round(score*10000) / 10000
}

// Aggregate builds the GovernanceResult for rec from its rule outcomes.
// The identifier, collisions and trace are filled in later by the caller.
func Aggregate(rec types.LandRecord, outcomes []types.RuleOutcome, cfg types.EngineConfig) types.GovernanceResult {
	score := Score(outcomes)
	channel, driver := Classify(Subject{
		Record:         rec,
		Outcomes:       outcomes,
		Score:          score,
		GreenThreshold: cfg.GreenThreshold,
	})
	return types.GovernanceResult{
		Record:   rec,
		Score:    score,
		Channel:  channel,
		Driver:   driver,
		Action:   Action(channel, driver, cfg.GracePeriodMonths),
		Outcomes: outcomes,
	}
}

// Action returns the operator action for a channel decision.
func Action(channel types.Channel, driver types.Driver, graceMonths int) string {
	switch channel {
	case types.ChannelGreen:
		return ActionAutoApprove
	case types.ChannelGrey:
		return fmt.Sprintf("Deemed Verified (%d Mo. Grace)", graceMonths)
	case types.ChannelRed:
		return "Ineligible: " + string(driver.Rule)
	}
	if driver.Override == OverrideCustodianOccupancy {
		return ActionCropLoan
	}
	return ActionProvisional
}
