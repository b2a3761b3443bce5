// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package governance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/governance-engine/internal/rules"
	"github.com/pdiddy/governance-engine/pkg/types"
)

func baseRecord() types.LandRecord {
	return types.LandRecord{
		Row:        1,
		Parcel:     types.ParcelRef{Khasra: "101"},
		OwnerName:  "Vijay Kumar",
		OwnerKey:   "vijay kumar",
		KnownNames: []string{"vijay kumar"},
		Category:   types.CategoryAgricultural,
		Possession: types.PossessionSelfCultivated,
	}
}

func evaluate(t *testing.T, rec types.LandRecord) types.GovernanceResult {
	t.Helper()
	cfg := types.DefaultEngineConfig()
	outcomes, err := rules.EvaluateAll(rules.DefaultSet(cfg, nil), rec)
	require.NoError(t, err)
	return Aggregate(rec, outcomes, cfg)
}

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		outcomes []types.RuleOutcome
		want     float64
	}{
		{"no outcomes", nil, 1},
		{"single penalty", []types.RuleOutcome{{Rule: types.RuleCategory, Delta: 0.15}}, 0.85},
		{"capped penalty", []types.RuleOutcome{{Rule: types.RuleGIS, Delta: 0.9}}, 0.7},
		{"negative ignored", []types.RuleOutcome{{Rule: types.RuleIdentity, Delta: -1}}, 1},
		{"floor at zero", []types.RuleOutcome{
			{Rule: types.RuleIdentity, Delta: 0.3},
			{Rule: types.RuleCategory, Delta: 0.4},
			{Rule: types.RulePossession, Delta: 0.4},
			{Rule: types.RuleGIS, Delta: 0.3},
		}, 0},
		{"rounded", []types.RuleOutcome{{Rule: types.RuleIdentity, Delta: 0.123456}}, 0.8765},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.outcomes)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}

func TestScenarioCleanRecordIsGreen(t *testing.T) {
	res := evaluate(t, baseRecord())
	assert.Equal(t, types.ChannelGreen, res.Channel)
	assert.GreaterOrEqual(t, res.Score, types.DefaultGreenThreshold)
	assert.Equal(t, OverrideScoreThreshold, res.Driver.Override)
	assert.Equal(t, ActionAutoApprove, res.Action)
}

func TestScenarioInheritanceIsGrey(t *testing.T) {
	rec := baseRecord()
	rec.Possession = types.PossessionInherited
	res := evaluate(t, rec)

	assert.Equal(t, types.ChannelGrey, res.Channel)
	assert.Equal(t, OverrideInheritanceGrace, res.Driver.Override)
	assert.Equal(t, types.RulePossession, res.Driver.Rule)
	assert.InDelta(t, 1.0, res.Score, 1e-9, "grace carries no score penalty")
	assert.Equal(t, "Deemed Verified (24 Mo. Grace)", res.Action)
}

func TestScenarioSarakDominatesScore(t *testing.T) {
	outcomes := []types.RuleOutcome{
		{Rule: types.RuleCategory, Verdict: types.VerdictFail, Disqualifying: true, Delta: 0.05, Evidence: "road"},
	}
	channel, driver := Classify(Subject{Record: baseRecord(), Outcomes: outcomes, Score: 0.95, GreenThreshold: 0.75})
	assert.Equal(t, types.ChannelRed, channel)
	assert.Equal(t, OverrideHardFail, driver.Override)
	assert.Equal(t, types.RuleCategory, driver.Rule)
	assert.Equal(t, "Ineligible: land_category", Action(channel, driver, 24))
}

func TestCustodianRoutesAmber(t *testing.T) {
	rec := baseRecord()
	rec.Possession = types.PossessionCustodian
	res := evaluate(t, rec)
	assert.Equal(t, types.ChannelAmber, res.Channel)
	assert.Equal(t, OverrideCustodianOccupancy, res.Driver.Override)
	assert.Equal(t, types.RulePossession, res.Driver.Rule)
	assert.Equal(t, ActionCropLoan, res.Action)
	assert.InDelta(t, 0.9, res.Score, 1e-9)
}

func TestCustodianLandScoredByThreshold(t *testing.T) {
	rec := baseRecord()
	rec.Category = types.CategoryCustodian

	_, _, ok := custodianOccupancy(Subject{Record: rec})
	assert.False(t, ok, "custodian land alone is not custodian occupancy")

	res := evaluate(t, rec)
	assert.InDelta(t, 0.75, res.Score, 1e-9)
	assert.Equal(t, types.ChannelGreen, res.Channel)
	assert.Equal(t, OverrideScoreThreshold, res.Driver.Override)

	cfg := types.DefaultEngineConfig()
	cfg.GreenThreshold = 0.8
	outcomes, err := rules.EvaluateAll(rules.DefaultSet(cfg, nil), rec)
	require.NoError(t, err)
	res = Aggregate(rec, outcomes, cfg)
	assert.Equal(t, types.ChannelAmber, res.Channel)
	assert.Equal(t, OverrideBelowThreshold, res.Driver.Override)
	assert.Equal(t, types.RuleCategory, res.Driver.Rule)
	assert.Equal(t, ActionProvisional, res.Action)
}

func TestBelowThresholdNamesHeaviestRule(t *testing.T) {
	rec := baseRecord()
	rec.Category = types.CategoryOther
	rec.Claimed = &types.Coordinate{Lat: 34.01, Lon: 74.8}
	rec.Official = &types.Coordinate{Lat: 34.0, Lon: 74.8}
	res := evaluate(t, rec)

	assert.InDelta(t, 0.55, res.Score, 1e-9)
	assert.Equal(t, types.ChannelAmber, res.Channel)
	assert.Equal(t, OverrideBelowThreshold, res.Driver.Override)
	assert.Equal(t, types.RuleGIS, res.Driver.Rule)
	assert.Equal(t, ActionProvisional, res.Action)
}

// Any record whose land category is Gair Mumkin Sarak is RED, whatever
// else is true of it.
func TestSarakAlwaysRed(t *testing.T) {
	near := &types.Coordinate{Lat: 34.0, Lon: 74.8}
	far := &types.Coordinate{Lat: 34.05, Lon: 74.8}
	coords := []struct {
		name              string
		claimed, official *types.Coordinate
	}{
		{"none", nil, nil},
		{"match", near, near},
		{"offset", far, near},
	}
	names := [][]string{nil, {"vijay kumar"}, {"prem"}}

	for _, p := range types.PossessionStatuses {
		for _, c := range coords {
			for _, known := range names {
				rec := baseRecord()
				rec.Category = types.CategoryGairMumkinSarak
				rec.Possession = p
				rec.Claimed, rec.Official = c.claimed, c.official
				rec.KnownNames = known

				res := evaluate(t, rec)
				require.Equal(t, types.ChannelRed, res.Channel, "possession=%s coords=%s names=%v", p, c.name, known)
				assert.Equal(t, OverrideHardFail, res.Driver.Override)
			}
		}
	}
}

func TestExactlyOneChannel(t *testing.T) {
	for _, cat := range types.LandCategories {
		for _, p := range types.PossessionStatuses {
			rec := baseRecord()
			rec.Category = cat
			rec.Possession = p
			res := evaluate(t, rec)

			assert.Contains(t, types.Channels, res.Channel)
			assert.NotEmpty(t, res.Driver.Override)
			assert.NotEmpty(t, res.Action)
			assert.GreaterOrEqual(t, res.Score, 0.0)
			assert.LessOrEqual(t, res.Score, 1.0)
		}
	}
}

func TestOverridesInIsolation(t *testing.T) {
	rec := baseRecord()

	_, _, ok := hardFail(Subject{Outcomes: []types.RuleOutcome{{Rule: types.RuleGIS, Verdict: types.VerdictFail, Delta: 0.3}}})
	assert.False(t, ok, "a non-disqualifying fail is not a hard fail")

	_, _, ok = inheritanceGrace(Subject{Record: rec})
	assert.False(t, ok)

	_, _, ok = custodianOccupancy(Subject{Record: rec})
	assert.False(t, ok)

	_, _, ok = scoreThreshold(Subject{Score: 0.7499, GreenThreshold: 0.75})
	assert.False(t, ok)
	_, _, ok = scoreThreshold(Subject{Score: 0.75, GreenThreshold: 0.75})
	assert.True(t, ok, "threshold is inclusive")

	_, _, ok = belowThreshold(Subject{})
	assert.True(t, ok, "the chain is closed")
}
