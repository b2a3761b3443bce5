// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/governance-engine/pkg/types"
)

func sampleResult() types.GovernanceResult {
	return types.GovernanceResult{
		Identifier: "JK-0123456789ABCDEF",
		Score:      0.6,
		Channel:    types.ChannelAmber,
		Driver:     types.Driver{Override: "below_threshold", Rule: types.RuleGIS, Reason: "score 0.6000 < 0.75"},
		Outcomes: []types.RuleOutcome{
			{Rule: types.RuleIdentity, Verdict: types.VerdictPass, Evidence: "no prior variant"},
			{Rule: types.RuleCategory, Verdict: types.VerdictWarn, Delta: 0.1, Evidence: "non-agricultural land category other"},
			{Rule: types.RuleGIS, Verdict: types.VerdictFail, Delta: 0.3, Evidence: "claimed point 500m from plot exceeds 100m tolerance"},
		},
		Collisions: []types.CollisionRef{{Row: 7, Khasra: "405", Owner: "Vijay Kumar"}},
	}
}

func TestBuild(t *testing.T) {
	got := Build(sampleResult())
	want := []string{
		"WARN land_category: non-agricultural land category other (penalty 0.10)",
		"FAIL gis_plot_integrity: claimed point 500m from plot exceeds 100m tolerance (penalty 0.30)",
		"WARN identifier_collision: JK-0123456789ABCDEF also derived for row 7 (Khasra 405, Vijay Kumar)",
		"CHANNEL AMBER via below_threshold (gis_plot_integrity): score 0.6000 < 0.75",
	}
	assert.Equal(t, want, got)
}

func TestBuildIdempotent(t *testing.T) {
	res := sampleResult()
	first := Render(Build(res), "")
	second := Render(Build(res), "")
	assert.Equal(t, first, second)
}

func TestBuildCleanResultHasOnlySummary(t *testing.T) {
	res := types.GovernanceResult{
		Channel:  types.ChannelGreen,
		Driver:   types.Driver{Override: "score_threshold", Reason: "score 1.0000 >= 0.75"},
		Outcomes: []types.RuleOutcome{{Rule: types.RuleIdentity, Verdict: types.VerdictPass}},
	}
	got := Build(res)
	require.Len(t, got, 1)
	assert.Equal(t, "CHANNEL GREEN via score_threshold: score 1.0000 >= 0.75", got[0])
	assert.Empty(t, Warnings(got))
}

func TestBuildDisqualifyingAndSeededCollision(t *testing.T) {
	res := types.GovernanceResult{
		Identifier: "JK-1",
		Channel:    types.ChannelRed,
		Driver:     types.Driver{Override: "hard_fail", Rule: types.RuleCategory, Reason: "road"},
		Outcomes:   []types.RuleOutcome{{Rule: types.RuleCategory, Verdict: types.VerdictFail, Delta: 0.4, Disqualifying: true, Evidence: "road"}},
		Collisions: []types.CollisionRef{{RunID: "run-a", Row: 3, Khasra: "9", Owner: "X"}},
	}
	got := Build(res)
	assert.Equal(t, "FAIL land_category: road (penalty 0.40) [disqualifying]", got[0])
	assert.Equal(t, "WARN identifier_collision: JK-1 also derived for run run-a row 3 (Khasra 9, X)", got[1])
}

func TestRender(t *testing.T) {
	assert.Equal(t, "a; b", Render([]string{"a", "b"}, ""))
	assert.Equal(t, "a | b", Render([]string{"a", "b"}, " | "))
	assert.Equal(t, "", Render(nil, ""))
}
