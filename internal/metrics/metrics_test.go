// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/governance-engine/pkg/types"
)

func TestObserve(t *testing.T) {
	m := New()
	m.ObserveResult(types.GovernanceResult{
		Channel: types.ChannelGreen,
		Outcomes: []types.RuleOutcome{
			{Rule: types.RuleIdentity, Verdict: types.VerdictPass},
			{Rule: types.RuleCategory, Verdict: types.VerdictWarn},
		},
		Collisions: []types.CollisionRef{{Row: 1}, {Row: 2}},
	})
	m.ObserveRejection(types.Rejection{Row: 3, Field: types.ColLandType})

	assert.InDelta(t, 1, testutil.ToFloat64(m.Records.WithLabelValues("scored")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Records.WithLabelValues("rejected")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Channels.WithLabelValues("GREEN")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(m.RuleVerdicts.WithLabelValues("land_category", "warn")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Rejections.WithLabelValues(types.ColLandType)), 1e-9)
	assert.InDelta(t, 2, testutil.ToFloat64(m.Collisions), 1e-9)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveResult(types.GovernanceResult{})
	m.ObserveRejection(types.Rejection{})
	m.ObserveBatch(time.Second)
	assert.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.ObserveBatch(250 * time.Millisecond)
	m.ObserveResult(types.GovernanceResult{Channel: types.ChannelRed})

	path := filepath.Join(t.TempDir(), "governance.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `governance_engine_channel_total{channel="RED"} 1`)
	assert.Contains(t, string(data), "governance_engine_batch_duration_seconds_count 1")
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.ObserveResult(types.GovernanceResult{Channel: types.ChannelGrey})
	assert.InDelta(t, 0, testutil.ToFloat64(b.Channels.WithLabelValues("GREY")), 1e-9)
}
