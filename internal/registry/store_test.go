// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/governance-engine/internal/identity"
	"github.com/pdiddy/governance-engine/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "registry", "runs.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func result(row int, khasra, owner string, ch types.Channel) types.GovernanceResult {
	rec := types.LandRecord{
		Row:           row,
		Parcel:        types.ParcelRef{Khasra: khasra},
		OwnerName:     owner,
		OwnerPhonetic: owner,
		Village:       "Rajpura",
		Raw:           map[string]string{types.ColKhasra: khasra, types.ColOwner: owner},
	}
	return types.GovernanceResult{
		Record:     rec,
		Score:      0.9,
		Channel:    ch,
		Driver:     types.Driver{Override: "score_threshold", Reason: "score 0.9000 >= 0.75"},
		Action:     "Auto-Approve KCC",
		Outcomes:   []types.RuleOutcome{{Rule: types.RuleIdentity, Verdict: types.VerdictPass}},
		Identifier: identity.ForRecord(rec),
		Trace:      []string{"CHANNEL " + string(ch) + " via score_threshold: score 0.9000 >= 0.75"},
	}
}

func TestSaveAndReadRun(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	results := []types.GovernanceResult{
		result(1, "401", "Gyan Chand", types.ChannelGreen),
		result(3, "402", "Maya Devi", types.ChannelAmber),
	}
	rejected := []types.Rejection{{Row: 2, Field: types.ColLandType, Value: "Swimming Pool", Reason: "unrecognized land category"}}

	run, err := s.SaveRun(ctx, "input/register.csv", types.DefaultEngineConfig(), results, rejected)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, 2, run.Scored())
	assert.Equal(t, 1, run.Rejected)

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "input/register.csv", got.Input)
	assert.Equal(t, types.DefaultEngineConfig(), got.Config)
	assert.Equal(t, 1, got.Counts[types.ChannelGreen])
	assert.Equal(t, 1, got.Counts[types.ChannelAmber])
	assert.Equal(t, 0, got.Counts[types.ChannelRed])

	rows, err := s.Results(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].Row)
	assert.Equal(t, results[0].Identifier, rows[0].Identifier)
	assert.Equal(t, types.ChannelAmber, rows[1].Channel)
	assert.Equal(t, "score_threshold", rows[1].Driver)
	assert.Equal(t, "402", rows[1].Input[types.ColKhasra])
	assert.Equal(t, results[1].Trace, rows[1].Trace)
	assert.Equal(t, results[1].Outcomes, rows[1].Outcomes)

	rej, err := s.Rejections(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, rejected, rej)
}

func TestGetRunMissing(t *testing.T) {
	s := testStore(t)
	_, err := s.GetRun(context.Background(), "no-such-run")
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = s.GetRun(context.Background(), "latest")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestListRunsLatestFirst(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	var ids []string
	for i := range 3 {
		s.now = func() time.Time { return base.Add(time.Duration(i) * time.Hour) }
		run, err := s.SaveRun(ctx, "batch", types.DefaultEngineConfig(), nil, nil)
		require.NoError(t, err)
		ids = append(ids, run.ID)
	}

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[0], runs[2].ID)
	assert.True(t, runs[0].StartedAt.Equal(base.Add(2*time.Hour)))

	latest, err := s.GetRun(ctx, "latest")
	require.NoError(t, err)
	assert.Equal(t, ids[2], latest.ID)
}

func TestSourcesSeedCollisions(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	first := result(4, "401", "Gyan Chand", types.ChannelGreen)
	run, err := s.SaveRun(ctx, "first", types.DefaultEngineConfig(), []types.GovernanceResult{first}, nil)
	require.NoError(t, err)

	sources, err := s.Sources(ctx)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, run.ID, sources[0].RunID)
	assert.Equal(t, 4, sources[0].Row)
	assert.Equal(t, first.Identifier, sources[0].Identifier)

	// Same occupant on a different plot in a later run collides with the
	// persisted source.
	reg := identity.NewRegistry()
	reg.Seed(sources)
	second := result(1, "999", "Gyan Chand", types.ChannelGreen)
	require.Equal(t, first.Identifier, second.Identifier)
	reg.Register(identity.SourceFor(second.Identifier, second.Record))

	refs := reg.Collisions(second.Identifier, identity.Fingerprint(second.Record))
	require.Len(t, refs, 1)
	assert.Equal(t, run.ID, refs[0].RunID)
	assert.Equal(t, "401", refs[0].Khasra)
}

func TestExportRun(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	run, err := s.SaveRun(ctx, "batch", types.DefaultEngineConfig(),
		[]types.GovernanceResult{result(1, "401", "Gyan Chand", types.ChannelGreen)}, nil)
	require.NoError(t, err)

	var ybuf bytes.Buffer
	require.NoError(t, s.ExportYAML(ctx, run.ID, &ybuf))
	var ye RunExport
	require.NoError(t, yaml.Unmarshal(ybuf.Bytes(), &ye))
	assert.Equal(t, run.ID, ye.Run.ID)
	require.Len(t, ye.Results, 1)
	assert.Equal(t, "401", ye.Results[0].Input[types.ColKhasra])

	var jbuf bytes.Buffer
	require.NoError(t, s.ExportJSON(ctx, "latest", &jbuf))
	var je RunExport
	require.NoError(t, json.Unmarshal(jbuf.Bytes(), &je))
	assert.Equal(t, run.ID, je.Run.ID)
	assert.Equal(t, 1, je.Run.Counts[types.ChannelGreen])

	assert.ErrorIs(t, s.ExportJSON(ctx, "missing", &jbuf), ErrRunNotFound)
}

func TestSaveRunRejectsUnencodableConfig(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	cfg := types.DefaultEngineConfig()
	cfg.GreenThreshold = math.NaN()
	_, err := s.SaveRun(ctx, "register.csv", cfg, []types.GovernanceResult{result(1, "401", "Gyan Chand", types.ChannelGreen)}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encoding config")

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	assert.Empty(t, runs, "a failed save leaves no partial run")
}

func TestCorruptRowsReturnErrors(t *testing.T) {
	tests := []struct {
		name    string
		corrupt string
		read    func(s *Store, runID string) error
		wantErr string
	}{
		{
			name:    "start time",
			corrupt: `UPDATE runs SET started_at = 'yesterday'`,
			read: func(s *Store, runID string) error {
				_, err := s.GetRun(context.Background(), runID)
				return err
			},
			wantErr: "start time",
		},
		{
			name:    "config",
			corrupt: `UPDATE runs SET config = '{"green_threshold":'`,
			read: func(s *Store, _ string) error {
				_, err := s.ListRuns(context.Background())
				return err
			},
			wantErr: "config",
		},
		{
			name:    "trace",
			corrupt: `UPDATE results SET trace = 'CHANNEL GREEN'`,
			read: func(s *Store, runID string) error {
				_, err := s.Results(context.Background(), runID)
				return err
			},
			wantErr: "decoding result row 1 trace",
		},
		{
			name:    "outcomes",
			corrupt: `UPDATE results SET outcomes = '[{'`,
			read: func(s *Store, runID string) error {
				var buf bytes.Buffer
				return s.ExportJSON(context.Background(), runID, &buf)
			},
			wantErr: "outcomes",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testStore(t)
			run, err := s.SaveRun(context.Background(), "register.csv", types.DefaultEngineConfig(),
				[]types.GovernanceResult{result(1, "401", "Gyan Chand", types.ChannelGreen)}, nil)
			require.NoError(t, err)

			_, err = s.db.Exec(tt.corrupt)
			require.NoError(t, err)

			err = tt.read(s, run.ID)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
