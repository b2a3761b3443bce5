// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/governance-engine/pkg/types"
)

func TestReadFileSampleRegister(t *testing.T) {
	recs, err := ReadFile(filepath.Join("testdata", "jamabandi_sample.csv"))
	require.NoError(t, err)
	require.Len(t, recs, 11, "caption rows and the blank row are skipped")

	first := recs[0]
	assert.Equal(t, 1, first.Row)
	assert.Equal(t, "Gyan Chand pisar Dheru", first.Get(types.ColOwner))
	assert.Equal(t, "401", first.Get(types.ColKhasra))
	assert.Equal(t, "Nahri", first.Get(types.ColLandType))
	assert.Equal(t, "Gyan Chand pisar Dheru", first.Get(types.ColVerifiedName))

	last := recs[len(recs)-1]
	assert.Equal(t, 12, last.Row, "blank rows still count toward row numbers")
	assert.Equal(t, "Swimming Pool", last.Get(types.ColLandType))
}

func TestReadCSVHeaderFirst(t *testing.T) {
	in := "owner_name , KHASRA_NO,Unknown Column\nAbdul Ahad,7,ignored\n"
	recs, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, map[string]string{types.ColOwner: "Abdul Ahad", types.ColKhasra: "7"}, recs[0].Fields)
}

func TestReadCSVRaggedRows(t *testing.T) {
	in := "Khevat_No,Owner_Name,Khasra_No\n1,Abdul Ahad\n2,Akbar Ali,9,extra\n"
	recs, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "", recs[0].Get(types.ColKhasra))
	assert.Equal(t, "9", recs[1].Get(types.ColKhasra))
}

func TestReadCSVNoHeader(t *testing.T) {
	in := "a,b\n1,2\n3,4\n5,6\n7,8\n9,10\nKhevat_No,Owner_Name\n"
	_, err := ReadCSV(strings.NewReader(in))
	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestReadYAML(t *testing.T) {
	in := `
- Owner_Name: Pawan Kumar
  Khasra_No: 1001
  Claimed_Lat: 34.0837
  Land_Type: Agri
  Notes: ignored
- Owner_Name: Harbans Lal
  Khasra_No: "1100"
  Remarks_Kaifiyat: null
`
	recs, err := ReadYAML(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "1001", recs[0].Get(types.ColKhasra))
	assert.Equal(t, "34.0837", recs[0].Get(types.ColClaimedLat))
	assert.NotContains(t, recs[0].Fields, "Notes")
	assert.Equal(t, 2, recs[1].Row)
	assert.Equal(t, "", recs[1].Get(types.ColRemarks))

	recs, err = ReadYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestReadJSON(t *testing.T) {
	in := `[{"owner_name": "Akbar Ali", "Khasra_No": 801, "Official_Lon": 74.7973, "Prior_Names": "Akbar; Akbar Aly"}]`
	recs, err := ReadJSON(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Akbar Ali", recs[0].Get(types.ColOwner))
	assert.Equal(t, "801", recs[0].Get(types.ColKhasra))
	assert.Equal(t, "74.7973", recs[0].Get(types.ColOfficialLon))
	assert.Equal(t, "Akbar; Akbar Aly", recs[0].Get(types.ColPriorNames))

	_, err = ReadJSON(strings.NewReader(`{"not": "an array"}`))
	assert.Error(t, err)
}

func TestFormatOf(t *testing.T) {
	for path, want := range map[string]types.OutputFormat{
		"in.csv":  types.FormatCSV,
		"IN.CSV":  types.FormatCSV,
		"in.yml":  types.FormatYAML,
		"in.yaml": types.FormatYAML,
		"in.json": types.FormatJSON,
	} {
		got, err := FormatOf(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}
	_, err := FormatOf("in.xlsx")
	assert.Error(t, err)
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "absent.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
