package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	det01 "github.com/next-exp/det01_go/pkg"
)

func sampleRecords() []det01.EventRecord {
	edeps := [][2]float64{{0, 12.5}, {21.25, 19}, {0.25, 30}, {18, 0}}
	recs := make([]det01.EventRecord, len(edeps))
	for i, e := range edeps {
		recs[i] = det01.EventRecord{
			EventID:    i,
			Edep:       []float64{e[0], e[1]},
			PE:         []int{i, 2 * i},
			Time:       []float64{-1, 3.5},
			PosIn:      make([]r3.Vec, 2),
			PosOut:     make([]r3.Vec, 2),
			HasPrimary: []bool{e[0] > 0, e[1] > 0},
			TruthZ:     float64(10 * i),
		}
	}
	return recs
}

func writeSample(t *testing.T, w det01.OutputWriter) *det01.Schema {
	t.Helper()
	schema := det01.NewCosmicSchema(2, false, false)
	require.NoError(t, w.Open(det01.RunInfo{RunNumber: 1, RunUUID: uuid.New()}, schema))
	for _, rec := range sampleRecords() {
		require.NoError(t, w.AddRow(schema.Fill(&rec)))
	}
	require.NoError(t, w.Close())
	return schema
}

func checkSample(t *testing.T, table *Table, schema *det01.Schema) {
	t.Helper()
	assert.Equal(t, schema.ColumnNames(), table.Names)
	assert.Equal(t, 4, table.Len)
	assert.Equal(t, 2, table.NDetectors())

	ids, err := table.Column("EventID")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 2, 3}, ids)

	edep0, err := table.Column("Edep_Scin0")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 21.25, 0.25, 18}, edep0)

	pe1, err := table.Column("PE_PMT1")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 2, 4, 6}, pe1)

	truth, err := table.Column("Truth_Z")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 10, 20, 30}, truth)

	_, err = table.Column("Edep_Scin2")
	assert.Error(t, err)
}

func TestLoadCsvRoundTrip(t *testing.T) {
	base := filepath.Join(t.TempDir(), "DET01_Cosmic_Result")
	w := det01.NewCsvWriter(base)
	schema := writeSample(t, w)

	table, err := LoadTable(w.NtupleFilename(det01.NtupleName))
	require.NoError(t, err)
	checkSample(t, table, schema)
}

func TestLoadCsvReadsToEndOfFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "DET01_Cosmic_Result_nt_CosmicData.csv")
	content := "#class tools::wcsv::ntuple\n" +
		"#title Cosmic Muon Data\n" +
		"#separator 44\n" +
		"#column int EventID\n" +
		"#column double Edep_Scin0\n" +
		"#column double Edep_Scin1\n" +
		"0,1.5,0\n" +
		"1,0,22.75\n" +
		"2,17,18.5\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	table, err := LoadCsv(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"EventID", "Edep_Scin0", "Edep_Scin1"}, table.Names)
	assert.Equal(t, 3, table.Len)

	edep1, err := table.Column("Edep_Scin1")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 22.75, 18.5}, edep1)
}

func TestLoadRootRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "DET01_Cosmic_Result.root")
	schema := writeSample(t, det01.NewRootWriter(path))

	table, err := LoadTable(path)
	require.NoError(t, err)
	checkSample(t, table, schema)
}

func TestLoadTableErrors(t *testing.T) {
	_, err := LoadTable("events.h5")
	assert.Error(t, err)

	_, err = LoadTable(filepath.Join(t.TempDir(), "missing.csv"))
	var openErr *det01.ErrOpenFile
	assert.ErrorAs(t, err, &openErr)
}
