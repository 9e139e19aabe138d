package det01

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFileType(t *testing.T) {
	for _, name := range []string{"root", "csv", "hdf5", "kafka", "none"} {
		ft, err := ParseFileType(name)
		require.NoError(t, err)
		assert.Equal(t, FileType(name), ft)
	}
	_, err := ParseFileType("xls")
	var unknown *ErrUnknownFileType
	assert.ErrorAs(t, err, &unknown)
}

func TestNewOutputWriter(t *testing.T) {
	config := DefaultConfiguration()
	tests := []struct {
		fileType FileType
		want     OutputWriter
	}{
		{FileTypeRoot, &RootWriter{}},
		{FileTypeCsv, &CsvWriter{}},
		{FileTypeHdf5, &Hdf5Writer{}},
		{FileTypeKafka, &KafkaWriter{}},
		{FileTypeNone, &YodaWriter{}},
	}
	for _, tt := range tests {
		w, err := NewOutputWriter(tt.fileType, "out", config)
		require.NoError(t, err)
		assert.IsType(t, tt.want, w)
	}
	_, err := NewOutputWriter("bad", "out", config)
	assert.Error(t, err)
}

func TestAnalysisManagerHistograms(t *testing.T) {
	spec, err := LookupVersion("v01")
	require.NoError(t, err)
	writer := &memWriter{}
	am, err := NewAnalysisManager(spec, nil, writer)
	require.NoError(t, err)

	histos := am.Histograms()
	require.Len(t, histos, 2)
	assert.Equal(t, "Edep_Det1", histos[1].Name)
	assert.Equal(t, "Energy Deposition in Detector 1", histos[1].Title)
	assert.Equal(t, 100, histos[0].H.Len())
	assert.Equal(t, 80.0, histos[0].H.XMax())

	require.NoError(t, am.OpenFile(RunInfo{Version: "v01"}))

	rec := newEventRecord(0, 2)
	rec.Edep[0] = 12.3
	rec.PE = []int{4, 0}
	require.NoError(t, am.AddRecord(&rec))

	rec = newEventRecord(1, 2)
	rec.Edep = []float64{20, 25}
	rec.PE = []int{10, 7}
	require.NoError(t, am.AddRecord(&rec))

	require.NoError(t, am.Write())
	require.NoError(t, am.CloseFile())
	assert.True(t, writer.closed)
	// closing twice is a no-op
	require.NoError(t, am.CloseFile())

	assert.Equal(t, int64(2), histos[0].H.Entries())
	assert.Equal(t, int64(1), histos[1].H.Entries())
	assert.Empty(t, writer.rows)
	require.Len(t, writer.histos, 2)

	summary := am.Summary()
	assert.Equal(t, 2, summary.Events)
	assert.Equal(t, 0, summary.Rows)
	assert.Equal(t, 1, summary.Coincidences)
	assert.Equal(t, []int{2, 1}, summary.HitsPerDet)
	assert.Equal(t, []int{14, 7}, summary.PhotonsPerDet)
}

func TestAnalysisManagerNtuple(t *testing.T) {
	spec, err := LookupVersion("v0100")
	require.NoError(t, err)
	writer := &memWriter{}
	am, err := NewAnalysisManager(spec, spec.Schema(false), writer)
	require.NoError(t, err)
	assert.Empty(t, am.Histograms())

	require.NoError(t, am.OpenFile(RunInfo{}))
	rec := newEventRecord(5, 2)
	rec.Time = []float64{-1, 3.5}
	require.NoError(t, am.AddRecord(&rec))
	require.NoError(t, am.Write())

	require.Len(t, writer.rows, 1)
	assert.Equal(t, []float64{5, 0, 0, 0, 0, -1, 3.5, 0}, writer.rows[0].Values)
	assert.Nil(t, writer.histos)
	assert.Equal(t, 1, am.Summary().Rows)
}

func TestAnalysisManagerRejectsBadSchema(t *testing.T) {
	spec, err := LookupVersion("v0100")
	require.NoError(t, err)
	_, err = NewAnalysisManager(spec, &Schema{Name: NtupleName}, &memWriter{})
	var schemaErr *ErrSchema
	assert.ErrorAs(t, err, &schemaErr)
}
