package det01

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestCosmicSchemaTwoDetectors(t *testing.T) {
	s := NewCosmicSchema(2, false, false)
	require.NoError(t, s.Validate())

	assert.Equal(t, []string{
		"EventID",
		"Edep_Scin0", "Edep_Scin1",
		"PE_PMT0", "PE_PMT1",
		"Time_PMT0", "Time_PMT1",
		"Truth_Z",
	}, s.ColumnNames())
	assert.Equal(t, IntColumn, s.Columns[0].Kind)
	assert.Equal(t, IntColumn, s.Columns[s.Index("PE_PMT1")].Kind)
	assert.Equal(t, DoubleColumn, s.Columns[s.Index("Truth_Z")].Kind)
}

func TestCosmicSchemaFourDetectorsWithPositions(t *testing.T) {
	s := NewCosmicSchema(4, true, false)
	require.NoError(t, s.Validate())
	require.Len(t, s.Columns, 38)

	names := s.ColumnNames()
	assert.Equal(t, "EventID", names[0])
	assert.Equal(t, "Time_PMT3", names[12])
	assert.Equal(t, []string{"Scin0_InX", "Scin0_InY", "Scin0_InZ", "Scin0_OutX", "Scin0_OutY", "Scin0_OutZ"}, names[13:19])
	assert.Equal(t, "Scin3_OutZ", names[36])
	assert.Equal(t, "Truth_Z", names[37])
}

func TestCosmicSchemaPrimaryFlags(t *testing.T) {
	s := NewCosmicSchema(2, true, true)
	require.NoError(t, s.Validate())
	require.Len(t, s.Columns, 8+12+2)
	assert.Equal(t, "Scin1_HasPrimary", s.ColumnNames()[21])
	assert.Equal(t, 20, s.Index("Scin0_HasPrimary"))
	assert.Equal(t, -1, s.Index("Nope"))
}

func TestSchemaFill(t *testing.T) {
	s := NewCosmicSchema(2, true, true)
	rec := newEventRecord(9, 2)
	rec.Edep[0] = 3.0
	rec.PE[1] = 17
	rec.Time = []float64{-1, 4.5}
	rec.PosIn[0] = r3.Vec{X: 1, Y: 2, Z: 3}
	rec.PosOut[0] = r3.Vec{X: 4, Y: 5, Z: 6}
	rec.HasPrimary[0] = true
	rec.TruthZ = -33

	row := s.Fill(&rec)
	require.Len(t, row.Values, len(s.Columns))
	assert.Equal(t, int32(9), row.Int(s.Index("EventID")))
	assert.Equal(t, 3.0, row.Values[s.Index("Edep_Scin0")])
	assert.Equal(t, int32(17), row.Int(s.Index("PE_PMT1")))
	assert.Equal(t, -1.0, row.Values[s.Index("Time_PMT0")])
	assert.Equal(t, 2.0, row.Values[s.Index("Scin0_InY")])
	assert.Equal(t, 6.0, row.Values[s.Index("Scin0_OutZ")])
	assert.Equal(t, 0.0, row.Values[s.Index("Scin1_InX")])
	assert.Equal(t, -33.0, row.Values[s.Index("Truth_Z")])
	assert.Equal(t, 1.0, row.Values[s.Index("Scin0_HasPrimary")])
	assert.Equal(t, 0.0, row.Values[s.Index("Scin1_HasPrimary")])
}

func TestSchemaValidate(t *testing.T) {
	var schemaErr *ErrSchema

	err := (&Schema{Name: "X"}).Validate()
	assert.ErrorAs(t, err, &schemaErr)

	dup := &Schema{Name: "X", Columns: []Column{
		doubleCol("a", func(*EventRecord) float64 { return 0 }),
		doubleCol("a", func(*EventRecord) float64 { return 0 }),
	}}
	assert.ErrorContains(t, dup.Validate(), `duplicate column "a"`)

	noValue := &Schema{Name: "X", Columns: []Column{{Name: "b", Kind: DoubleColumn}}}
	assert.ErrorContains(t, noValue.Validate(), "has no value")

	assert.Error(t, (&Schema{Columns: noValue.Columns}).Validate())
}

func TestVersionTable(t *testing.T) {
	tests := []struct {
		version  string
		nDet     int
		pmt      bool
		columns  int
		fileType string
	}{
		{"v00", 2, false, 0, "csv"},
		{"v01", 2, true, 0, "csv"},
		{"v01.1", 2, true, 8, "root"},
		{"v0100", 2, true, 8, "root"},
		{"v02", 4, true, 38, "root"},
		{"v0200", 4, true, 38, "root"},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			spec, err := LookupVersion(tt.version)
			require.NoError(t, err)
			assert.Equal(t, tt.nDet, spec.NDetectors)
			assert.Equal(t, tt.pmt, spec.PmtSD)
			assert.Equal(t, tt.fileType, spec.DefaultFileType)

			schema := spec.Schema(false)
			if tt.columns == 0 {
				assert.Nil(t, schema)
				assert.True(t, spec.Histograms)
				return
			}
			require.NotNil(t, schema)
			assert.Len(t, schema.Columns, tt.columns)
		})
	}

	_, err := LookupVersion("v03")
	var unknown *ErrUnknownVersion
	assert.ErrorAs(t, err, &unknown)
	assert.Len(t, VersionNames(), 6)
}
