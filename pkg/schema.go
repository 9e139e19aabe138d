package det01

import (
	"fmt"
)

type ColumnKind int

const (
	IntColumn ColumnKind = iota
	DoubleColumn
)

func (k ColumnKind) String() string {
	if k == IntColumn {
		return "int"
	}
	return "double"
}

// Column declares one ntuple column together with the way it is filled
// from an EventRecord, so declaration and fill cannot drift apart.
type Column struct {
	Name  string
	Kind  ColumnKind
	value func(rec *EventRecord) float64
}

type Schema struct {
	Name    string
	Title   string
	Columns []Column
}

// Row holds one value per schema column, in column order. Integer columns
// are stored as float64 and converted by the writers.
type Row struct {
	Values []float64
}

func (r Row) Int(i int) int32 {
	return int32(r.Values[i])
}

// Validate checks the schema once, before any row is written.
func (s *Schema) Validate() error {
	if s.Name == "" {
		return &ErrSchema{Schema: s.Name, Reason: "empty name"}
	}
	if len(s.Columns) == 0 {
		return &ErrSchema{Schema: s.Name, Reason: "no columns"}
	}
	for i, col := range s.Columns {
		if col.Name == "" {
			return &ErrSchema{Schema: s.Name, Reason: fmt.Sprintf("column %d has no name", i)}
		}
		if first := s.Index(col.Name); first != i {
			return &ErrSchema{Schema: s.Name, Reason: fmt.Sprintf("duplicate column %q", col.Name)}
		}
		if col.value == nil {
			return &ErrSchema{Schema: s.Name, Reason: fmt.Sprintf("column %q has no value", col.Name)}
		}
	}
	return nil
}

func (s *Schema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		names[i] = col.Name
	}
	return names
}

// Index returns the position of the named column, or -1.
func (s *Schema) Index(name string) int {
	for i, col := range s.Columns {
		if col.Name == name {
			return i
		}
	}
	return -1
}

func (s *Schema) Fill(rec *EventRecord) Row {
	row := Row{Values: make([]float64, len(s.Columns))}
	for i, col := range s.Columns {
		row.Values[i] = col.value(rec)
	}
	return row
}

func intCol(name string, f func(rec *EventRecord) int) Column {
	return Column{Name: name, Kind: IntColumn, value: func(rec *EventRecord) float64 { return float64(f(rec)) }}
}

func doubleCol(name string, f func(rec *EventRecord) float64) Column {
	return Column{Name: name, Kind: DoubleColumn, value: f}
}

const (
	NtupleName  = "CosmicData"
	NtupleTitle = "Cosmic Ray Events"
)

// NewCosmicSchema builds the CosmicData layout for nDetectors slabs. With
// positions the primary entry and exit coordinates of every slab are added
// before Truth_Z; with primaryFlags one Scin<i>_HasPrimary column per slab
// is appended at the end.
func NewCosmicSchema(nDetectors int, positions bool, primaryFlags bool) *Schema {
	s := &Schema{Name: NtupleName, Title: NtupleTitle}

	s.Columns = append(s.Columns, intCol("EventID", func(rec *EventRecord) int { return rec.EventID }))
	for i := 0; i < nDetectors; i++ {
		i := i // per-iteration copy; go directive is 1.21
		s.Columns = append(s.Columns, doubleCol(fmt.Sprintf("Edep_Scin%d", i),
			func(rec *EventRecord) float64 { return rec.Edep[i] / MeV }))
	}
	for i := 0; i < nDetectors; i++ {
		i := i // per-iteration copy; go directive is 1.21
		s.Columns = append(s.Columns, intCol(fmt.Sprintf("PE_PMT%d", i),
			func(rec *EventRecord) int { return rec.PE[i] }))
	}
	for i := 0; i < nDetectors; i++ {
		i := i // per-iteration copy; go directive is 1.21
		s.Columns = append(s.Columns, doubleCol(fmt.Sprintf("Time_PMT%d", i),
			func(rec *EventRecord) float64 { return rec.Time[i] }))
	}

	if positions {
		for i := 0; i < nDetectors; i++ {
			i := i // per-iteration copy; go directive is 1.21
			prefix := fmt.Sprintf("Scin%d_", i)
			s.Columns = append(s.Columns,
				doubleCol(prefix+"InX", func(rec *EventRecord) float64 { return rec.PosIn[i].X }),
				doubleCol(prefix+"InY", func(rec *EventRecord) float64 { return rec.PosIn[i].Y }),
				doubleCol(prefix+"InZ", func(rec *EventRecord) float64 { return rec.PosIn[i].Z }),
				doubleCol(prefix+"OutX", func(rec *EventRecord) float64 { return rec.PosOut[i].X }),
				doubleCol(prefix+"OutY", func(rec *EventRecord) float64 { return rec.PosOut[i].Y }),
				doubleCol(prefix+"OutZ", func(rec *EventRecord) float64 { return rec.PosOut[i].Z }),
			)
		}
	}

	s.Columns = append(s.Columns, doubleCol("Truth_Z", func(rec *EventRecord) float64 { return rec.TruthZ }))

	if primaryFlags {
		for i := 0; i < nDetectors; i++ {
			i := i // per-iteration copy; go directive is 1.21
			s.Columns = append(s.Columns, intCol(fmt.Sprintf("Scin%d_HasPrimary", i),
				func(rec *EventRecord) int {
					if rec.HasPrimary[i] {
						return 1
					}
					return 0
				}))
		}
	}
	return s
}
