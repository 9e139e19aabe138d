package det01

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"go-hep.org/x/hep/hbook"
)

type FileType string

const (
	FileTypeRoot  FileType = "root"
	FileTypeCsv   FileType = "csv"
	FileTypeHdf5  FileType = "hdf5"
	FileTypeKafka FileType = "kafka"
	FileTypeNone  FileType = "none"
)

func ParseFileType(s string) (FileType, error) {
	switch ft := FileType(s); ft {
	case FileTypeRoot, FileTypeCsv, FileTypeHdf5, FileTypeKafka, FileTypeNone:
		return ft, nil
	}
	return "", &ErrUnknownFileType{FileType: s}
}

// RunInfo identifies one run in every output it produces.
type RunInfo struct {
	RunNumber int
	RunUUID   uuid.UUID
	Version   string
	Seed      uint64
	NumEvents int
}

// Histogram is a named 1D histogram owned by the analysis manager.
type Histogram struct {
	Name  string
	Title string
	H     *hbook.H1D
}

// OutputWriter is the file-format specific part of the analysis manager.
// schema is nil for versions that only record histograms.
type OutputWriter interface {
	Open(run RunInfo, schema *Schema) error
	AddRow(row Row) error
	WriteHistograms(histos []Histogram) error
	Close() error
}

type RunSummary struct {
	Events        int
	Rows          int
	Coincidences  int
	HitsPerDet    []int
	PhotonsPerDet []int
}

// AnalysisManager lives on the master goroutine only. It owns the
// histograms and the ntuple of the run and forwards them to the writer.
type AnalysisManager struct {
	spec    VersionSpec
	schema  *Schema
	histos  []Histogram
	writer  OutputWriter
	opened  bool
	summary RunSummary
}

func NewAnalysisManager(spec VersionSpec, schema *Schema, writer OutputWriter) (*AnalysisManager, error) {
	if schema != nil {
		if err := schema.Validate(); err != nil {
			return nil, err
		}
	}
	am := &AnalysisManager{
		spec:   spec,
		schema: schema,
		writer: writer,
		summary: RunSummary{
			HitsPerDet:    make([]int, spec.NDetectors),
			PhotonsPerDet: make([]int, spec.NDetectors),
		},
	}
	if spec.Histograms {
		for i := 0; i < spec.NDetectors; i++ {
			am.CreateH1(fmt.Sprintf("Edep_Det%d", i),
				fmt.Sprintf("Energy Deposition in Detector %d", i),
				100, 0, 80*MeV)
		}
	}
	return am, nil
}

// NewOutputWriter picks the writer for a file type. base is the output file
// name without extension.
func NewOutputWriter(fileType FileType, base string, config Configuration) (OutputWriter, error) {
	switch fileType {
	case FileTypeRoot:
		return NewRootWriter(base + ".root"), nil
	case FileTypeCsv:
		return NewCsvWriter(base), nil
	case FileTypeHdf5:
		return NewHdf5Writer(base+".h5", config.CompressionLevel), nil
	case FileTypeKafka:
		return NewKafkaWriter(config.KafkaBrokers, config.KafkaTopic, base+".yoda"), nil
	case FileTypeNone:
		return NewYodaWriter(base + ".yoda"), nil
	}
	return nil, &ErrUnknownFileType{FileType: string(fileType)}
}

func (am *AnalysisManager) Schema() *Schema {
	return am.schema
}

// CreateH1 books a histogram and returns its ID.
func (am *AnalysisManager) CreateH1(name, title string, nbins int, lo, hi float64) int {
	h := hbook.NewH1D(nbins, lo, hi)
	h.Annotation()["name"] = name
	h.Annotation()["title"] = title
	am.histos = append(am.histos, Histogram{Name: name, Title: title, H: h})
	return len(am.histos) - 1
}

func (am *AnalysisManager) FillH1(id int, x float64) {
	if id < 0 || id >= len(am.histos) {
		return
	}
	am.histos[id].H.Fill(x, 1)
}

func (am *AnalysisManager) Histograms() []Histogram {
	return am.histos
}

func (am *AnalysisManager) OpenFile(run RunInfo) error {
	if err := am.writer.Open(run, am.schema); err != nil {
		return err
	}
	am.opened = true
	return nil
}

// AddRecord fills the histograms and appends one ntuple row.
func (am *AnalysisManager) AddRecord(rec *EventRecord) error {
	am.summary.Events++

	coincidence := true
	for id := 0; id < am.spec.NDetectors; id++ {
		if rec.Edep[id] > 0 {
			am.summary.HitsPerDet[id]++
			if am.spec.Histograms {
				am.FillH1(id, rec.Edep[id])
			}
		} else {
			coincidence = false
		}
		am.summary.PhotonsPerDet[id] += rec.PE[id]
	}
	if coincidence {
		am.summary.Coincidences++
	}

	if am.schema == nil {
		return nil
	}
	if err := am.writer.AddRow(am.schema.Fill(rec)); err != nil {
		return fmt.Errorf("error adding row for event %d: %w", rec.EventID, err)
	}
	am.summary.Rows++
	return nil
}

func (am *AnalysisManager) Write() error {
	if len(am.histos) == 0 {
		return nil
	}
	return am.writer.WriteHistograms(am.histos)
}

func (am *AnalysisManager) CloseFile() error {
	if !am.opened {
		return nil
	}
	am.opened = false
	return am.writer.Close()
}

func (am *AnalysisManager) Summary() RunSummary {
	return am.summary
}

func createOutputFile(name string) (*os.File, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, &ErrOpenFile{Filename: name, Err: err}
	}
	return f, nil
}
