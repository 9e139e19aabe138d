package det01

import (
	"errors"
	"fmt"

	hdf5 "github.com/jmbenlloch/go-hdf5"
)

// hdf5FlushRows is the number of buffered rows written to the column
// datasets at once.
const hdf5FlushRows = 1024

// Hdf5Writer stores the ntuple as one dataset per column under /CosmicData,
// the run metadata under /Run and each histogram as a bin table under
// /Histograms.
type Hdf5Writer struct {
	Filename     string
	Compression  int
	File         *hdf5.File
	RunGroup     *hdf5.Group
	NtupleGroup  *hdf5.Group
	HistoGroup   *hdf5.Group
	RunInfoTable *hdf5.Dataset
	Columns      []*hdf5.Dataset
	schema       *Schema
	buffer       []Row
	RowCounter   int
}

func NewHdf5Writer(filename string, compression int) *Hdf5Writer {
	return &Hdf5Writer{Filename: filename, Compression: compression}
}

func (w *Hdf5Writer) Open(run RunInfo, schema *Schema) error {
	hdf5.SetStringLength(STRLEN)

	logger.Info(fmt.Sprintf("Creating file: %s", w.Filename), "hdf5writer")
	file, err := openFile(w.Filename)
	if err != nil {
		return err
	}
	w.File = file

	if w.RunGroup, err = createGroup(w.File, "Run"); err != nil {
		return w.abort(err)
	}
	if w.RunInfoTable, err = createTable(w.RunGroup, "runInfo", RunInfoHDF5{}, w.Compression); err != nil {
		return w.abort(err)
	}
	info := RunInfoHDF5{
		run_number: int32(run.RunNumber),
		run_uuid:   convertToHdf5String(run.RunUUID.String()),
		version:    convertToHdf5String(run.Version),
		seed:       int64(run.Seed),
		num_events: int32(run.NumEvents),
	}
	if err := writeEntryToTable(w.RunInfoTable, info, 0); err != nil {
		return w.abort(fmt.Errorf("error writing run info: %w", err))
	}

	if schema == nil {
		return nil
	}
	w.schema = schema
	if w.NtupleGroup, err = createGroup(w.File, schema.Name); err != nil {
		return w.abort(err)
	}
	w.Columns = make([]*hdf5.Dataset, len(schema.Columns))
	for i, col := range schema.Columns {
		if w.Columns[i], err = createColumn(w.NtupleGroup, col.Name, col.Kind, w.Compression); err != nil {
			return w.abort(err)
		}
	}
	return nil
}

// abort releases whatever Open created before failing, leaving the writer
// closed.
func (w *Hdf5Writer) abort(err error) error {
	cerr := w.Close()
	*w = Hdf5Writer{Filename: w.Filename, Compression: w.Compression}
	return errors.Join(err, cerr)
}

func (w *Hdf5Writer) AddRow(row Row) error {
	w.buffer = append(w.buffer, row)
	if len(w.buffer) >= hdf5FlushRows {
		return w.flush()
	}
	return nil
}

func (w *Hdf5Writer) flush() error {
	if len(w.buffer) == 0 {
		return nil
	}
	// The arrays MUST be allocated at creation, HDF5 writes from the
	// backing memory.
	for i, col := range w.schema.Columns {
		var err error
		if col.Kind == IntColumn {
			values := make([]int32, len(w.buffer))
			for r, row := range w.buffer {
				values[r] = row.Int(i)
			}
			err = writeArrayToTable(w.Columns[i], &values, w.RowCounter)
		} else {
			values := make([]float64, len(w.buffer))
			for r, row := range w.buffer {
				values[r] = row.Values[i]
			}
			err = writeArrayToTable(w.Columns[i], &values, w.RowCounter)
		}
		if err != nil {
			return fmt.Errorf("error writing column %s: %w", col.Name, err)
		}
	}
	w.RowCounter += len(w.buffer)
	w.buffer = w.buffer[:0]
	return nil
}

func (w *Hdf5Writer) WriteHistograms(histos []Histogram) error {
	if w.HistoGroup == nil {
		var err error
		if w.HistoGroup, err = createGroup(w.File, "Histograms"); err != nil {
			return err
		}
	}
	for _, histo := range histos {
		table, err := createTable(w.HistoGroup, histo.Name, HistogramBinHDF5{}, w.Compression)
		if err != nil {
			return err
		}
		bins := histo.H.Binning.Bins
		rows := make([]HistogramBinHDF5, len(bins))
		for i, bin := range bins {
			rows[i] = HistogramBinHDF5{
				low:     bin.XMin(),
				high:    bin.XMax(),
				entries: int32(bin.Entries()),
				sumw:    bin.SumW(),
				sumw2:   bin.SumW2(),
			}
		}
		err = writeArrayToTable(table, &rows, 0)
		table.Close()
		if err != nil {
			return fmt.Errorf("error writing histogram %s: %w", histo.Name, err)
		}
	}
	return nil
}

func (w *Hdf5Writer) Close() error {
	var errs []error
	if w.schema != nil {
		errs = append(errs, w.flush())
	}
	for _, dset := range w.Columns {
		if dset != nil {
			errs = append(errs, dset.Close())
		}
	}
	if w.RunInfoTable != nil {
		errs = append(errs, w.RunInfoTable.Close())
	}
	for _, group := range []*hdf5.Group{w.HistoGroup, w.NtupleGroup, w.RunGroup} {
		if group != nil {
			errs = append(errs, group.Close())
		}
	}
	if w.File != nil {
		errs = append(errs, w.File.Close())
	}
	return errors.Join(errs...)
}
