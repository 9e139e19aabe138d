package det01

import (
	"errors"
	"fmt"

	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/rhist"
	"go-hep.org/x/hep/groot/rtree"
)

// RootWriter stores the ntuple as a flat TTree and the histograms as TH1D.
type RootWriter struct {
	Filename string
	file     *groot.File
	tree     rtree.Writer
	ints     []*int32
	doubles  []*float64
}

func NewRootWriter(filename string) *RootWriter {
	return &RootWriter{Filename: filename}
}

func (w *RootWriter) Open(run RunInfo, schema *Schema) error {
	logger.Info(fmt.Sprintf("Creating file: %s", w.Filename), "rootwriter")
	f, err := groot.Create(w.Filename)
	if err != nil {
		return &ErrOpenFile{Filename: w.Filename, Err: err}
	}
	w.file = f

	if schema == nil {
		return nil
	}

	w.ints = make([]*int32, len(schema.Columns))
	w.doubles = make([]*float64, len(schema.Columns))
	wvars := make([]rtree.WriteVar, len(schema.Columns))
	for i, col := range schema.Columns {
		switch col.Kind {
		case IntColumn:
			w.ints[i] = new(int32)
			wvars[i] = rtree.WriteVar{Name: col.Name, Value: w.ints[i]}
		case DoubleColumn:
			w.doubles[i] = new(float64)
			wvars[i] = rtree.WriteVar{Name: col.Name, Value: w.doubles[i]}
		default:
			err := fmt.Errorf("column %q has unsupported kind %d", col.Name, int(col.Kind))
			return w.abort(&ErrCreateTable{TableName: schema.Name, Err: err})
		}
	}

	title := fmt.Sprintf("%s (run %d, %s)", schema.Title, run.RunNumber, run.RunUUID)
	tree, err := rtree.NewWriter(w.file, schema.Name, wvars, rtree.WithTitle(title))
	if err != nil {
		return w.abort(&ErrCreateTable{TableName: schema.Name, Err: err})
	}
	w.tree = tree
	return nil
}

// abort closes the partially created file, leaving the writer closed.
func (w *RootWriter) abort(err error) error {
	cerr := w.Close()
	*w = RootWriter{Filename: w.Filename}
	return errors.Join(err, cerr)
}

func (w *RootWriter) AddRow(row Row) error {
	for i := range row.Values {
		if w.ints[i] != nil {
			*w.ints[i] = row.Int(i)
		} else {
			*w.doubles[i] = row.Values[i]
		}
	}
	_, err := w.tree.Write()
	return err
}

func (w *RootWriter) WriteHistograms(histos []Histogram) error {
	for _, histo := range histos {
		if err := w.file.Put(histo.Name, rhist.NewH1DFrom(histo.H)); err != nil {
			return fmt.Errorf("error writing histogram %s: %w", histo.Name, err)
		}
	}
	return nil
}

func (w *RootWriter) Close() error {
	var errs []error
	if w.tree != nil {
		errs = append(errs, w.tree.Close())
	}
	if w.file != nil {
		errs = append(errs, w.file.Close())
	}
	return errors.Join(errs...)
}
