package det01

import (
	"errors"
	"fmt"
	"strings"

	"go-hep.org/x/hep/csvutil"
)

// CsvWriter follows the layout of the tools::wcsv files: the ntuple goes to
// <base>_nt_<name>.csv and each histogram to <base>_h1_<name>.csv, every
// file starting with '#' header lines.
type CsvWriter struct {
	Base   string
	ntuple *csvutil.Table
	schema *Schema
}

func NewCsvWriter(base string) *CsvWriter {
	return &CsvWriter{Base: base}
}

func (w *CsvWriter) NtupleFilename(name string) string {
	return fmt.Sprintf("%s_nt_%s.csv", w.Base, name)
}

func (w *CsvWriter) HistogramFilename(name string) string {
	return fmt.Sprintf("%s_h1_%s.csv", w.Base, name)
}

func (w *CsvWriter) Open(run RunInfo, schema *Schema) error {
	if schema == nil {
		return nil
	}
	fname := w.NtupleFilename(schema.Name)
	logger.Info(fmt.Sprintf("Creating file: %s", fname), "csvwriter")
	tbl, err := csvutil.Create(fname)
	if err != nil {
		return &ErrOpenFile{Filename: fname, Err: err}
	}
	tbl.Writer.Comma = ','

	var hdr strings.Builder
	hdr.WriteString("#class tools::wcsv::ntuple\n")
	fmt.Fprintf(&hdr, "#title %s\n", schema.Title)
	fmt.Fprintf(&hdr, "#run %d %s\n", run.RunNumber, run.RunUUID)
	hdr.WriteString("#separator 44\n")
	hdr.WriteString("#vector_separator 59\n")
	for _, col := range schema.Columns {
		fmt.Fprintf(&hdr, "#column %s %s\n", col.Kind, col.Name)
	}
	if err := tbl.WriteHeader(hdr.String()); err != nil {
		tbl.Close()
		return &ErrCreateTable{TableName: schema.Name, Err: err}
	}

	w.ntuple = tbl
	w.schema = schema
	return nil
}

func (w *CsvWriter) AddRow(row Row) error {
	args := make([]interface{}, len(row.Values))
	for i, col := range w.schema.Columns {
		if col.Kind == IntColumn {
			args[i] = row.Int(i)
		} else {
			args[i] = row.Values[i]
		}
	}
	return w.ntuple.WriteRow(args...)
}

func (w *CsvWriter) WriteHistograms(histos []Histogram) error {
	for _, histo := range histos {
		if err := w.writeHistogram(histo); err != nil {
			return fmt.Errorf("error writing histogram %s: %w", histo.Name, err)
		}
	}
	return nil
}

func (w *CsvWriter) writeHistogram(histo Histogram) error {
	fname := w.HistogramFilename(histo.Name)
	tbl, err := csvutil.Create(fname)
	if err != nil {
		return &ErrOpenFile{Filename: fname, Err: err}
	}
	tbl.Writer.Comma = ','

	h := histo.H
	var hdr strings.Builder
	hdr.WriteString("#class tools::histo::h1d\n")
	fmt.Fprintf(&hdr, "#title %s\n", histo.Title)
	fmt.Fprintf(&hdr, "#dimension 1\n")
	fmt.Fprintf(&hdr, "#axis fixed %d %g %g\n", h.Len(), h.XMin(), h.XMax())
	hdr.WriteString("entries,Sw,Sw2,xmin,xmax\n")
	if err := tbl.WriteHeader(hdr.String()); err != nil {
		tbl.Close()
		return err
	}

	for _, bin := range h.Binning.Bins {
		err := tbl.WriteRow(bin.Entries(), bin.SumW(), bin.SumW2(), bin.XMin(), bin.XMax())
		if err != nil {
			tbl.Close()
			return err
		}
	}
	return tbl.Close()
}

func (w *CsvWriter) Close() error {
	var errs []error
	if w.ntuple != nil {
		errs = append(errs, w.ntuple.Close())
		w.ntuple = nil
	}
	return errors.Join(errs...)
}
