package det01

import (
	"errors"
	"fmt"
)

// YodaWriter records only the histograms, in YODA text format. It backs the
// "none" file type and the histogram side of the kafka sink.
type YodaWriter struct {
	Filename string
}

func NewYodaWriter(filename string) *YodaWriter {
	return &YodaWriter{Filename: filename}
}

func (w *YodaWriter) Open(RunInfo, *Schema) error { return nil }

func (w *YodaWriter) AddRow(Row) error { return nil }

func (w *YodaWriter) WriteHistograms(histos []Histogram) error {
	f, err := createOutputFile(w.Filename)
	if err != nil {
		return err
	}
	var errs []error
	for _, histo := range histos {
		raw, err := histo.H.MarshalYODA()
		if err != nil {
			errs = append(errs, fmt.Errorf("error encoding histogram %s: %w", histo.Name, err))
			continue
		}
		if _, err := f.Write(raw); err != nil {
			errs = append(errs, err)
			break
		}
	}
	errs = append(errs, f.Close())
	return errors.Join(errs...)
}

func (w *YodaWriter) Close() error { return nil }
