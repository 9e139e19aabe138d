package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go-hep.org/x/hep/csvutil"
	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/riofs"
	"go-hep.org/x/hep/groot/rtree"

	det01 "github.com/next-exp/det01_go/pkg"
)

// Table is a column oriented copy of the CosmicData ntuple.
type Table struct {
	Names   []string
	Columns map[string][]float64
	Len     int
}

func newTable(names []string) *Table {
	t := &Table{Names: names, Columns: make(map[string][]float64, len(names))}
	for _, name := range names {
		t.Columns[name] = nil
	}
	return t
}

func (t *Table) appendRow(values []float64) {
	for i, name := range t.Names {
		t.Columns[name] = append(t.Columns[name], values[i])
	}
	t.Len++
}

func (t *Table) Column(name string) ([]float64, error) {
	col, ok := t.Columns[name]
	if !ok {
		return nil, fmt.Errorf("column %q not found in %s", name, det01.NtupleName)
	}
	return col, nil
}

// NDetectors counts the Edep_Scin<i> columns.
func (t *Table) NDetectors() int {
	n := 0
	for {
		if _, ok := t.Columns[fmt.Sprintf("Edep_Scin%d", n)]; !ok {
			return n
		}
		n++
	}
}

// LoadTable reads a .root file or a wcsv ntuple file depending on the
// extension.
func LoadTable(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".root":
		return LoadRoot(path)
	case ".csv":
		return LoadCsv(path)
	}
	return nil, fmt.Errorf("unsupported input file %q, expected .root or .csv", path)
}

func LoadRoot(path string) (*Table, error) {
	f, err := groot.Open(path)
	if err != nil {
		return nil, &det01.ErrOpenFile{Filename: path, Err: err}
	}
	defer f.Close()

	obj, err := riofs.Dir(f).Get(det01.NtupleName)
	if err != nil {
		return nil, fmt.Errorf("tree %q not found in %s: %w", det01.NtupleName, path, err)
	}
	tree, ok := obj.(rtree.Tree)
	if !ok {
		return nil, fmt.Errorf("object %q in %s is not a tree", det01.NtupleName, path)
	}

	rvars := rtree.NewReadVars(tree)
	names := make([]string, len(rvars))
	for i, rv := range rvars {
		names[i] = rv.Name
	}
	table := newTable(names)

	r, err := rtree.NewReader(tree, rvars)
	if err != nil {
		return nil, fmt.Errorf("error creating tree reader: %w", err)
	}
	defer r.Close()

	values := make([]float64, len(rvars))
	err = r.Read(func(ctx rtree.RCtx) error {
		for i, rv := range rvars {
			switch v := rv.Value.(type) {
			case *int32:
				values[i] = float64(*v)
			case *float64:
				values[i] = *v
			case *float32:
				values[i] = float64(*v)
			default:
				return fmt.Errorf("unsupported type %T for branch %s", rv.Value, rv.Name)
			}
		}
		table.appendRow(values)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error reading tree: %w", err)
	}
	return table, nil
}

// csvColumns reads the "#column <type> <name>" header lines.
func csvColumns(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &det01.ErrOpenFile{Filename: path, Err: err}
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "#") {
			break
		}
		fields := strings.Fields(line)
		if len(fields) == 3 && fields[0] == "#column" {
			names = append(names, fields[2])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no #column header in %s", path)
	}
	return names, nil
}

func LoadCsv(path string) (*Table, error) {
	names, err := csvColumns(path)
	if err != nil {
		return nil, err
	}
	table := newTable(names)

	tbl, err := csvutil.Open(path)
	if err != nil {
		return nil, &det01.ErrOpenFile{Filename: path, Err: err}
	}
	defer tbl.Close()
	tbl.Reader.Comma = ','
	tbl.Reader.Comment = '#'

	rows, err := tbl.ReadRows(0, -1)
	if err != nil {
		return nil, fmt.Errorf("error reading rows: %w", err)
	}
	defer rows.Close()

	values := make([]float64, len(names))
	dest := make([]interface{}, len(names))
	for i := range values {
		dest[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("error scanning row %d: %w", table.Len, err)
		}
		table.appendRow(values)
	}
	// the row iterator reports io.EOF once the file is exhausted
	if err := rows.Err(); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return table, nil
}
