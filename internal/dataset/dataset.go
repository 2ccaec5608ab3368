// Package dataset reads the bankruptcy CSV and produces the seeded
// train/validation/test splits used for training and evaluation.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Dataset is a header plus string rows, kept as text so numeric formatting
// survives a split round trip unchanged.
type Dataset struct {
	Header []string
	Rows   [][]string
}

func (d *Dataset) Len() int { return len(d.Rows) }

// Column returns the index of name in the header, or -1.
func (d *Dataset) Column(name string) int {
	for i, h := range d.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Record maps a row onto the header, skipping the dropped columns.
func (d *Dataset) Record(row int, drop ...string) map[string]interface{} {
	skip := make(map[string]struct{}, len(drop))
	for _, name := range drop {
		skip[name] = struct{}{}
	}
	out := make(map[string]interface{}, len(d.Header))
	for i, name := range d.Header {
		if _, ok := skip[name]; ok || i >= len(d.Rows[row]) {
			continue
		}
		out[name] = d.Rows[row][i]
	}
	return out
}

func (d *Dataset) subset(indices []int) *Dataset {
	rows := make([][]string, len(indices))
	for i, idx := range indices {
		rows[i] = d.Rows[idx]
	}
	return &Dataset{Header: d.Header, Rows: rows}
}

// ReadCSV parses a CSV with a header row.
func ReadCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read csv: missing header row")
	}
	return &Dataset{Header: records[0], Rows: records[1:]}, nil
}

func ReadCSVFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

func WriteCSV(w io.Writer, d *Dataset) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(d.Header); err != nil {
		return err
	}
	if err := writer.WriteAll(d.Rows); err != nil {
		return err
	}
	return writer.Error()
}

func WriteCSVFile(path string, d *Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, d); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// WriteSplits writes train.csv, validation.csv and test.csv into dir.
func WriteSplits(dir string, s *Splits) error {
	for name, d := range map[string]*Dataset{
		"train.csv":      s.Train,
		"validation.csv": s.Validation,
		"test.csv":       s.Test,
	} {
		if err := WriteCSVFile(filepath.Join(dir, name), d); err != nil {
			return err
		}
	}
	return nil
}
