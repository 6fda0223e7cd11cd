package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

func readCSV(path string) (*Table, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv: %w", err)
	}
	defer fh.Close()

	r := csv.NewReader(fh)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return &Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	t := &Table{Columns: make([]Column, len(header))}
	for i, h := range header {
		t.Columns[i] = Column{Name: h}
	}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		t.Rows = append(t.Rows, pad(rec, len(header)))
	}
	return t, nil
}

func writeCSV(path string, t *Table) error {
	fh, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv: %w", err)
	}

	w := csv.NewWriter(fh)
	if err := w.Write(t.Names()); err != nil {
		fh.Close()
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := w.WriteAll(t.Rows); err != nil {
		fh.Close()
		return fmt.Errorf("failed to write csv rows: %w", err)
	}
	return fh.Close()
}

func pad(row []string, n int) []string {
	if len(row) >= n {
		return row[:n]
	}
	out := make([]string, n)
	copy(out, row)
	return out
}
