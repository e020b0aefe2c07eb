package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Store reads and writes the per-table CSV files under a single data
// directory. It assumes single-process access for the duration of a run;
// there is no locking.
type Store struct {
	dir string
}

func NewStore(dir string) (Store, error) {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return Store{}, fmt.Errorf("create data dir: %w", err)
	}
	return Store{dir: dir}, nil
}

func (s Store) Dir() string {
	return s.dir
}

func (s Store) Path(t Table) string {
	return filepath.Join(s.dir, t.Name()+".csv")
}

// Row is one persisted record, fields in the table's column order.
type Row struct {
	Table  Table
	Fields []string
}

// Get returns the value of the named column, or "" if the row is shorter
// than the schema (legacy rows written before a column existed do not occur
// in this dataset, but a short row must not panic a scan).
func (r Row) Get(column string) string {
	i, ok := columnIndexes[r.Table][column]
	if !ok || i >= len(r.Fields) {
		return ""
	}
	return r.Fields[i]
}

// Scan streams every row of the table to fn, in file order. An absent file
// means an empty table, not an error. The header row is consumed and
// validated for length only; column order is fixed by the schema.
func (s Store) Scan(t Table, fn func(row Row) error) error {
	f, err := os.Open(s.Path(t))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	// retraction leaves rows with empty optional columns; keep the reader
	// permissive on field counts and validate against the schema ourselves
	reader.FieldsPerRecord = -1

	header := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", t.Name(), err)
		}
		if header {
			header = false
			continue
		}
		err = fn(Row{Table: t, Fields: record})
		if err != nil {
			return err
		}
	}
}

// Count returns the number of data rows currently persisted for the table.
func (s Store) Count(t Table) (int, error) {
	n := 0
	err := s.Scan(t, func(Row) error {
		n++
		return nil
	})
	return n, err
}

// AppendWriter appends rows to one table file. Callers must Close it to
// flush buffered rows.
type AppendWriter struct {
	table Table
	file  *os.File
	csv   *csv.Writer
}

// OpenAppend opens the table file for appending, writing the header row if
// and only if the file did not previously exist.
func (s Store) OpenAppend(t Table) (*AppendWriter, error) {
	path := s.Path(t)
	_, statErr := os.Stat(path)
	fresh := os.IsNotExist(statErr)
	if statErr != nil && !fresh {
		return nil, statErr
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s for append: %w", t.Name(), err)
	}
	w := &AppendWriter{table: t, file: f, csv: csv.NewWriter(f)}

	if fresh {
		err = w.csv.Write(t.Columns())
		if err != nil {
			f.Close()
			return nil, err
		}
	}
	return w, nil
}

// Write appends one row. Every column must be present, even when empty, so
// positions stay stable for positional readers.
func (w *AppendWriter) Write(fields []string) error {
	if len(fields) != len(w.table.Columns()) {
		return fmt.Errorf(
			"%s: row has %d fields, schema has %d",
			w.table.Name(), len(fields), len(w.table.Columns()),
		)
	}
	return w.csv.Write(fields)
}

func (w *AppendWriter) Close() error {
	w.csv.Flush()
	err := w.csv.Error()
	closeErr := w.file.Close()
	if err != nil {
		return err
	}
	return closeErr
}

// Rewrite reads every row, drops the ones for which drop returns true, and
// atomically replaces the table file (write to a temp file, then rename).
// A crash mid-rewrite leaves either the old file or the complete new one,
// never a truncated table. Returns the number of rows removed. An absent
// table removes nothing.
func (s Store) Rewrite(t Table, drop func(row Row) bool) (int, error) {
	path := s.Path(t)
	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	tmpPath := path + ".tmp"
	tmp, err := os.Create(tmpPath)
	if err != nil {
		return 0, fmt.Errorf("create temp for %s: %w", t.Name(), err)
	}
	defer os.Remove(tmpPath)

	w := csv.NewWriter(tmp)
	err = w.Write(t.Columns())
	if err != nil {
		tmp.Close()
		return 0, err
	}

	removed := 0
	err = s.Scan(t, func(row Row) error {
		if drop(row) {
			removed++
			return nil
		}
		return w.Write(row.Fields)
	})
	if err != nil {
		tmp.Close()
		return 0, err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}

	err = os.Rename(tmpPath, path)
	if err != nil {
		return 0, fmt.Errorf("replace %s: %w", t.Name(), err)
	}
	return removed, nil
}
