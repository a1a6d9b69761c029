// Package history owns all persistence related to rename history: the
// append-only CSV log that makes every rename reversible, and the optional
// per-run report.
//
// The log format is append-only CSV to keep undo operations simple,
// auditable, and resilient to partial failures.
package history

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// DefaultLogName is the log file created in the working directory when no
// explicit path is given.
const DefaultLogName = ".scanstamp-log.csv"

// ActionRename is the only action kind currently written. Readers must
// tolerate unknown kinds for forward compatibility.
const ActionRename = "rename"

// TimestampLayout is ISO-8601 with second precision, chosen for human
// readability and sortability.
const TimestampLayout = "2006-01-02T15:04:05"

// ErrNoLog is returned when the log file does not exist.
var ErrNoLog = errors.New("no rename log")

// Record is one row of the rename log. Timestamp is kept as the raw logged
// string so rewriting the log never alters rows it does not touch.
type Record struct {
	Timestamp string
	Action    string
	OldPath   string
	NewPath   string
}

// Writer appends rename records to the log. Each successful rename must be
// logged immediately; rows are flushed as they are written so a crash loses
// at most the row being written.
type Writer struct {
	path string
	file afero.File
	csv  *csv.Writer

	// Now is the clock used for row timestamps. Tests override it.
	Now func() time.Time
}

// OpenLog opens the log at path for appending, creating it and its parent
// directory if needed.
func OpenLog(fs afero.Fs, path string) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
	}
	f, err := fs.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening rename log: %w", err)
	}
	return &Writer{path: path, file: f, csv: csv.NewWriter(f), Now: time.Now}, nil
}

// Path returns the log file path the writer appends to.
func (w *Writer) Path() string {
	return w.path
}

// Append records one successful rename and flushes it to the file.
func (w *Writer) Append(oldPath, newPath string) error {
	row := []string{w.Now().Format(TimestampLayout), ActionRename, oldPath, newPath}
	if err := w.csv.Write(row); err != nil {
		return fmt.Errorf("writing rename log row: %w", err)
	}
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return fmt.Errorf("flushing rename log: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.file.Close()
		return fmt.Errorf("flushing rename log: %w", err)
	}
	return w.file.Close()
}

// ReadAll returns every well-formed row of the log in append order.
// Malformed or truncated rows are skipped rather than aborting the read of
// prior valid rows. Returns ErrNoLog if the file does not exist.
func ReadAll(fs afero.Fs, path string) ([]Record, error) {
	f, err := fs.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoLog
		}
		return nil, fmt.Errorf("opening rename log: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var records []Record
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // damaged row; keep whatever else is readable
		}
		if len(row) != 4 {
			continue
		}
		records = append(records, Record{
			Timestamp: row[0],
			Action:    row[1],
			OldPath:   row[2],
			NewPath:   row[3],
		})
	}
	return records, nil
}

// Rewrite atomically replaces the log with the given records via a temp
// file and rename, preserving row order and raw field values. It is used
// after an undo pass to drop the rows that were successfully inverted.
func Rewrite(fs afero.Fs, path string, records []Record) (err error) {
	tmp, err := afero.TempFile(fs, filepath.Dir(path), "scanstamp-log-*.tmp")
	if err != nil {
		return fmt.Errorf("rewriting rename log: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up the temp file on any error path.
	defer func() {
		if err != nil {
			fs.Remove(tmpName)
		}
	}()

	w := csv.NewWriter(tmp)
	for _, rec := range records {
		if err = w.Write([]string{rec.Timestamp, rec.Action, rec.OldPath, rec.NewPath}); err != nil {
			tmp.Close()
			return fmt.Errorf("rewriting rename log: %w", err)
		}
	}
	w.Flush()
	if err = w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("rewriting rename log: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("rewriting rename log: %w", err)
	}

	if err = fs.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rewriting rename log: %w", err)
	}
	return nil
}
