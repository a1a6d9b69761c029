package history

import (
	"encoding/csv"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// reportHeader is the fixed first row of every report file.
var reportHeader = []string{"old_path", "new_path", "mode", "status"}

// ReportWriter writes the optional per-run CSV report. The report is
// overwritten per run and is never used for undo.
type ReportWriter struct {
	path string
	file afero.File
	csv  *csv.Writer
}

// OpenReport creates (or truncates) the report at path and writes the
// header row.
func OpenReport(fs afero.Fs, path string) (*ReportWriter, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating report directory: %w", err)
		}
	}
	f, err := fs.Create(path)
	if err != nil {
		return nil, fmt.Errorf("opening report: %w", err)
	}
	w := &ReportWriter{path: path, file: f, csv: csv.NewWriter(f)}
	if err := w.csv.Write(reportHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing report header: %w", err)
	}
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing report header: %w", err)
	}
	return w, nil
}

// Path returns the report file path.
func (w *ReportWriter) Path() string {
	return w.path
}

// Write appends one row. newPath may be empty when no target name was
// computed for the candidate.
func (w *ReportWriter) Write(oldPath, newPath, mode, status string) error {
	if err := w.csv.Write([]string{oldPath, newPath, mode, status}); err != nil {
		return fmt.Errorf("writing report row: %w", err)
	}
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return fmt.Errorf("writing report row: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (w *ReportWriter) Close() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.file.Close()
		return fmt.Errorf("flushing report: %w", err)
	}
	return w.file.Close()
}
