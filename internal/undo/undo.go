// Package undo replays the rename log in reverse, restoring files to the
// names they carried before a run. Rows that were successfully inverted are
// consumed from the log, so running undo twice is a no-op instead of a
// stream of spurious conflicts.
package undo

import (
	"context"

	"github.com/spf13/afero"

	"github.com/fakeyudi/scanstamp/internal/history"
	"github.com/fakeyudi/scanstamp/internal/pipeline"
	"github.com/fakeyudi/scanstamp/internal/ui"
)

// Engine inverts logged renames one record at a time. Like the batch
// runner, every collaborator is injected and a single bad record never
// stops the pass.
type Engine struct {
	Fs      afero.Fs
	Printer *ui.Printer

	// Confirm asks before one inversion (full paths, newest name first).
	// A nil Confirm declines.
	Confirm func(newPath, oldPath string) bool

	DryRun bool
	Yes    bool
}

// Run undoes the renames recorded at logPath, newest first. Records whose
// files moved on (missing or conflicting) are skipped and kept in the log;
// inverted records are consumed by atomically rewriting the log without
// them. Dry-run previews only and never touches the log. Returns ErrNoLog
// when there is no log to undo from.
func (e *Engine) Run(ctx context.Context, logPath string) (pipeline.Counters, error) {
	var counters pipeline.Counters

	records, err := history.ReadAll(e.Fs, logPath)
	if err != nil {
		return counters, err
	}

	consumed := make(map[int]bool)
	for i := len(records) - 1; i >= 0; i-- {
		if ctx.Err() != nil {
			break
		}
		rec := records[i]
		if rec.Action != history.ActionRename {
			continue
		}
		if e.invert(rec, &counters) {
			consumed[i] = true
		}
	}

	if e.DryRun || len(consumed) == 0 {
		return counters, nil
	}

	surviving := make([]history.Record, 0, len(records)-len(consumed))
	for i, rec := range records {
		if !consumed[i] {
			surviving = append(surviving, rec)
		}
	}
	if err := history.Rewrite(e.Fs, logPath, surviving); err != nil {
		return counters, err
	}
	return counters, nil
}

// invert processes one record and reports whether the rename was actually
// reversed on disk.
func (e *Engine) invert(rec history.Record, counters *pipeline.Counters) bool {
	newPath, oldPath := rec.NewPath, rec.OldPath

	// The renamed file must still be there, and the original name must be
	// free. Anything else means the world moved on; never overwrite.
	fi, err := e.Fs.Stat(newPath)
	if err != nil || !fi.Mode().IsRegular() {
		e.Printer.UndoMissing(newPath)
		counters.Skipped++
		return false
	}
	if occupied, err := afero.Exists(e.Fs, oldPath); err == nil && occupied {
		e.Printer.UndoConflict(oldPath)
		counters.Skipped++
		return false
	}

	if e.DryRun {
		e.Printer.UndoDryRun(newPath, oldPath)
		counters.Skipped++
		return false
	}

	if !e.Yes {
		if e.Confirm == nil || !e.Confirm(newPath, oldPath) {
			e.Printer.UndoDeclined(newPath)
			counters.Skipped++
			return false
		}
	}

	if err := e.Fs.Rename(newPath, oldPath); err != nil {
		counters.Failed++
		e.Printer.Failed(newPath, err)
		return false
	}
	e.Printer.Undone(newPath, oldPath)
	counters.Renamed++
	return true
}
