// Package pipeline orchestrates per-file name resolution, collision
// handling, rename execution, history logging, and the batch summary.
package pipeline

import (
	"context"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/fakeyudi/scanstamp/internal/config"
	"github.com/fakeyudi/scanstamp/internal/extract"
	"github.com/fakeyudi/scanstamp/internal/history"
	"github.com/fakeyudi/scanstamp/internal/naming"
	"github.com/fakeyudi/scanstamp/internal/oracle"
	"github.com/fakeyudi/scanstamp/internal/ui"
)

// Runner executes one batch over a fixed candidate list. Every collaborator
// is injected, so tests drive the whole pipeline against an in-memory
// filesystem with canned oracle, clock, and confirmation functions.
type Runner struct {
	Fs      afero.Fs
	Cfg     *config.RunConfig
	Oracle  oracle.Oracle
	Log     *history.Writer
	Report  *history.ReportWriter // nil when no report was requested
	Printer *ui.Printer

	// Confirm asks before one rename (base names). A nil Confirm declines,
	// which keeps an unwired runner from renaming anything unprompted.
	Confirm func(oldName, newName string) bool

	// Now is the clock for date tokens. Tests override it.
	Now func() time.Time

	// OCR overrides the tesseract invocation in tests.
	OCR extract.Runner
}

// Run processes every candidate sequentially, prints the summary, and
// returns the counters. A single bad file never stops the batch; ctx
// cancellation stops it between files.
func (r *Runner) Run(ctx context.Context, files []string) Counters {
	counters := r.Process(ctx, files)
	r.Summarize(counters)
	return counters
}

// Process runs one batch without printing the summary. Watch mode calls it
// per settled group of files and summarizes once at the end.
func (r *Runner) Process(ctx context.Context, files []string) Counters {
	var counters Counters

	collision := NewCollision(r.Fs, r.Cfg.Collision)
	executor := NewExecutor(r.Fs, r.Cfg.DryRun)

	for _, path := range files {
		if ctx.Err() != nil {
			break
		}
		r.processOne(ctx, path, collision, executor, &counters)
	}
	return counters
}

// Summarize prints the end-of-run block for the given counters.
func (r *Runner) Summarize(counters Counters) {
	reportPath := ""
	if r.Report != nil {
		reportPath = r.Report.Path()
	}
	r.Printer.Summary(counters.Renamed, counters.Skipped, counters.Exists,
		counters.Failed, r.Log.Path(), reportPath)
}

// processOne handles a single candidate: validate, resolve, collide,
// confirm, execute, log, report. Exactly one counter bucket is bumped.
func (r *Runner) processOne(
	ctx context.Context,
	path string,
	collision *Collision,
	executor *Executor,
	counters *Counters,
) {
	// --- Validate ---
	fi, err := r.Fs.Stat(path)
	if err != nil || !fi.Mode().IsRegular() {
		counters.Skipped++
		r.report(path, "", "skipped:not-a-file")
		return
	}

	oldName := filepath.Base(path)

	// Date-only mode leaves already dated files alone, content unread.
	if r.Cfg.Mode == config.ModeDateOnly && naming.IsDated(oldName) {
		r.Printer.AlreadyDated(oldName)
		counters.Skipped++
		r.report(path, "", "skipped")
		return
	}

	// --- Gather content-derived inputs ---
	in := ResolveInput{Name: oldName, ModTime: fi.ModTime(), Now: r.now()}
	if r.Cfg.Mode == config.ModeSmartTitle || r.Cfg.PreferDocDate {
		res := extract.Excerpt(r.Fs, path, extract.Options{
			Mode:      r.Cfg.ExcerptMode,
			MaxChars:  r.Cfg.Chars,
			OCR:       r.Cfg.OCR,
			OCRRunner: r.OCR,
		})
		if r.Cfg.PreferDocDate {
			if d, ok := extract.FindDocDate(res.Excerpt); ok {
				in.DocDate = d
			}
		}
		if r.Cfg.Mode == config.ModeSmartTitle {
			fallback := naming.Parse(oldName).Title
			if title, err := r.Oracle.Title(ctx, res.Excerpt, fallback); err == nil {
				in.OracleTitle = title
			}
		}
	}

	// --- Resolve ---
	newName, err := ResolveName(r.Cfg, in)
	if err != nil {
		counters.Failed++
		r.Printer.Failed(path, err)
		r.report(path, "", "failed")
		return
	}

	dir := filepath.Dir(path)
	if newName == oldName {
		counters.Skipped++
		r.report(path, filepath.Join(dir, newName), "skipped")
		return
	}

	// --- Collide ---
	desired := filepath.Join(dir, newName)
	target, outcome, err := collision.Resolve(path, desired)
	if err != nil {
		counters.Failed++
		r.Printer.Failed(path, err)
		r.report(path, "", "failed")
		return
	}
	if outcome == Exists {
		r.Printer.Exists(newName)
		counters.Exists++
		r.report(path, desired, "exists")
		return
	}

	// --- Preview ---
	if r.Cfg.DryRun {
		r.Printer.DryRun(oldName, filepath.Base(target))
		counters.Skipped++
		r.report(path, target, "renamed:dry-run")
		return
	}

	// --- Confirm ---
	if !r.Cfg.Yes {
		if r.Confirm == nil || !r.Confirm(oldName, filepath.Base(target)) {
			counters.Skipped++
			r.report(path, target, "skipped:user")
			return
		}
	}

	// --- Execute ---
	if _, err := executor.Execute(path, target); err != nil {
		counters.Failed++
		r.Printer.Failed(path, err)
		r.report(path, target, "failed")
		return
	}

	counters.Renamed++
	r.Printer.Renamed(oldName, filepath.Base(target))

	// The file on disk has changed; a logging failure must not undo that
	// fact, so it lands in its own counter with a loud warning.
	if err := r.Log.Append(path, target); err != nil {
		counters.LogErrors++
		r.Printer.Warning((&LogWriteError{Path: r.Log.Path(), Err: err}).Error())
	}
	r.report(path, target, "renamed")
}

func (r *Runner) report(oldPath, newPath, status string) {
	if r.Report == nil {
		return
	}
	if err := r.Report.Write(oldPath, newPath, string(r.Cfg.Mode), status); err != nil {
		r.Printer.Warning(err.Error())
	}
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}
