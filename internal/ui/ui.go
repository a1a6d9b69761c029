// Package ui renders the per-file console lines, the run summary, and the
// confirmation prompts. Output wording is part of the tool's contract, so
// styling only ever colors a line, never changes its text.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
)

var (
	renamedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	dryRunStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("178"))

	skipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	failedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208"))

	headerStyle = lipgloss.NewStyle().
			Bold(true)
)

// Printer writes run output to an injected pair of streams. Color is only
// applied when Out is a terminal and NO_COLOR is unset, so captured output
// in tests and pipes stays byte-plain.
type Printer struct {
	Out   io.Writer
	Err   io.Writer
	color bool
}

// NewPrinter builds a printer for the given streams.
func NewPrinter(out, errOut io.Writer) *Printer {
	p := &Printer{Out: out, Err: errOut}
	if f, ok := out.(*os.File); ok {
		p.color = term.IsTerminal(f.Fd()) && os.Getenv("NO_COLOR") == ""
	}
	return p
}

func (p *Printer) paint(st lipgloss.Style, s string) string {
	if !p.color {
		return s
	}
	return st.Render(s)
}

// Renamed reports a completed rename. Base names only.
func (p *Printer) Renamed(oldName, newName string) {
	fmt.Fprintf(p.Out, "%s %s -> %s\n", p.paint(renamedStyle, "Renamed:"), oldName, newName)
}

// DryRun previews a rename that was not performed. Base names only.
func (p *Printer) DryRun(oldName, newName string) {
	fmt.Fprintf(p.Out, "%s %s -> %s\n", p.paint(dryRunStyle, "DRY RUN:"), oldName, newName)
}

// AlreadyDated reports a date-only skip of an already dated file.
func (p *Printer) AlreadyDated(name string) {
	fmt.Fprintf(p.Out, "%s\n", p.paint(skipStyle, "Already dated, skipping: "+name))
}

// Exists reports a collision skip under the skip policy.
func (p *Printer) Exists(newName string) {
	fmt.Fprintf(p.Out, "%s\n", p.paint(skipStyle, "Exists, skipping: "+newName))
}

// Failed reports a per-file failure. Full path, so the line is actionable.
func (p *Printer) Failed(path string, err error) {
	fmt.Fprintf(p.Out, "%s %s (%v)\n", p.paint(failedStyle, "FAILED:"), path, err)
}

// Warning writes an operator warning to the error stream.
func (p *Printer) Warning(msg string) {
	fmt.Fprintf(p.Err, "%s %s\n", p.paint(warnStyle, "WARNING:"), msg)
}

// Header writes a bold standalone line.
func (p *Printer) Header(s string) {
	fmt.Fprintf(p.Out, "%s\n", p.paint(headerStyle, s))
}

// Line writes a plain line to the output stream.
func (p *Printer) Line(format string, args ...any) {
	fmt.Fprintf(p.Out, format+"\n", args...)
}

// UndoMissing reports an undo entry whose renamed file no longer exists.
func (p *Printer) UndoMissing(newPath string) {
	fmt.Fprintf(p.Out, "%s\n", p.paint(skipStyle, "Missing, skipping undo: "+newPath))
}

// UndoConflict reports an undo entry whose original path is occupied again.
func (p *Printer) UndoConflict(oldPath string) {
	fmt.Fprintf(p.Out, "%s\n", p.paint(skipStyle, "Conflict, skipping undo: "+oldPath))
}

// UndoDryRun previews an undo inversion.
func (p *Printer) UndoDryRun(newPath, oldPath string) {
	fmt.Fprintf(p.Out, "%s %s -> %s\n", p.paint(dryRunStyle, "DRY RUN UNDO:"), newPath, oldPath)
}

// UndoDeclined reports a per-file undo the user turned down.
func (p *Printer) UndoDeclined(newPath string) {
	fmt.Fprintf(p.Out, "%s\n", p.paint(skipStyle, "Skipping undo: "+newPath))
}

// Undone reports a completed inversion.
func (p *Printer) Undone(newPath, oldPath string) {
	fmt.Fprintf(p.Out, "%s %s -> %s\n", p.paint(renamedStyle, "Undone:"), newPath, oldPath)
}

// Summary prints the end-of-run block: a blank separator, the four counter
// lines, the log path, and the report path when one was written.
func (p *Printer) Summary(renamed, skipped, exists, failed int, logPath, reportPath string) {
	fmt.Fprintln(p.Out)
	p.Header("Summary")
	fmt.Fprintf(p.Out, "Renamed: %d\n", renamed)
	fmt.Fprintf(p.Out, "Skipped: %d\n", skipped)
	fmt.Fprintf(p.Out, "Exists:  %d\n", exists)
	fmt.Fprintf(p.Out, "Failed:  %d\n", failed)
	fmt.Fprintf(p.Out, "Log:     %s\n", logPath)
	if reportPath != "" {
		fmt.Fprintf(p.Out, "Report:  %s\n", reportPath)
	}
}
