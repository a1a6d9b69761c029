package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter asks per-file yes/no questions. Anything other than an explicit
// "y" or "yes" declines. When the input stream is not a terminal the prompt
// cannot be answered, so every ask declines and a single warning tells the
// operator to pass --yes.
type Prompter struct {
	reader   *bufio.Reader
	printer  *Printer
	terminal bool
	warned   bool
}

// NewPrompter wraps an input stream. Callers pass whether that stream is an
// interactive terminal; tests pass true with a canned reader.
func NewPrompter(in io.Reader, p *Printer, terminal bool) *Prompter {
	return &Prompter{reader: bufio.NewReader(in), printer: p, terminal: terminal}
}

// ConfirmRename asks before renaming one file. Base names only.
func (pr *Prompter) ConfirmRename(oldName, newName string) bool {
	return pr.ask(fmt.Sprintf("Rename?\n  %s\n-> %s\n[y/N]: ", oldName, newName))
}

// ConfirmUndo asks before inverting one logged rename. Full paths.
func (pr *Prompter) ConfirmUndo(newPath, oldPath string) bool {
	return pr.ask(fmt.Sprintf("Undo rename?\n  %s\n-> %s\n[y/N]: ", newPath, oldPath))
}

func (pr *Prompter) ask(question string) bool {
	if !pr.terminal {
		if !pr.warned {
			pr.printer.Warning("stdin is not a terminal; pass --yes to skip confirmation prompts")
			pr.warned = true
		}
		return false
	}

	fmt.Fprint(pr.printer.Out, question)
	line, err := pr.reader.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
