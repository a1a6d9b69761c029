package pipeline

import (
	"github.com/spf13/afero"
)

// StepResult reports what the executor did with a plan.
type StepResult int

const (
	// Performed means the rename landed on the filesystem.
	Performed StepResult = iota
	// Previewed means dry-run was active and nothing was touched.
	Previewed
)

// Executor applies renames through an afero filesystem, so the whole
// pipeline can run against an in-memory tree in tests. Dry-run is decided
// here and nowhere else.
type Executor struct {
	fs     afero.Fs
	dryRun bool
}

// NewExecutor builds an executor over the given filesystem.
func NewExecutor(fsys afero.Fs, dryRun bool) *Executor {
	return &Executor{fs: fsys, dryRun: dryRun}
}

// Execute renames oldPath to newPath. A dry-run returns Previewed without
// touching the filesystem; an exact self-rename is a successful no-op.
// Failures come back as a classified *RenameError.
func (e *Executor) Execute(oldPath, newPath string) (StepResult, error) {
	if e.dryRun {
		return Previewed, nil
	}
	if oldPath == newPath {
		return Performed, nil
	}
	if err := e.fs.Rename(oldPath, newPath); err != nil {
		return Performed, &RenameError{
			Old:  oldPath,
			New:  newPath,
			Kind: classifyRename(err),
			Err:  err,
		}
	}
	return Performed, nil
}
