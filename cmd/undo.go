package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/scanstamp/internal/history"
	"github.com/fakeyudi/scanstamp/internal/runlock"
	"github.com/fakeyudi/scanstamp/internal/ui"
	"github.com/fakeyudi/scanstamp/internal/undo"
)

var (
	undoLog    string
	undoYes    bool
	undoDryRun bool
)

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Undo renames recorded in the log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fs := afero.NewOsFs()

		logPath := undoLog
		if logPath == "" {
			logPath = fileCfg.LogPath
		}

		guard, err := (&runlock.Manager{Fs: fs}).Acquire(lockPathFor(logPath))
		if err != nil {
			return err
		}
		defer guard.Release()

		printer := ui.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr())
		prompter := ui.NewPrompter(cmd.InOrStdin(), printer, term.IsTerminal(os.Stdin.Fd()))

		engine := &undo.Engine{
			Fs:      fs,
			Printer: printer,
			Confirm: prompter.ConfirmUndo,
			DryRun:  undoDryRun,
			Yes:     undoYes,
		}
		if _, err := engine.Run(cmd.Context(), logPath); err != nil {
			if errors.Is(err, history.ErrNoLog) {
				return fmt.Errorf("undo log not found: %s", logPath)
			}
			return err
		}
		return nil
	},
}

func init() {
	undoCmd.Flags().StringVar(&undoLog, "log", "", "Path of the rename log to undo from")
	undoCmd.Flags().BoolVar(&undoYes, "yes", false, "Skip all confirmation prompts")
	undoCmd.Flags().BoolVar(&undoDryRun, "dry-run", false, "Preview undo operations without making changes")
	rootCmd.AddCommand(undoCmd)
}
