package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/scanstamp/internal/history"
	"github.com/fakeyudi/scanstamp/internal/tui"
)

var (
	historyLog   string
	historyPlain bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View the rename history log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fs := afero.NewOsFs()

		logPath := historyLog
		if logPath == "" {
			logPath = fileCfg.LogPath
		}

		records, err := history.ReadAll(fs, logPath)
		if err != nil {
			if errors.Is(err, history.ErrNoLog) {
				return fmt.Errorf("rename log not found: %s", logPath)
			}
			return err
		}

		if historyPlain {
			printHistory(cmd, records)
			return nil
		}
		return tui.Run(records, logPath)
	},
}

// printHistory writes a plain-text listing to stdout.
func printHistory(cmd *cobra.Command, records []history.Record) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "## Rename History (%d entries)\n", len(records))
	if len(records) == 0 {
		fmt.Fprintln(out, "  (none)")
		return
	}
	for _, rec := range records {
		fmt.Fprintf(out, "  [%s] %s  %s -> %s\n",
			displayTimestamp(rec.Timestamp), rec.Action, rec.OldPath, rec.NewPath)
	}
}

// displayTimestamp reformats a row timestamp for listing; unparseable
// values are shown raw rather than dropped.
func displayTimestamp(raw string) string {
	ts, err := time.Parse(history.TimestampLayout, raw)
	if err != nil {
		return raw
	}
	return ts.Format("2006-01-02 15:04:05")
}

func init() {
	historyCmd.Flags().StringVar(&historyLog, "log", "", "Path of the rename log to view")
	historyCmd.Flags().BoolVar(&historyPlain, "plain", false, "plain text output instead of TUI")
	rootCmd.AddCommand(historyCmd)
}
