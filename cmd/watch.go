package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/scanstamp/internal/config"
	"github.com/fakeyudi/scanstamp/internal/history"
	"github.com/fakeyudi/scanstamp/internal/oracle"
	"github.com/fakeyudi/scanstamp/internal/pipeline"
	"github.com/fakeyudi/scanstamp/internal/runlock"
	"github.com/fakeyudi/scanstamp/internal/ui"
	"github.com/fakeyudi/scanstamp/internal/watch"
)

// Mode selection.
var (
	watchDateOnly  bool
	watchRedate    bool
	watchKeepTitle bool
)

// Safety, traversal, and LLM control.
var (
	watchYes       bool
	watchDryRun    bool
	watchRecursive bool
	watchSuffix    bool
	watchOCR       bool
	watchNoLLM     bool
	watchLocalOnly bool
	watchLogFlag   string
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a directory and rename new scans as they settle",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := config.ResolveMode(watchDateOnly, watchRedate, watchKeepTitle)
		if err != nil {
			return err
		}

		logPath := watchLogFlag
		if logPath == "" {
			logPath = fileCfg.LogPath
		}
		collision := config.CollisionSkip
		if watchSuffix {
			collision = config.CollisionSuffix
		}
		llm := config.LLMPolicy(fileCfg.LLM)
		if watchNoLLM || watchLocalOnly {
			llm = config.PolicyFromFlags(watchNoLLM, watchLocalOnly)
		}

		cfg := &config.RunConfig{
			Mode:        mode,
			Yes:         watchYes,
			DryRun:      watchDryRun,
			Recursive:   watchRecursive,
			Chars:       fileCfg.Chars,
			ExcerptMode: config.ExcerptMode(fileCfg.ExcerptMode),
			OCR:         watchOCR,
			Collision:   collision,
			LLM:         llm,
			Model:       fileCfg.Model,
			LogPath:     logPath,
		}
		// There is nobody to answer per-file prompts in a watch loop.
		if !cfg.Yes && !cfg.DryRun {
			return &config.ConfigError{Reason: "watch mode requires --yes or --dry-run"}
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}

		fs := afero.NewOsFs()
		guard, err := (&runlock.Manager{Fs: fs}).Acquire(lockPathFor(cfg.LogPath))
		if err != nil {
			return err
		}
		defer guard.Release()

		log, err := history.OpenLog(fs, cfg.LogPath)
		if err != nil {
			return err
		}
		defer log.Close()

		printer := ui.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr())
		watcher := &watch.Watcher{
			Runner: &pipeline.Runner{
				Fs:      fs,
				Cfg:     cfg,
				Oracle:  oracle.ForPolicy(cfg.LLM, cfg.Model),
				Log:     log,
				Printer: printer,
			},
			Dir:       dir,
			Recursive: watchRecursive,
			Ignore:    []string{cfg.LogPath, guard.Path(), ".scanstamprc"},
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		printer.Line("Watching %s for new scans. Press Ctrl-C to stop.", dir)
		_, err = watcher.Run(ctx)
		return err
	},
}

func init() {
	watchCmd.Flags().BoolVar(&watchDateOnly, "date-only", false, "Prepend date only; leave the existing filename intact")
	watchCmd.Flags().BoolVar(&watchRedate, "redate", false, "Replace an existing date prefix with a new one")
	watchCmd.Flags().BoolVar(&watchKeepTitle, "keep-title", false, "Keep the current title but add a date prefix")
	watchCmd.Flags().BoolVar(&watchYes, "yes", false, "Rename without prompting")
	watchCmd.Flags().BoolVar(&watchDryRun, "dry-run", false, "Preview renames without making changes")
	watchCmd.Flags().BoolVar(&watchRecursive, "recursive", false, "Watch subdirectories too")
	watchCmd.Flags().BoolVar(&watchSuffix, "suffix", false, "Append a numeric suffix to avoid filename collisions")
	watchCmd.Flags().BoolVar(&watchOCR, "ocr", false, "Use OCR to extract text from image-based documents")
	watchCmd.Flags().BoolVar(&watchNoLLM, "no-llm", false, "Disable LLM title generation entirely")
	watchCmd.Flags().BoolVar(&watchLocalOnly, "local-only", false, "Use only local models; never send data to remote APIs")
	watchCmd.Flags().StringVar(&watchLogFlag, "log", "", "Path for the undo/rename log file")
	rootCmd.AddCommand(watchCmd)
}
