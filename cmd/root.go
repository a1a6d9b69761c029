package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/scanstamp/internal/config"
	"github.com/fakeyudi/scanstamp/internal/history"
	"github.com/fakeyudi/scanstamp/internal/oracle"
	"github.com/fakeyudi/scanstamp/internal/pipeline"
	"github.com/fakeyudi/scanstamp/internal/runlock"
	"github.com/fakeyudi/scanstamp/internal/traverse"
	"github.com/fakeyudi/scanstamp/internal/ui"
)

// version is printed by --version.
const version = "0.1.0"

// fileCfg holds the merged config-file defaults, populated in
// PersistentPreRunE. Flags left at their zero value fall back to it.
var fileCfg config.FileConfig

// Mode selection.
var (
	flagDateOnly  bool
	flagRedate    bool
	flagKeepTitle bool
	flagKeepDate  bool
)

// Safety and UX.
var (
	flagConfirm bool
	flagYes     bool
	flagDryRun  bool
	flagLog     string
	flagReport  string
)

// Traversal.
var (
	flagRecursive bool
	flagInclude   []string
	flagExclude   []string
)

// Date selection.
var (
	flagDate          string
	flagUseMtime      bool
	flagPreferDocDate bool
)

// Extraction and naming.
var (
	flagChars       int
	flagExcerptMode string
	flagOCR         bool
)

// Collision handling and LLM control.
var (
	flagSuffix    bool
	flagNoLLM     bool
	flagLocalOnly bool
	flagModel     string
)

var rootCmd = &cobra.Command{
	Use:     "scanstamp [paths...]",
	Short:   "Rename scanned documents with smart, date-prefixed titles",
	Args:    cobra.ArbitraryArgs,
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		global, err := config.LoadGlobal()
		if err != nil {
			return fmt.Errorf("loading global config: %w", err)
		}
		project, err := config.LoadProject()
		if err != nil {
			return fmt.Errorf("loading project config: %w", err)
		}
		fileCfg = config.Merge(global, project)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := buildRunConfig()
		if err != nil {
			return err
		}
		paths := args
		if len(paths) == 0 {
			paths = []string{"."}
		}
		return runBatch(cmd, cfg, paths)
	},
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildRunConfig merges flag values over the config-file defaults and
// validates the result.
func buildRunConfig() (*config.RunConfig, error) {
	mode, err := config.ResolveMode(flagDateOnly, flagRedate, flagKeepTitle)
	if err != nil {
		return nil, err
	}

	// --yes always overrides confirmation prompting.
	confirm := flagConfirm
	if flagYes {
		confirm = false
	}

	logPath := flagLog
	if logPath == "" {
		logPath = fileCfg.LogPath
	}
	chars := flagChars
	if chars == 0 {
		chars = fileCfg.Chars
	}
	excerptMode := flagExcerptMode
	if excerptMode == "" {
		excerptMode = fileCfg.ExcerptMode
	}
	model := flagModel
	if model == "" {
		model = fileCfg.Model
	}
	llm := config.LLMPolicy(fileCfg.LLM)
	if flagNoLLM || flagLocalOnly {
		llm = config.PolicyFromFlags(flagNoLLM, flagLocalOnly)
	}

	collision := config.CollisionSkip
	if flagSuffix {
		collision = config.CollisionSuffix
	}

	cfg := &config.RunConfig{
		Mode:     mode,
		KeepDate: flagKeepDate,

		Confirm: confirm,
		Yes:     flagYes,
		DryRun:  flagDryRun,

		Recursive: flagRecursive,
		Include:   flagInclude,
		Exclude:   flagExclude,

		Date:          normalizeDate(flagDate),
		UseMtime:      flagUseMtime,
		PreferDocDate: flagPreferDocDate,

		Chars:       chars,
		ExcerptMode: config.ExcerptMode(excerptMode),
		OCR:         flagOCR,

		Collision: collision,

		LLM:   llm,
		Model: model,

		LogPath:    logPath,
		ReportPath: flagReport,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// normalizeDate accepts YYYY-MM-DD as well as the canonical YYYYMMDD.
func normalizeDate(date string) string {
	if len(date) == 10 && date[4] == '-' && date[7] == '-' {
		return date[:4] + date[5:7] + date[8:]
	}
	return date
}

// lockPathFor places the run lock beside the log file.
func lockPathFor(logPath string) string {
	return filepath.Join(filepath.Dir(logPath), ".scanstamp.lock")
}

// runBatch expands the target paths, takes the run lock, and drives the
// pipeline over the result. Per-file failures land in the counters; the
// command itself only fails on setup errors.
func runBatch(cmd *cobra.Command, cfg *config.RunConfig, paths []string) error {
	fs := afero.NewOsFs()

	guard, err := (&runlock.Manager{Fs: fs}).Acquire(lockPathFor(cfg.LogPath))
	if err != nil {
		return err
	}
	defer guard.Release()

	// The tool's own files are never rename candidates.
	own := []string{cfg.LogPath, guard.Path(), ".scanstamprc"}
	if cfg.ReportPath != "" {
		own = append(own, cfg.ReportPath)
	}
	files, err := traverse.Expand(fs, paths, traverse.Options{
		Recursive:    cfg.Recursive,
		Include:      cfg.Include,
		Exclude:      cfg.Exclude,
		ExcludePaths: own,
	})
	if err != nil {
		return err
	}

	log, err := history.OpenLog(fs, cfg.LogPath)
	if err != nil {
		return err
	}
	defer log.Close()

	var report *history.ReportWriter
	if cfg.ReportPath != "" {
		report, err = history.OpenReport(fs, cfg.ReportPath)
		if err != nil {
			return err
		}
		defer report.Close()
	}

	printer := ui.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr())
	prompter := ui.NewPrompter(cmd.InOrStdin(), printer, term.IsTerminal(os.Stdin.Fd()))

	runner := &pipeline.Runner{
		Fs:      fs,
		Cfg:     cfg,
		Oracle:  oracle.ForPolicy(cfg.LLM, cfg.Model),
		Log:     log,
		Report:  report,
		Printer: printer,
		Confirm: prompter.ConfirmRename,
	}
	runner.Run(cmd.Context(), files)
	return nil
}

func init() {
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	flags := rootCmd.Flags()

	// Mode selection.
	flags.BoolVar(&flagDateOnly, "date-only", false, "Prepend date only; leave the existing filename intact")
	flags.BoolVar(&flagRedate, "redate", false, "Replace an existing date prefix with a new one")
	flags.BoolVar(&flagKeepTitle, "keep-title", false, "Keep the current title but add a date prefix")
	flags.BoolVar(&flagKeepDate, "keep-date", false, "Keep the existing date prefix in smart-title mode")

	// Safety and UX.
	flags.BoolVar(&flagConfirm, "confirm", false, "Prompt for confirmation before each rename")
	flags.BoolVar(&flagYes, "yes", false, "Skip all confirmation prompts")
	flags.BoolVar(&flagDryRun, "dry-run", false, "Preview renames without making changes")
	flags.StringVar(&flagLog, "log", "", "Path for the undo/rename log file")
	flags.StringVar(&flagReport, "report", "", "Write a summary report to this path")

	// Traversal.
	flags.BoolVar(&flagRecursive, "recursive", false, "Recurse into subdirectories")
	flags.StringArrayVar(&flagInclude, "include", nil, "Only process files matching these patterns")
	flags.StringArrayVar(&flagExclude, "exclude", nil, "Skip files matching these patterns")

	// Date selection.
	flags.StringVar(&flagDate, "date", "", "Use this date (YYYYMMDD) instead of auto-detecting")
	flags.BoolVar(&flagUseMtime, "use-mtime", false, "Fall back to file modification time for the date")
	flags.BoolVar(&flagPreferDocDate, "prefer-doc-date", false, "Prefer the date found inside the document content")

	// Extraction and naming.
	flags.IntVar(&flagChars, "chars", 0, "Max characters to extract for title generation")
	flags.StringVar(&flagExcerptMode, "excerpt-mode", "", "Strategy for extracting text (firstline, headings, firstparas, raw)")
	flags.BoolVar(&flagOCR, "ocr", false, "Use OCR to extract text from image-based documents")

	// Collision handling.
	flags.BoolVar(&flagSuffix, "suffix", false, "Append a numeric suffix to avoid filename collisions")

	// Privacy and LLM control.
	flags.BoolVar(&flagNoLLM, "no-llm", false, "Disable LLM title generation entirely")
	flags.BoolVar(&flagLocalOnly, "local-only", false, "Use only local models; never send data to remote APIs")
	flags.StringVar(&flagModel, "model", "", "Model name for the remote title backend")
}
