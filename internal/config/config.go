// Package config defines the run configuration for scanstamp: operating
// modes, safety flags, and the optional JSON config files that supply
// defaults underneath the CLI flags.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fakeyudi/scanstamp/internal/naming"
)

// Mode selects how the title of a renamed file is determined.
type Mode string

const (
	ModeSmartTitle Mode = "smart-title"
	ModeDateOnly   Mode = "date-only"
	ModeRedate     Mode = "redate"
	ModeKeepTitle  Mode = "keep-title"
)

// Valid reports whether m is one of the defined modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeSmartTitle, ModeDateOnly, ModeRedate, ModeKeepTitle:
		return true
	}
	return false
}

// TitleCase reports whether titles are capitalized in this mode. keep-title
// preserves the existing title byte for byte.
func (m Mode) TitleCase() bool {
	return m != ModeKeepTitle
}

// CollisionPolicy decides what happens when the desired name is taken.
type CollisionPolicy string

const (
	CollisionSkip   CollisionPolicy = "skip"
	CollisionSuffix CollisionPolicy = "suffix"
)

// LLMPolicy controls which title oracle backends may be consulted.
type LLMPolicy string

const (
	LLMEnabled   LLMPolicy = "enabled"
	LLMDisabled  LLMPolicy = "disabled"
	LLMLocalOnly LLMPolicy = "local-only"
)

// Valid reports whether p is one of the defined policies.
func (p LLMPolicy) Valid() bool {
	switch p {
	case LLMEnabled, LLMDisabled, LLMLocalOnly:
		return true
	}
	return false
}

// ExcerptMode selects the strategy for building an excerpt from extracted
// text.
type ExcerptMode string

const (
	ExcerptFirstLine  ExcerptMode = "firstline"
	ExcerptHeadings   ExcerptMode = "headings"
	ExcerptFirstParas ExcerptMode = "firstparas"
	ExcerptRaw        ExcerptMode = "raw"
)

// Valid reports whether e is one of the defined strategies.
func (e ExcerptMode) Valid() bool {
	switch e {
	case ExcerptFirstLine, ExcerptHeadings, ExcerptFirstParas, ExcerptRaw:
		return true
	}
	return false
}

// RunConfig is the complete, validated configuration for a rename run.
// It is built once by the CLI layer and treated as immutable afterwards.
type RunConfig struct {
	Mode     Mode
	KeepDate bool

	Confirm bool
	Yes     bool
	DryRun  bool

	Recursive bool
	Include   []string
	Exclude   []string

	Date          string // explicit YYYYMMDD override, empty when unset
	UseMtime      bool
	PreferDocDate bool

	Chars       int
	ExcerptMode ExcerptMode
	OCR         bool

	Collision CollisionPolicy

	LLM   LLMPolicy
	Model string

	LogPath    string
	ReportPath string
}

// ResolveMode enforces that at most one mode flag is set and returns the
// active mode, defaulting to smart-title.
func ResolveMode(dateOnly, redate, keepTitle bool) (Mode, error) {
	var active []string
	if dateOnly {
		active = append(active, "date-only")
	}
	if redate {
		active = append(active, "redate")
	}
	if keepTitle {
		active = append(active, "keep-title")
	}
	if len(active) > 1 {
		return "", &ConfigError{
			Reason: fmt.Sprintf("exactly one mode flag may be set; received: %s", strings.Join(active, ", ")),
		}
	}
	switch {
	case dateOnly:
		return ModeDateOnly, nil
	case redate:
		return ModeRedate, nil
	case keepTitle:
		return ModeKeepTitle, nil
	}
	return ModeSmartTitle, nil
}

// PolicyFromFlags maps the --no-llm and --local-only flags onto an
// LLMPolicy. Disabling wins over local-only.
func PolicyFromFlags(noLLM, localOnly bool) LLMPolicy {
	switch {
	case noLLM:
		return LLMDisabled
	case localOnly:
		return LLMLocalOnly
	}
	return LLMEnabled
}

// Validate checks cross-field constraints. It returns a ConfigError before
// any file is touched; a run never starts with an invalid configuration.
func (c *RunConfig) Validate() error {
	if !c.Mode.Valid() {
		return &ConfigError{Reason: fmt.Sprintf("unknown mode %q", c.Mode)}
	}
	if c.KeepDate && c.Mode != ModeSmartTitle {
		return &ConfigError{Reason: "--keep-date applies only to smart-title mode"}
	}
	if c.Date != "" && !naming.ValidDateToken(c.Date) {
		return &ConfigError{Reason: "--date must be a valid YYYYMMDD date"}
	}
	if c.Chars <= 0 {
		return &ConfigError{Reason: "--chars must be positive"}
	}
	if !c.ExcerptMode.Valid() {
		return &ConfigError{Reason: fmt.Sprintf("unknown excerpt mode %q", c.ExcerptMode)}
	}
	if !c.LLM.Valid() {
		return &ConfigError{Reason: fmt.Sprintf("unknown llm policy %q", c.LLM)}
	}
	if c.Collision != CollisionSkip && c.Collision != CollisionSuffix {
		return &ConfigError{Reason: fmt.Sprintf("unknown collision policy %q", c.Collision)}
	}
	if c.LogPath == "" {
		return &ConfigError{Reason: "log path must not be empty"}
	}
	return nil
}

// ConfigError reports an invalid flag or config-file combination. It is
// fatal: the batch never starts.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + e.Reason
}

// FileConfig holds the defaults a user may persist in a config file. Only
// values that can be distinguished from "unset" live here; boolean flags
// stay CLI-only.
type FileConfig struct {
	LogPath     string `json:"log_path"`
	ExcerptMode string `json:"excerpt_mode"`
	LLM         string `json:"llm"`
	Model       string `json:"model"`
	Chars       int    `json:"chars"`
}

// Defaults returns the built-in file-config values.
func Defaults() FileConfig {
	return FileConfig{
		LogPath:     ".scanstamp-log.csv",
		ExcerptMode: string(ExcerptFirstParas),
		LLM:         string(LLMEnabled),
		Model:       "gpt-4o-mini",
		Chars:       1200,
	}
}

// LoadGlobal reads ~/.config/scanstamp/config.json.
// Returns defaults if the file is absent.
func LoadGlobal() (*FileConfig, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(home, ".config", "scanstamp", "config.json")
	return loadFile(path, true)
}

// LoadProject reads .scanstamprc in the current working directory.
// Returns nil (no error) if the file is absent.
func LoadProject() (*FileConfig, error) {
	return loadFile(".scanstamprc", false)
}

// loadFile reads and parses a JSON config file at path.
// If returnDefaults is true, returns defaults when the file is absent.
// If returnDefaults is false, returns nil when the file is absent.
func loadFile(path string, returnDefaults bool) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}
	var fc FileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &fc, nil
}

// Merge combines global and project configs, with project taking precedence.
// Missing keys fall back to global, then defaults.
func Merge(global, project *FileConfig) FileConfig {
	result := Defaults()

	apply := func(fc *FileConfig) {
		if fc == nil {
			return
		}
		if fc.LogPath != "" {
			result.LogPath = fc.LogPath
		}
		if fc.ExcerptMode != "" {
			result.ExcerptMode = fc.ExcerptMode
		}
		if fc.LLM != "" {
			result.LLM = fc.LLM
		}
		if fc.Model != "" {
			result.Model = fc.Model
		}
		if fc.Chars > 0 {
			result.Chars = fc.Chars
		}
	}

	apply(global)
	apply(project)
	return result
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
