package pipeline

import (
	"time"

	"github.com/fakeyudi/scanstamp/internal/config"
	"github.com/fakeyudi/scanstamp/internal/naming"
)

// ResolveInput carries the per-candidate facts gathered before resolution.
// Excerpt-derived values are supplied by the orchestrator, keeping this
// function pure: same input, same name.
type ResolveInput struct {
	Name        string // current base name
	ModTime     time.Time
	Now         time.Time
	OracleTitle string // smart-title suggestion, may be empty
	DocDate     string // date found inside the document, may be empty
}

// ResolveName decides the desired base name for one candidate. The extension
// is carried over byte for byte; ErrEmptyTitle is returned when sanitization
// leaves no title at all.
func ResolveName(cfg *config.RunConfig, in ResolveInput) (string, error) {
	parsed := naming.Parse(in.Name)

	date := chooseDate(cfg, in)
	if cfg.KeepDate && cfg.Mode == config.ModeSmartTitle && parsed.Dated {
		date = parsed.Date
	}

	title := existingTitle(parsed)
	if cfg.Mode == config.ModeSmartTitle && in.OracleTitle != "" {
		title = in.OracleTitle
	}

	final := naming.Sanitize(title, cfg.Mode.TitleCase())
	if final == "" {
		return "", ErrEmptyTitle
	}
	return naming.Assemble(date, final, parsed.Ext), nil
}

// chooseDate applies the date selection priority: explicit override, a date
// found inside the document when prefer-doc-date is set, file modification
// time when use-mtime is set, then today.
func chooseDate(cfg *config.RunConfig, in ResolveInput) string {
	if cfg.Date != "" {
		return cfg.Date
	}
	if cfg.PreferDocDate && naming.ValidDateToken(in.DocDate) {
		return in.DocDate
	}
	if cfg.UseMtime {
		return naming.DateToken(in.ModTime)
	}
	return naming.DateToken(in.Now)
}

// existingTitle is the title a file already carries: the fragment after the
// date prefix for dated names, the whole stem otherwise.
func existingTitle(parsed naming.ParsedName) string {
	return parsed.Title
}
