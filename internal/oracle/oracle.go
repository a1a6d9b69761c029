// Package oracle isolates all title-generation backends behind a minimal,
// testable surface. The rest of the codebase must treat oracle output as
// untrusted input: every response is cleaned to a single unquoted line
// before use, and an empty response always means "use the fallback".
package oracle

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/fakeyudi/scanstamp/internal/config"
)

// Oracle derives a one-line title from a document excerpt. Implementations
// return an error to decline, letting a chained caller try the next backend.
type Oracle interface {
	Title(ctx context.Context, excerpt, fallback string) (string, error)
}

// Clean normalizes a backend response: the first non-blank line wins, one
// layer of surrounding quotes is stripped, and surrounding whitespace is
// dropped. Returns "" when the response holds no usable line.
func Clean(s string) string {
	for _, line := range strings.Split(s, "\n") {
		t := strings.TrimSpace(line)
		if t == "" {
			continue
		}
		if len(t) >= 2 {
			first, last := t[0], t[len(t)-1]
			if first == last && (first == '"' || first == '\'') {
				t = strings.TrimSpace(t[1 : len(t)-1])
			}
		}
		return t
	}
	return ""
}

// FirstLine is the trivial backend: the first non-empty line of the excerpt,
// or the fallback when the excerpt holds nothing usable. It never declines.
type FirstLine struct{}

func (FirstLine) Title(_ context.Context, excerpt, fallback string) (string, error) {
	if t := Clean(excerpt); t != "" {
		return t, nil
	}
	return fallback, nil
}

// Fallback always answers with the fallback title. It backs the disabled
// policy, where no excerpt content may influence the name.
type Fallback struct{}

func (Fallback) Title(_ context.Context, _, fallback string) (string, error) {
	return fallback, nil
}

// Chain consults backends in order and returns the first usable title.
// An empty excerpt short-circuits to the fallback without consulting any
// backend. Chain itself never fails: when every backend declines, the
// fallback is returned.
type Chain struct {
	Backends []Oracle
}

func (c Chain) Title(ctx context.Context, excerpt, fallback string) (string, error) {
	if strings.TrimSpace(excerpt) == "" {
		return fallback, nil
	}
	for _, b := range c.Backends {
		title, err := b.Title(ctx, excerpt, fallback)
		if err != nil {
			continue
		}
		if title = Clean(title); title != "" {
			return title, nil
		}
	}
	return fallback, nil
}

// ForPolicy wires the backend chain permitted by the LLM policy.
// enabled may reach the remote API; local-only is restricted to the local
// sgpt subprocess; disabled never derives titles from content at all.
// Every chain ends in the trivial FirstLine default, so the pipeline never
// depends on which backend is active.
func ForPolicy(policy config.LLMPolicy, model string) Oracle {
	switch policy {
	case config.LLMDisabled:
		return Fallback{}
	case config.LLMLocalOnly:
		return Chain{Backends: []Oracle{&Sgpt{}, FirstLine{}}}
	}

	var backends []Oracle
	if HasAPIKey() {
		backends = append(backends, NewOpenAI(os.Getenv("OPENAI_API_KEY"), model))
	}
	backends = append(backends, &Sgpt{}, FirstLine{})
	return Chain{Backends: backends}
}

// HasAPIKey reports whether the remote backend is configured.
func HasAPIKey() bool {
	return os.Getenv("OPENAI_API_KEY") != ""
}

// HasSgpt reports whether the sgpt binary is on PATH.
func HasSgpt() bool {
	_, err := exec.LookPath("sgpt")
	return err == nil
}

// Available reports whether any non-trivial backend can be consulted.
func Available() bool {
	return HasAPIKey() || HasSgpt()
}

// prompt is the instruction sent to real backends ahead of the excerpt.
const prompt = "Suggest a short descriptive title for this scanned document. " +
	"Reply with the title only: one line, no quotes, no date, no file extension."
