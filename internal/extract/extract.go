// Package extract converts files into short text excerpts suitable for
// title generation and heuristic date parsing. Extraction never mutates its
// inputs and must fail safely: any error degrades to an empty excerpt with a
// method label rather than aborting the caller's run.
package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spf13/afero"

	"github.com/fakeyudi/scanstamp/internal/config"
	"github.com/fakeyudi/scanstamp/internal/naming"
)

// Result is the outcome of one extraction attempt. Method labels the
// backend that handled the file; Err is advisory and never fatal.
type Result struct {
	Excerpt string
	Method  string
	Err     error
}

// Options bound what Excerpt extracts.
type Options struct {
	Mode     config.ExcerptMode
	MaxChars int
	OCR      bool

	// OCRRunner executes the OCR subprocess. Nil selects the real tesseract
	// binary; tests inject a fake.
	OCRRunner Runner
}

// Excerpt extracts a bounded text excerpt from the file at path.
// Unsupported formats return an empty excerpt and a method marker.
func Excerpt(fs afero.Fs, path string, opts Options) Result {
	_, ext := naming.SplitExt(path)

	switch strings.ToLower(ext) {
	case ".txt", ".md", ".markdown":
		return shape(readTextFile(fs, path), opts)
	case ".pdf":
		return shape(readPDF(fs, path), opts)
	case ".docx":
		return shape(readDOCX(fs, path), opts)
	case ".png", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp":
		if !opts.OCR {
			return Result{Method: "unsupported"}
		}
		return shape(runOCR(path, opts.OCRRunner), opts)
	}
	return Result{Method: "unsupported"}
}

// readTextFile reads a plain text or markdown file.
func readTextFile(fs afero.Fs, path string) Result {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return Result{Method: "text", Err: err}
	}
	return Result{Excerpt: string(data), Method: "text"}
}

// shape trims, applies the excerpt strategy, and bounds the result.
func shape(r Result, opts Options) Result {
	if r.Err != nil {
		r.Excerpt = ""
		return r
	}

	text := strings.TrimSpace(r.Excerpt)
	if text == "" {
		if r.Method == "text" {
			r.Method = "text-empty"
		}
		r.Excerpt = ""
		return r
	}

	var excerpt string
	switch opts.Mode {
	case config.ExcerptRaw:
		excerpt = text
	case config.ExcerptFirstLine:
		excerpt = firstLine(text)
	case config.ExcerptHeadings:
		excerpt = headings(text)
	default: // firstparas
		excerpt = firstParagraph(text)
	}

	excerpt = strings.TrimSpace(excerpt)
	if opts.MaxChars > 0 && utf8.RuneCountInString(excerpt) > opts.MaxChars {
		runes := []rune(excerpt)
		excerpt = strings.TrimRightFunc(string(runes[:opts.MaxChars]), unicode.IsSpace)
	}

	r.Excerpt = excerpt
	return r
}

func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	return strings.TrimRight(text, "\r")
}

// headings collects markdown heading lines. Files without headings fall
// back to the first paragraph so the excerpt is never needlessly empty.
func headings(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			lines = append(lines, strings.TrimSpace(strings.TrimLeft(trimmed, "#")))
		}
	}
	if len(lines) == 0 {
		return firstParagraph(text)
	}
	return strings.Join(lines, "\n")
}

// firstParagraph returns the first paragraph-like chunk from a text blob.
// This keeps behavior stable without guessing formatting conventions.
func firstParagraph(text string) string {
	for _, part := range strings.Split(text, "\n\n") {
		if p := strings.TrimSpace(part); p != "" {
			return p
		}
	}
	return text
}
