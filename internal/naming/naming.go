// Package naming implements filename parsing, date tokens, and title
// sanitization for the canonical "YYYYMMDD - Title.ext" scheme. It is pure
// string logic and must remain free of filesystem access.
package naming

import (
	"fmt"
	"regexp"
	"runtime"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// DateLayout is the time.Format layout for the 8-digit date token.
const DateLayout = "20060102"

// datedStemRE matches a stem that already carries a date prefix: optional
// whitespace, exactly 8 digits, optional whitespace, a literal hyphen,
// optional whitespace, then a non-empty remainder. Detection always operates
// on the stem, never the extension.
var datedStemRE = regexp.MustCompile(`^\s*(\d{8})\s*-\s*(.+)$`)

// invalidChars are rejected on Windows filenames. They are dropped on every
// platform so generated names stay portable.
const invalidChars = `<>:"/\|?*`

// ParsedName is the decomposition of a filename into its date token, title
// fragment, and extension. For undated names Title holds the whole stem and
// Date is empty.
type ParsedName struct {
	Date  string
	Title string
	Ext   string
	Dated bool
}

// SplitExt splits a file base name into stem and extension. A dotfile such
// as ".profile" has no extension; its full name is the stem.
func SplitExt(name string) (stem, ext string) {
	for i := len(name) - 1; i > 0 && name[i] != '/'; i-- {
		if name[i] == '.' {
			return name[:i], name[i:]
		}
	}
	return name, ""
}

// Parse decomposes a file base name into date token, title fragment, and
// extension.
func Parse(name string) ParsedName {
	stem, ext := SplitExt(name)
	if m := datedStemRE.FindStringSubmatch(stem); m != nil {
		return ParsedName{Date: m[1], Title: m[2], Ext: ext, Dated: true}
	}
	return ParsedName{Title: stem, Ext: ext}
}

// IsDated reports whether the file base name already carries a date prefix.
func IsDated(name string) bool {
	stem, _ := SplitExt(name)
	return datedStemRE.MatchString(stem)
}

// ValidDateToken reports whether s is exactly 8 digits forming a real
// calendar date.
func ValidDateToken(s string) bool {
	if len(s) != 8 {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// DateToken formats t as an 8-digit date token in local time.
func DateToken(t time.Time) string {
	return t.Format(DateLayout)
}

// Sanitize normalizes a raw title into a safe, portable filename component.
// It strips one layer of surrounding quotes, drops control and
// filesystem-invalid characters, collapses whitespace, and optionally
// applies per-word capitalization. It never adds dates or extensions.
// An empty result means the title carried no usable characters.
func Sanitize(title string, titleCase bool) string {
	t := strings.TrimSpace(title)

	// External title sources tend to wrap their answer in quotes.
	if len(t) >= 2 {
		first, last := t[0], t[len(t)-1]
		if first == last && (first == '"' || first == '\'') {
			t = strings.TrimSpace(t[1 : len(t)-1])
		}
	}

	t = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		if strings.ContainsRune(invalidChars, r) {
			return -1
		}
		return r
	}, t)

	// Fields both collapses internal runs and trims the ends.
	t = strings.Join(strings.Fields(t), " ")

	if titleCase {
		t = TitleCase(t)
	}
	return t
}

// TitleCase upper-cases the first letter of each whitespace-separated token
// and leaves the rest of the token untouched, so "Dad's cheat sheet" becomes
// "Dad's Cheat Sheet" rather than "Dad'S Cheat Sheet".
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		if r == utf8.RuneError && size <= 1 {
			continue
		}
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// Assemble constructs the final file base name. Hyphen spacing is normalized
// here regardless of how the source name was spaced.
func Assemble(date, title, ext string) string {
	return date + " - " + title + ext
}

// WithSuffix inserts a numbered collision suffix before the extension:
// WithSuffix("20240101 - Report.pdf", 2) is "20240101 - Report (2).pdf".
func WithSuffix(name string, n int) string {
	stem, ext := SplitExt(name)
	return fmt.Sprintf("%s (%d)%s", stem, n, ext)
}

// EquivalentPath reports whether two paths refer to the same directory entry
// under the platform's case rules. On case-insensitive filesystems a rename
// that only changes letter case targets the source file itself and must not
// be treated as a collision.
func EquivalentPath(a, b string) bool {
	if a == b {
		return true
	}
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		return strings.EqualFold(a, b)
	}
	return false
}
