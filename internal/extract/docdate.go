package extract

import (
	"regexp"

	"github.com/fakeyudi/scanstamp/internal/naming"
)

// Date patterns recognized inside document text, most specific first.
// Each submatch layout normalizes to YYYYMMDD.
var docDatePatterns = []struct {
	re    *regexp.Regexp
	order [3]int // submatch indices for year, month, day
}{
	{regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`), [3]int{1, 2, 3}},
	{regexp.MustCompile(`\b(\d{4})/(\d{2})/(\d{2})\b`), [3]int{1, 2, 3}},
	{regexp.MustCompile(`\b(\d{2})\.(\d{2})\.(\d{4})\b`), [3]int{3, 2, 1}},
	{regexp.MustCompile(`\b(\d{8})\b`), [3]int{1, 0, 0}},
}

// FindDocDate scans an excerpt for the first recognizable date and returns
// it as a YYYYMMDD token. Matches that do not form a real calendar date are
// skipped so a stray number never becomes a date prefix.
func FindDocDate(excerpt string) (string, bool) {
	for _, p := range docDatePatterns {
		for _, m := range p.re.FindAllStringSubmatch(excerpt, -1) {
			var token string
			if p.order[1] == 0 {
				token = m[1]
			} else {
				token = m[p.order[0]] + m[p.order[1]] + m[p.order[2]]
			}
			if naming.ValidDateToken(token) {
				return token, true
			}
		}
	}
	return "", false
}
