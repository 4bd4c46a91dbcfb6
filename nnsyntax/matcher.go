package nnsyntax

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/unicode/norm"
)

// ValueMatcher locates the span of sentence that a literal string
// value corresponds to, for entity allocation during Encode. It never
// invents a match. Encode consults it only when RequireGrounding is
// set, and then fails with UnmatchedLiteral on an ok == false return.
type ValueMatcher interface {
	Match(sentence, literal string) (start, end int, ok bool)
}

// defaultMatcher normalizes both sides (lower-case, NFD accent strip)
// before comparing, and only accepts a fuzzy match within a
// length-proportional levenshtein budget.
type defaultMatcher struct {
	// MaxErrorRate bounds edit distance as a fraction of the literal's
	// normalized length; 0 disables fuzzy matching entirely.
	MaxErrorRate float64
}

// DefaultMatcher is the matcher Encode uses unless the caller supplies
// its own.
var DefaultMatcher ValueMatcher = &defaultMatcher{MaxErrorRate: 0.2}

func normalizeForMatch(s string) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

func (m *defaultMatcher) Match(sentence, literal string) (int, int, bool) {
	normLit := normalizeForMatch(literal)
	if normLit == "" {
		return 0, 0, false
	}
	normSent := normalizeForMatch(sentence)
	if idx := strings.Index(normSent, normLit); idx >= 0 {
		return idx, idx + len(normLit), true
	}
	if m.MaxErrorRate <= 0 {
		return 0, 0, false
	}
	budget := int(float64(len(normLit)) * m.MaxErrorRate)
	if budget < 1 {
		return 0, 0, false
	}
	words := strings.Fields(normSent)
	litWords := len(strings.Fields(normLit))
	if litWords == 0 {
		litWords = 1
	}
	bestDist := budget + 1
	bestStart, bestEnd := 0, 0
	found := false
	for i := 0; i+litWords <= len(words); i++ {
		window := strings.Join(words[i:i+litWords], " ")
		d := levenshtein.ComputeDistance(window, normLit)
		if d <= budget && d < bestDist {
			bestDist = d
			start := strings.Index(normSent, window)
			bestStart, bestEnd = start, start+len(window)
			found = true
		}
	}
	return bestStart, bestEnd, found
}
