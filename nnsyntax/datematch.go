package nnsyntax

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/lestrrat-go/strftime"

	"github.com/stanford-oval/thingtalk-go/ast"
)

// dateFormats are the renderings groundDate checks the sentence
// against, built with strftime.New/FormatString.
var dateFormats = []string{"%Y-%m-%d", "%B %d, %Y", "%b %d, %Y", "%m/%d/%Y"}

func absDateToTime(d *ast.AbsDate) time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, d.Hour, d.Minute, d.Second, 0, time.UTC)
}

// groundDate reports whether sentence contains a rendering of d, either
// literally (one of dateFormats) or as free text a human might have
// typed, parsed back with dateparse.ParseAny.
func groundDate(sentence string, d *ast.AbsDate) bool {
	if sentence == "" {
		return false
	}
	t := absDateToTime(d)
	for _, layout := range dateFormats {
		f, err := strftime.New(layout)
		if err != nil {
			continue
		}
		if strings.Contains(sentence, f.FormatString(t)) {
			return true
		}
	}
	fields := strings.Fields(sentence)
	for start := range fields {
		for end := start + 1; end <= len(fields) && end <= start+4; end++ {
			candidate := strings.Join(fields[start:end], " ")
			parsed, err := dateparse.ParseAny(candidate)
			if err != nil {
				continue
			}
			if parsed.Year() == t.Year() && parsed.Month() == t.Month() && parsed.Day() == t.Day() {
				return true
			}
		}
	}
	return false
}
