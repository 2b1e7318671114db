package schema

import (
	"strings"
	"time"

	dps "github.com/markusmobius/go-dateparser"
)

var sharedDateParser = &dps.Parser{
	ParserTypes: []dps.ParserType{
		dps.AbsoluteTime,
		dps.NoSpacesTime,
		dps.Timestamp,
		dps.CustomFormat,
	},
}

// ParseFlexibleTime parses a free-form date/time string using go-dateparser.
// Empty or whitespace-only input always fails. The content loader uses this
// as its fallback for frontmatter dates the fixed RFC3339-family layouts
// can't parse.
func ParseFlexibleTime(s string) (time.Time, bool) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, false
	}
	result, err := sharedDateParser.Parse(&dps.Configuration{
		DateOrder:     dps.YMD,
		StrictParsing: false,
		Languages:     []string{"en"},
	}, s)
	if err != nil || result.Time.IsZero() {
		return time.Time{}, false
	}
	return result.Time, true
}

func toDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: int(m), Day: d}
}
