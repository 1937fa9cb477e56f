// Package dateutils provides the date parsing used when normalizing bank
// CSV exports.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Layout constants for the formats seen in bank exports.
const (
	DateLayoutISO      = "2006-01-02"
	DateLayoutUS       = "01/02/2006"
	DateLayoutUSShort  = "1/2/2006"
	DateLayoutEuropean = "02.01.2006"
	DateLayoutFull     = "2006-01-02 15:04:05"
)

// CommonLayouts is the list of layouts tried, in order, when a format
// spec does not pin its own.
var CommonLayouts = []string{
	DateLayoutISO,
	DateLayoutUS,
	DateLayoutUSShort,
	DateLayoutEuropean,
	DateLayoutFull,
	"02-01-2006",
	"2006/01/02",
	"2-Jan-2006",
	"Jan 2, 2006",
}

var whitespace = regexp.MustCompile(`\s+`)

// Parse attempts to parse a date string using the given layouts, falling
// back to CommonLayouts when none are provided.
func Parse(dateStr string, layouts ...string) (time.Time, error) {
	dateStr = Clean(dateStr)
	if len(layouts) == 0 {
		layouts = CommonLayouts
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}

// Clean trims and collapses whitespace in a date string.
func Clean(dateStr string) string {
	dateStr = strings.TrimSpace(dateStr)
	return whitespace.ReplaceAllString(dateStr, " ")
}

// ToISO formats a time as YYYY-MM-DD, the storage representation.
func ToISO(date time.Time) string {
	return date.Format(DateLayoutISO)
}
