package recurrence

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// offsetPattern matches "<integer> <unit>" per spec §4.3's reminder-offset
// grammar, case-insensitive, with flexible whitespace.
var offsetPattern = regexp.MustCompile(`^\s*(\d+)\s*([a-zA-Z]+)\s*$`)

var offsetUnits = map[string]time.Duration{
	"minute": time.Minute, "minutes": time.Minute, "min": time.Minute, "mins": time.Minute,
	"hour": time.Hour, "hours": time.Hour, "hr": time.Hour, "hrs": time.Hour,
	"day": 24 * time.Hour, "days": 24 * time.Hour,
	"week": 7 * 24 * time.Hour, "weeks": 7 * 24 * time.Hour, "wk": 7 * 24 * time.Hour, "wks": 7 * 24 * time.Hour,
}

// ParseOffset parses a reminder-offset expression like "45 mins", "1 week",
// "2 HR" into a duration. A parse failure returns ok=false — per spec §4.3
// this is never an error, just "no reminder scheduled".
func ParseOffset(expr string) (d time.Duration, ok bool) {
	m := offsetPattern.FindStringSubmatch(expr)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	unit, found := offsetUnits[strings.ToLower(m[2])]
	if !found {
		return 0, false
	}
	return time.Duration(n) * unit, true
}
