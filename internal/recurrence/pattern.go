// Package recurrence implements the recurrence pattern grammar (spec §4.2,
// §4.6) shared by the Task API's validation path and the Recurring
// Generator. Grounded on original_source's src/utils/recurrence.py.
package recurrence

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Type is the recurrence pattern kind.
type Type string

const (
	Daily   Type = "daily"
	Weekly  Type = "weekly"
	Monthly Type = "monthly"
	Yearly  Type = "yearly"
)

// weekdayNames maps both long and short, case-insensitive day names to
// Go's time.Weekday numbering adjusted so Monday=0..Sunday=6, matching the
// source's WEEKDAY_NAMES table.
var weekdayNames = map[string]int{
	"monday": 0, "tuesday": 1, "wednesday": 2, "thursday": 3, "friday": 4, "saturday": 5, "sunday": 6,
	"mon": 0, "tue": 1, "wed": 2, "thu": 3, "fri": 4, "sat": 5, "sun": 6,
}

// Pattern is a parsed recurrence pattern.
type Pattern struct {
	Type Type
	// Days holds weekday numbers (0=Monday..6=Sunday) for weekly patterns
	// with explicit days, sorted ascending. Empty means "same weekday as
	// the anchor date".
	Days []int
	// Dates holds day-of-month numbers for monthly patterns with explicit
	// dates, sorted ascending. Empty means "same day-of-month as anchor".
	Dates []int
	Raw   string
}

// Validate checks pattern syntax without building a Pattern, matching the
// source's validate_pattern two-step design (validate, then parse).
func Validate(pattern string) (bool, string) {
	if strings.TrimSpace(pattern) == "" {
		return false, "pattern must be a non-empty string"
	}
	p := strings.ToLower(strings.TrimSpace(pattern))
	typePart, paramPart, hasParams := cutPattern(p)

	switch Type(typePart) {
	case Daily, Weekly, Monthly, Yearly:
	default:
		return false, fmt.Sprintf("invalid pattern type %q. must be one of: daily, weekly, monthly, yearly", typePart)
	}

	if !hasParams {
		return true, ""
	}

	switch Type(typePart) {
	case Daily:
		return false, "daily pattern does not accept parameters"
	case Yearly:
		return false, "yearly pattern does not accept parameters"
	case Weekly:
		for _, name := range strings.Split(paramPart, ",") {
			name = strings.TrimSpace(name)
			if _, ok := weekdayNames[name]; !ok {
				return false, fmt.Sprintf("invalid weekday %q", name)
			}
		}
	case Monthly:
		for _, raw := range strings.Split(paramPart, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				return false, "monthly pattern parameters must be comma-separated numbers (e.g. '1,15,30')"
			}
			if n < 1 || n > 31 {
				return false, fmt.Sprintf("invalid day-of-month %d. must be between 1 and 31", n)
			}
		}
	}
	return true, ""
}

// Parse validates and parses pattern into a structured Pattern.
func Parse(pattern string) (*Pattern, error) {
	ok, msg := Validate(pattern)
	if !ok {
		return nil, fmt.Errorf("invalid recurrence pattern: %s", msg)
	}

	p := strings.ToLower(strings.TrimSpace(pattern))
	typePart, paramPart, hasParams := cutPattern(p)

	result := &Pattern{Type: Type(typePart), Raw: p}
	if !hasParams {
		return result, nil
	}

	switch result.Type {
	case Weekly:
		for _, name := range strings.Split(paramPart, ",") {
			result.Days = append(result.Days, weekdayNames[strings.TrimSpace(name)])
		}
		sort.Ints(result.Days)
	case Monthly:
		for _, raw := range strings.Split(paramPart, ",") {
			n, _ := strconv.Atoi(strings.TrimSpace(raw))
			result.Dates = append(result.Dates, n)
		}
		sort.Ints(result.Dates)
	}
	return result, nil
}

func cutPattern(p string) (typePart, paramPart string, hasParams bool) {
	idx := strings.Index(p, ":")
	if idx < 0 {
		return strings.TrimSpace(p), "", false
	}
	return strings.TrimSpace(p[:idx]), strings.TrimSpace(p[idx+1:]), true
}

// NextOccurrence computes the next occurrence after from, or nil if past
// end (when end is non-nil). Grounded on calculate_next_occurrence.
func NextOccurrence(pattern *Pattern, from time.Time, end *time.Time) *time.Time {
	var next time.Time

	switch pattern.Type {
	case Daily:
		next = from.AddDate(0, 0, 1)
	case Weekly:
		if len(pattern.Days) > 0 {
			next = nextWeeklyOccurrence(pattern.Days, from)
		} else {
			next = from.AddDate(0, 0, 7)
		}
	case Monthly:
		if len(pattern.Dates) > 0 {
			next = nextMonthlyOccurrence(pattern.Dates, from)
		} else {
			next = clampToMonth(from.Year(), int(from.Month())+1, from.Day(), from)
		}
	case Yearly:
		next = from.AddDate(1, 0, 0)
	default:
		return nil
	}

	if end != nil && next.After(*end) {
		return nil
	}
	return &next
}

// AllOccurrences enumerates occurrences strictly after start and up to and
// including end, capped at max. start itself is never included.
func AllOccurrences(pattern *Pattern, start, end time.Time, max int) []time.Time {
	var out []time.Time
	cursor := start
	for len(out) < max {
		next := NextOccurrence(pattern, cursor, &end)
		if next == nil {
			break
		}
		out = append(out, *next)
		cursor = *next
	}
	return out
}

// goWeekday converts time.Weekday (Sunday=0) to Monday=0..Sunday=6.
func goWeekday(t time.Time) int {
	wd := int(t.Weekday())
	return (wd + 6) % 7
}

func nextWeeklyOccurrence(days []int, from time.Time) time.Time {
	current := goWeekday(from)

	for _, d := range days {
		if d > current {
			return from.AddDate(0, 0, d-current)
		}
	}
	// No day ahead this week: wrap to the first configured day next week.
	daysAhead := (7 - current) + days[0]
	return from.AddDate(0, 0, daysAhead)
}

func nextMonthlyOccurrence(dates []int, from time.Time) time.Time {
	currentDay := from.Day()

	for _, d := range dates {
		if d > currentDay {
			return clampToMonth(from.Year(), int(from.Month()), d, from)
		}
	}
	// No date ahead this month: wrap to the first configured date next month.
	return clampToMonth(from.Year(), int(from.Month())+1, dates[0], from)
}

// clampToMonth builds a date in (year, month, day) clamping day to the last
// valid day of that month (spec §4.2's "clamp to last valid day" rule;
// handles February 28/29 and 30-day months).
func clampToMonth(year, month, day int, reference time.Time) time.Time {
	for month > 12 {
		month -= 12
		year++
	}
	for month < 1 {
		month += 12
		year--
	}

	lastDay := daysInMonth(year, month)
	if day > lastDay {
		day = lastDay
	}

	return time.Date(year, time.Month(month), day,
		reference.Hour(), reference.Minute(), reference.Second(), reference.Nanosecond(), reference.Location())
}

func daysInMonth(year, month int) int {
	firstOfNext := time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
	lastOfMonth := firstOfNext.AddDate(0, 0, -1)
	return lastOfMonth.Day()
}
