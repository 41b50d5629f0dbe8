package recurrence

import (
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		pattern string
		wantOK  bool
	}{
		{"daily", true},
		{"weekly:monday,friday", true},
		{"monthly:1,15,30", true},
		{"yearly", true},
		{"invalid", false},
		{"daily:1", false},
		{"weekly:someday", false},
		{"monthly:32", false},
		{"monthly:abc", false},
		{"", false},
	}

	for _, c := range cases {
		ok, msg := Validate(c.pattern)
		if ok != c.wantOK {
			t.Errorf("Validate(%q) = (%v, %q), want ok=%v", c.pattern, ok, msg, c.wantOK)
		}
	}
}

func TestParseNormalizesOrder(t *testing.T) {
	p, err := Parse("weekly:friday,monday")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(p.Days) != 2 || p.Days[0] != 0 || p.Days[1] != 4 {
		t.Errorf("Days = %v, want [0 4]", p.Days)
	}
}

func TestNextOccurrenceDaily(t *testing.T) {
	p, _ := Parse("daily")
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	next := NextOccurrence(p, from, nil)
	if next == nil || !next.Equal(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("got %v", next)
	}
}

func TestNextOccurrenceWeeklyFromWednesday(t *testing.T) {
	p, _ := Parse("weekly:friday")
	wed := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC) // a Wednesday
	next := NextOccurrence(p, wed, nil)
	want := time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC) // the following Friday
	if next == nil || !next.Equal(want) {
		t.Errorf("got %v, want %v", next, want)
	}
}

func TestNextOccurrenceWeeklyFromSaturday(t *testing.T) {
	p, _ := Parse("weekly:friday")
	sat := time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC) // a Saturday
	next := NextOccurrence(p, sat, nil)
	want := time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC) // the following Friday
	if next == nil || !next.Equal(want) {
		t.Errorf("got %v, want %v", next, want)
	}
}

func TestNextOccurrenceMonthlyClampsToLastValidDay(t *testing.T) {
	p, _ := Parse("monthly:31")
	from := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	next := NextOccurrence(p, from, nil)
	want := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	if next == nil || !next.Equal(want) {
		t.Fatalf("got %v, want %v", next, want)
	}

	// From inside February itself, the next run should clamp to Feb 28.
	febFrom := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	febNext := NextOccurrence(p, febFrom, nil)
	febWant := time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)
	if febNext == nil || !febNext.Equal(febWant) {
		t.Errorf("got %v, want %v", febNext, febWant)
	}

	// Leap year.
	leapFrom := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	leapNext := NextOccurrence(p, leapFrom, nil)
	leapWant := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	if leapNext == nil || !leapNext.Equal(leapWant) {
		t.Errorf("got %v, want %v", leapNext, leapWant)
	}
}

func TestAllOccurrencesRespectsMax(t *testing.T) {
	p, _ := Parse("daily")
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	occurrences := AllOccurrences(p, start, end, 5)
	if len(occurrences) != 5 {
		t.Fatalf("len = %d, want 5", len(occurrences))
	}
}

func TestParseOffset(t *testing.T) {
	cases := []struct {
		expr string
		want time.Duration
		ok   bool
	}{
		{"45 mins", 45 * time.Minute, true},
		{"1 week", 7 * 24 * time.Hour, true},
		{"2 HR", 2 * time.Hour, true},
		{"tomorrow", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseOffset(c.expr)
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("ParseOffset(%q) = (%v, %v), want (%v, %v)", c.expr, got, ok, c.want, c.ok)
		}
	}
}
