package recurring

import (
	"testing"
	"time"

	"github.com/taskflow/coordination/internal/recurrence"
)

func TestTruncateToDayZeroesTimeOfDay(t *testing.T) {
	in := time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)
	got := truncateToDay(in)
	want := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("truncateToDay(%v) = %v, want %v", in, got, want)
	}
}

func TestTruncateToDayConvertsNonUTCZone(t *testing.T) {
	loc := time.FixedZone("offset", -5*3600)
	in := time.Date(2025, 3, 14, 23, 30, 0, 0, loc)
	got := truncateToDay(in)
	want := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("truncateToDay(%v) = %v, want %v", in, got, want)
	}
}

func TestOccursOnDailyPattern(t *testing.T) {
	pattern, err := recurrence.Parse("daily")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	createdAt := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

	if !occursOn(pattern, createdAt, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("expected daily pattern to occur on its anchor day")
	}
	if !occursOn(pattern, createdAt, time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)) {
		t.Error("expected daily pattern to occur four days after anchor")
	}
}

func TestOccursOnRejectsBeforeAnchor(t *testing.T) {
	pattern, err := recurrence.Parse("daily")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	createdAt := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	if occursOn(pattern, createdAt, time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)) {
		t.Error("expected no occurrence before the template's anchor day")
	}
}

func TestOccursOnWeeklyPatternSkipsNonMatchingDays(t *testing.T) {
	pattern, err := recurrence.Parse("weekly:monday")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	// 2025-01-06 is a Monday.
	createdAt := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

	if occursOn(pattern, createdAt, time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC)) {
		t.Error("expected weekly:monday pattern not to occur on a Tuesday")
	}
	if !occursOn(pattern, createdAt, time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)) {
		t.Error("expected weekly:monday pattern to occur on the following Monday")
	}
}
