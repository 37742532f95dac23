package duration

import (
	"testing"
	"time"
)

// A Sunday afternoon, so week arithmetic has something to chew on.
var testNow = time.Date(2026, time.August, 23, 15, 4, 5, 0, time.UTC)

func TestParseSince(t *testing.T) {
	cases := []struct {
		since string
		want  string
	}{
		{"24h", "2026-08-22T15:04:05Z"},
		{"3h30m", "2026-08-23T11:34:05Z"},
		{"2d", "2026-08-21T15:04:05Z"},
		{"1w", "2026-08-16T15:04:05Z"},
		{"1d12h30m", "2026-08-22T02:34:05Z"},
		{"yesterday", "2026-08-22T00:00:00Z"},
		{"today", "2026-08-23T00:00:00Z"},
		{"this-week", "2026-08-17T00:00:00Z"},
		{"last-week", "2026-08-10T00:00:00Z"},
		{"this-month", "2026-08-01T00:00:00Z"},
		{"last-month", "2026-07-01T00:00:00Z"},
	}
	for _, tc := range cases {
		got, err := ParseSince(tc.since, testNow)
		if err != nil {
			t.Fatalf("ParseSince(%q) error: %v", tc.since, err)
		}
		if got != tc.want {
			t.Fatalf("ParseSince(%q) = %q, want %q", tc.since, got, tc.want)
		}
	}
}

func TestParseSinceJanuaryRollsIntoPreviousYear(t *testing.T) {
	january := time.Date(2026, time.January, 15, 10, 0, 0, 0, time.UTC)
	got, err := ParseSince("last-month", january)
	if err != nil {
		t.Fatalf("ParseSince error: %v", err)
	}
	if got != "2025-12-01T00:00:00Z" {
		t.Fatalf("expected December of previous year, got %q", got)
	}
}

func TestParseSinceRejectsUnknownInput(t *testing.T) {
	for _, since := range []string{"", "soon", "5x", "h24"} {
		if _, err := ParseSince(since, testNow); err == nil {
			t.Fatalf("expected error for %q", since)
		}
	}
}
