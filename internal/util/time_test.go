// time_test.go — Tests for timestamp parsing utilities.
package util

import (
	"testing"
	"time"
)

func TestParseTimestampLayouts(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"RFC3339", "2024-01-15T10:30:00Z", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"RFC3339Nano", "2024-01-15T10:30:00.123456789Z", time.Date(2024, 1, 15, 10, 30, 0, 123456789, time.UTC)},
		{"millisecond fraction", "2024-06-15T08:00:00.500Z", time.Date(2024, 6, 15, 8, 0, 0, 500000000, time.UTC)},
		{"no zone", "2024-01-15T10:30:00", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"space separated", "2024-01-15 10:30:00", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"space with fraction", "2024-01-15 10:30:00.250", time.Date(2024, 1, 15, 10, 30, 0, 250000000, time.UTC)},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseTimestamp(tc.input)
			if !ok {
				t.Fatalf("ParseTimestamp(%q) failed", tc.input)
			}
			if !got.Equal(tc.want) {
				t.Fatalf("ParseTimestamp(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestParseTimestampNormalizesToUTC(t *testing.T) {
	t.Parallel()
	got, ok := ParseTimestamp("2024-01-15T10:30:00+05:00")
	if !ok {
		t.Fatal("ParseTimestamp failed")
	}
	want := time.Date(2024, 1, 15, 5, 30, 0, 0, time.UTC)
	if !got.Equal(want) || got.Location() != time.UTC {
		t.Fatalf("got %v in %v, want %v in UTC", got, got.Location(), want)
	}
}

func TestParseTimestampRejectsGarbage(t *testing.T) {
	t.Parallel()
	for _, input := range []string{"", "   ", "not-a-timestamp", "15/01/2024"} {
		if got, ok := ParseTimestamp(input); ok {
			t.Fatalf("ParseTimestamp(%q) = %v, want failure", input, got)
		}
	}
}
