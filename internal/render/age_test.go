package render

import (
	"testing"
	"time"
)

func TestRelativeAge(t *testing.T) {
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		ago  time.Duration
		want string
	}{
		{"45 seconds", 45 * time.Second, "Gerade eben"},
		{"future", -5 * time.Minute, "Gerade eben"},
		{"one minute", time.Minute, "vor 1 Min."},
		{"59 minutes", 59 * time.Minute, "vor 59 Min."},
		{"90 minutes", 90 * time.Minute, "vor 1 Std."},
		{"23 hours", 23*time.Hour + 59*time.Minute, "vor 23 Std."},
		{"one day", 25 * time.Hour, "vor 1 Tag"},
		{"two days", 48 * time.Hour, "vor 2 Tagen"},
		{"ten days", 10 * 24 * time.Hour, "vor 1 Woche"},
		{"three weeks", 21 * 24 * time.Hour, "vor 3 Wochen"},
		{"28 days", 28 * 24 * time.Hour, "vor 1 Monat"},
		{"45 days", 45 * 24 * time.Hour, "vor 1 Monat"},
		{"65 days", 65 * 24 * time.Hour, "vor 2 Monaten"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := RelativeAge(now.Add(-test.ago), now); got != test.want {
				t.Fatalf("got %q want %q", got, test.want)
			}
		})
	}
}

func TestExactDate(t *testing.T) {
	berlin := time.FixedZone("CEST", 2*60*60)
	ts := time.Date(2025, 7, 1, 8, 5, 0, 0, time.UTC)

	if got := ExactDate(ts, berlin); got != "01.07.2025, 10:05" {
		t.Fatalf("unexpected exact date: %q", got)
	}

	if got := ExactDate(ts, nil); got != "01.07.2025, 08:05" {
		t.Fatalf("expected UTC for nil location, got %q", got)
	}
}
