package format_test

import (
	"testing"
	"time"

	"github.com/P-ict0/HourTrack/internal/format"
)

func TestParse(t *testing.T) {
	for _, name := range format.Modes {
		mode, err := format.Parse(name)
		if err != nil {
			t.Fatalf("parse %q: %v", name, err)
		}
		if mode.String() != name {
			t.Fatalf("round trip %q -> %q", name, mode.String())
		}
	}
	if mode, err := format.Parse(" Full "); err != nil || mode != format.Full {
		t.Fatalf("expected case/space-insensitive parse, got %v %v", mode, err)
	}
	if _, err := format.Parse("verbose"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		mode format.Mode
		want string
	}{
		{0, format.Full, "0 seconds"},
		{0, format.Short, "0s"},
		{0, format.Smart, "0 seconds"},
		{0, format.Hours, "0.0"},

		{45 * time.Second, format.Smart, "45 seconds"},
		{90 * time.Second, format.Full, "1 minute, 30 seconds"},
		{90 * time.Second, format.Short, "1m 30s"},
		{90 * time.Second, format.Smart, "1 minute, 30 seconds"},

		{time.Hour + 30*time.Minute + 15*time.Second, format.Full, "1 hour, 30 minutes, 15 seconds"},
		{time.Hour + 30*time.Minute + 15*time.Second, format.Short, "1h 30m 15s"},
		{time.Hour + 30*time.Minute + 15*time.Second, format.Smart, "1 hour, 30 minutes"},

		// smart drops trailing small units below the leading one
		{26 * time.Hour, format.Smart, "1 day, 2 hours"},
		{8 * 24 * time.Hour, format.Smart, "1 week, 1 day"},
		// months approximated as 30 days
		{31 * 24 * time.Hour, format.Smart, "1 month, 1 day"},
		{31 * 24 * time.Hour, format.Short, "1mo 1d"},

		{2 * time.Hour, format.Hours, "2.0"},
		{30 * time.Minute, format.Hours, "0.5"},
		{2*time.Hour + 30*time.Minute, format.Hours, "2.5"},
	}
	for _, tc := range cases {
		got := format.Duration(tc.d, tc.mode)
		if got != tc.want {
			t.Errorf("Duration(%v, %s) = %q, want %q", tc.d, tc.mode, got, tc.want)
		}
	}
}

func TestNegativeDurationClampsToZero(t *testing.T) {
	if got := format.Duration(-time.Minute, format.Short); got != "0s" {
		t.Fatalf("got %q, want 0s", got)
	}
}
