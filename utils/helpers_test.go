package utils

import (
	"errors"
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		name string
		ms   int
		want string
	}{
		{"zero", 0, "0:00"},
		{"sub-second", 999, "0:00"},
		{"seconds", 42_000, "0:42"},
		{"minutes", 185_000, "3:05"},
		{"long", 3_725_000, "62:05"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := FormatDuration(c.ms); got != c.want {
				t.Errorf("wrong duration: want %q, got %q", c.want, got)
			}
		})
	}
}

func TestFormatUptime(t *testing.T) {
	cases := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"seconds", 12 * time.Second, "12s"},
		{"minutes", 3*time.Minute + 4*time.Second, "3m 4s"},
		{"hours", 2*time.Hour + 5*time.Second, "2h 0m 5s"},
		{"days", 49*time.Hour + time.Minute, "2d 1h 1m 0s"},
		{"rounds", 1500 * time.Millisecond, "2s"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := FormatUptime(c.d); got != c.want {
				t.Errorf("wrong uptime: want %q, got %q", c.want, got)
			}
		})
	}
}

func TestUserf(t *testing.T) {
	var err error = Userf("no track for %q", "x")
	var ue *UserError
	if !errors.As(err, &ue) {
		t.Fatalf("Userf result is not a *UserError: %T", err)
	}
	if ue.Message != `no track for "x"` {
		t.Errorf("wrong message: %q", ue.Message)
	}
}
