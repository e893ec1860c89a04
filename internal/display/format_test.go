package display

import (
	"testing"
	"time"
)

func TestFormatBytes(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
		{3 * 1024 * 1024 * 1024, "3.0 GiB"},
	}
	for _, tc := range cases {
		if got := FormatBytes(tc.in); got != tc.want {
			t.Errorf("FormatBytes(%d): got %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "0:00"},
		{42 * time.Second, "0:42"},
		{90 * time.Second, "1:30"},
		{61 * time.Minute, "1:01:00"},
		{2*time.Hour + 3*time.Minute + 4*time.Second, "2:03:04"},
		{-5 * time.Second, "0:00"},
	}
	for _, tc := range cases {
		if got := FormatDuration(tc.in); got != tc.want {
			t.Errorf("FormatDuration(%v): got %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatBitrateLabel(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{500_000, "500 kbps"},
		{1_000_000, "1.0 Mbps"},
		{1_500_000, "1.5 Mbps"},
	}
	for _, tc := range cases {
		if got := FormatBitrateLabel(tc.in); got != tc.want {
			t.Errorf("FormatBitrateLabel(%d): got %q, want %q", tc.in, got, tc.want)
		}
	}
}
