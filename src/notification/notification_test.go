package notification

import (
	"errors"
	"runtime"
	"strings"
	"testing"
)

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate short = %q", got)
	}
	long := strings.Repeat("é", 12)
	got := truncate(long, 10)
	if got != strings.Repeat("é", 10)+"..." {
		t.Errorf("truncate must cut on runes, got %q", got)
	}
}

func TestShowDoesNotBlock(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("would show popups on the desktop")
	}
	Saved(`C:\Pictures\Capture_2026-01-02-03-04-05.png`)
	Failed(errors.New("disk full"))
}
