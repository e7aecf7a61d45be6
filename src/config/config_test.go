package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Setenv("TARGET_DIR", "/tmp/captures")
	t.Setenv("ENABLE_FILE_LOGGING", "true")
	t.Setenv("HOTKEY", "Ctrl+Shift+T")
	t.Setenv("DEFAULT_TOOL", "Arrow")
	t.Setenv("DEFAULT_COLOR", "blue")
	t.Setenv("DEFAULT_SIZE", "9")
	t.Setenv("SCALE_FACTOR", "1.5")
	t.Setenv("COPY_TO_CLIPBOARD", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.TargetDir != "/tmp/captures" {
		t.Errorf("Expected TargetDir to be '/tmp/captures', got '%s'", cfg.TargetDir)
	}
	if !cfg.EnableFileLogging {
		t.Errorf("Expected EnableFileLogging to be true, got %v", cfg.EnableFileLogging)
	}
	if cfg.Hotkey != "Ctrl+Shift+T" {
		t.Errorf("Expected Hotkey to be 'Ctrl+Shift+T', got '%s'", cfg.Hotkey)
	}
	if cfg.DefaultTool != "arrow" {
		t.Errorf("Expected DefaultTool to be 'arrow', got '%s'", cfg.DefaultTool)
	}
	if cfg.DefaultColor != "blue" {
		t.Errorf("Expected DefaultColor to be 'blue', got '%s'", cfg.DefaultColor)
	}
	if cfg.DefaultSize != 5 {
		t.Errorf("Expected DefaultSize to be clamped to 5, got %d", cfg.DefaultSize)
	}
	if cfg.ScaleFactor != 1.5 {
		t.Errorf("Expected ScaleFactor 1.5, got %v", cfg.ScaleFactor)
	}
	if cfg.CopyToClipboard {
		t.Error("Expected CopyToClipboard to be false")
	}
	if !cfg.Notifications {
		t.Error("Expected Notifications to default to true")
	}
}

func TestDefaults(t *testing.T) {
	for _, k := range []string{"HOTKEY", "DEFAULT_TOOL", "DEFAULT_COLOR", "DEFAULT_SIZE", "SCALE_FACTOR"} {
		t.Setenv(k, "")
	}
	cfg, err := LoadWithOptions(LoadOptions{EnvPath: filepath.Join(t.TempDir(), "missing.env")})
	if err != nil {
		t.Fatalf("LoadWithOptions: %v", err)
	}
	if cfg.Hotkey != DefaultHotkey {
		t.Errorf("Hotkey = %q, want %q", cfg.Hotkey, DefaultHotkey)
	}
	if cfg.DefaultTool != "rectangle" || cfg.DefaultColor != "red" || cfg.DefaultSize != 3 {
		t.Errorf("style defaults = %s/%s/%d", cfg.DefaultTool, cfg.DefaultColor, cfg.DefaultSize)
	}
	if cfg.ScaleFactor != 0 {
		t.Errorf("ScaleFactor = %v, want 0 (auto)", cfg.ScaleFactor)
	}
	if cfg.TargetDir == "" {
		t.Error("TargetDir should fall back to a default")
	}
}

func TestDotenvFileAndPriority(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	content := "HOTKEY=Alt+P\nDEFAULT_TOOL=highlighter\nTARGET_DIR=" + dir + "\n"
	if err := os.WriteFile(envPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("HOTKEY", "")
	t.Setenv("TARGET_DIR", "")
	t.Setenv("DEFAULT_TOOL", "line")

	cfg, err := LoadWithOptions(LoadOptions{EnvPath: envPath, TargetDirOverride: "/override"})
	if err != nil {
		t.Fatalf("LoadWithOptions: %v", err)
	}
	if cfg.Hotkey != "Alt+P" {
		t.Errorf("Hotkey from .env = %q", cfg.Hotkey)
	}
	if cfg.DefaultTool != "line" {
		t.Errorf("process env should beat .env, got %q", cfg.DefaultTool)
	}
	if cfg.TargetDir != "/override" {
		t.Errorf("override should beat everything, got %q", cfg.TargetDir)
	}
	if cfg.EnvPath != envPath {
		t.Errorf("EnvPath = %q", cfg.EnvPath)
	}
	if cfg.Tool().Name() != "line" {
		t.Errorf("Tool() = %s", cfg.Tool().Name())
	}
}

func TestEnvPathFromVariable(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), "annotate.env")
	if err := os.WriteFile(envPath, []byte("DEFAULT_COLOR=yellow\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv(EnvPathEnvVar, envPath)
	t.Setenv("DEFAULT_COLOR", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// A .env next to the test binary would win; only check when it was not found.
	if cfg.EnvPath == envPath && cfg.DefaultColor != "yellow" {
		t.Errorf("DefaultColor = %q, want yellow", cfg.DefaultColor)
	}
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("DEFAULT_SIZE=1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("DEFAULT_SIZE", "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, envPath, func(c *Config) { changes <- c })
	}()

	// Give the watcher time to register before writing.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case c := <-changes:
			// A write may be observed half-done; wait for the final content.
			if c.DefaultSize != 4 {
				continue
			}
			cancel()
			if err := <-done; err != nil {
				t.Fatalf("Watch: %v", err)
			}
			return
		case <-tick.C:
			_ = os.WriteFile(envPath, []byte("DEFAULT_SIZE=4\n"), 0o644)
		case <-deadline:
			t.Log("no fsnotify event received (filesystem may not support notifications)")
			return
		}
	}
}

func TestWatchRequiresPath(t *testing.T) {
	if err := Watch(context.Background(), "", func(*Config) {}); err == nil {
		t.Error("expected error for empty path")
	}
}
