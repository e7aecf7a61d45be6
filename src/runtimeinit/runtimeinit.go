// Package runtimeinit performs the startup steps shared by the resident app
// and the CLI.
package runtimeinit

import (
	"fmt"
	"log"
	"os"

	"screen-annotate/src/clipboard"
	"screen-annotate/src/config"
	"screen-annotate/src/notification"
)

type Options struct {
	LoadOptions  config.LoadOptions
	SetupLogging func(bool)
	// ShowBlockingErrors reports startup failures in a dialog as well as the
	// returned error. Only the resident app sets it.
	ShowBlockingErrors bool
}

// Bootstrap loads configuration, prepares the target directory and, when
// clipboard copies are enabled, the clipboard.
func Bootstrap(opts Options) (*config.Config, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.SetupLogging != nil {
		opts.SetupLogging(cfg.EnableFileLogging)
	}
	if cfg.EnvPath != "" {
		log.Printf("Config: loaded %s", cfg.EnvPath)
	}

	fail := func(title string, err error) (*config.Config, error) {
		if opts.ShowBlockingErrors {
			notification.ShowBlockingError(title, err.Error())
		}
		return nil, err
	}

	if err := os.MkdirAll(cfg.TargetDir, 0o755); err != nil {
		return fail("Target directory unavailable", fmt.Errorf("failed to create target directory %s: %w", cfg.TargetDir, err))
	}

	if cfg.CopyToClipboard {
		if err := clipboard.Init(); err != nil {
			return fail("Clipboard unavailable", fmt.Errorf("failed to initialize clipboard: %w", err))
		}
	}

	log.Printf("Config: target=%s hotkey=%s tool=%s color=%s size=%d clipboard=%v",
		cfg.TargetDir, cfg.Hotkey, cfg.DefaultTool, cfg.DefaultColor, cfg.DefaultSize, cfg.CopyToClipboard)
	return cfg, nil
}
