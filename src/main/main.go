package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"screen-annotate/src/compositor"
	"screen-annotate/src/config"
	"screen-annotate/src/eventloop"
	"screen-annotate/src/logutil"
	"screen-annotate/src/runtimeinit"
	"screen-annotate/src/screenshot"
	"screen-annotate/src/singleinstance"
	"screen-annotate/src/tray"
)

type mainOptions struct {
	envPath   string
	targetDir string
	hotkey    string
	capture   bool
	monitor   int
	print     bool
}

func main() {
	// Ensure DPI awareness before creating any windows or querying metrics
	enableDPIAwareness()

	// Capture windows must stay on one OS thread
	runtime.LockOSThread()

	if err := run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		args = []string{"screen-annotate"}
	}
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "screen-annotate",
		Short:         "Capture, annotate and save screenshots from a hotkey or the tray",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.capture {
				return runCapture(*opts)
			}
			return runResident(*opts)
		},
	}

	cmd.Flags().StringVar(&opts.envPath, "env", "", "Path to the .env file (default: next to the executable, or $"+config.EnvPathEnvVar+")")
	cmd.Flags().StringVar(&opts.targetDir, "target-dir", "", "Directory for saved screenshots")
	cmd.Flags().StringVar(&opts.hotkey, "hotkey", "", "Global hotkey, e.g. Ctrl+Shift+S")
	cmd.Flags().BoolVar(&opts.capture, "capture", false, "Capture once: hand off to the running instance, or run standalone")
	cmd.Flags().IntVar(&opts.monitor, "monitor", -1, "Monitor index for --capture (-1: under the cursor)")
	cmd.Flags().BoolVar(&opts.print, "print", false, "With --capture, print the saved path to stdout")

	return cmd
}

func (o mainOptions) loadOptions() config.LoadOptions {
	return config.LoadOptions{EnvPath: o.envPath, TargetDirOverride: o.targetDir, HotkeyOverride: o.hotkey}
}

// applyOverrides re-applies command-line values to a reloaded configuration.
func (o mainOptions) applyOverrides(cfg *config.Config) {
	if o.targetDir != "" {
		cfg.TargetDir = o.targetDir
	}
	if o.hotkey != "" {
		cfg.Hotkey = o.hotkey
	}
}

func runResident(opts mainOptions) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if port, ok := singleinstance.DetectResidentPort(ctx); ok {
		fmt.Printf("screen-annotate is already running on port %d\n", port)
		return nil
	}

	cfg, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions:        opts.loadOptions(),
		SetupLogging:       logutil.Setup,
		ShowBlockingErrors: true,
	})
	if err != nil {
		return err
	}
	logMonitors()

	tooltip := fmt.Sprintf("Screen annotate - Press %s to capture", cfg.Hotkey)
	loop := eventloop.New(cfg)
	loop.SetDefaultTooltip(tooltip)

	go tray.Run(tray.Config{
		Title:     "Screen annotate",
		Tooltip:   tooltip,
		OnCapture: loop.Trigger,
		OnExit:    cancel,
	})
	defer tray.Quit()

	loop.StartHotkey(ctx, cfg.Hotkey)

	if cfg.EnvPath != "" {
		go func() {
			err := config.Watch(ctx, cfg.EnvPath, func(next *config.Config) {
				opts.applyOverrides(next)
				loop.SetConfig(next)
			})
			if err != nil {
				log.Printf("Config: not watching %s: %v", cfg.EnvPath, err)
			}
		}()
	}

	// Handle SIGINT/SIGTERM
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		cancel()
	}()

	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("event loop stopped: %v", err)
		return err
	}
	return nil
}

func runCapture(opts mainOptions) error {
	cfg, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions:  opts.loadOptions(),
		SetupLogging: logutil.Setup,
	})
	if err != nil {
		return err
	}

	ctx := context.Background()
	req := singleinstance.Request{Monitor: opts.monitor}
	path, err := captureWithDelegation(ctx, singleinstance.NewClient(), req, func() (string, error) {
		return eventloop.New(cfg).CaptureOnce(ctx, opts.monitor)
	})
	if compositor.IsCancellation(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if opts.print {
		fmt.Println(path)
	}
	return nil
}

// captureWithDelegation hands the capture to a resident when one answers and
// falls back to a standalone capture otherwise.
func captureWithDelegation(ctx context.Context, client singleinstance.Client, req singleinstance.Request, standalone func() (string, error)) (string, error) {
	res, err := client.Delegate(ctx, req)
	if err != nil {
		if res.Delegated {
			return "", err
		}
		log.Printf("Delegation error: %v; falling back to standalone", err)
		return standalone()
	}
	if !res.Delegated {
		log.Printf("No resident detected, running standalone")
		return standalone()
	}
	if res.Cancelled {
		return "", compositor.ErrCancelled
	}
	log.Printf("Delegated to resident, saved %s", res.Path)
	return res.Path, nil
}

func logMonitors() {
	p := screenshot.NewProvider()
	n := p.NumMonitors()
	log.Printf("MONITOR: Detected %d monitors", n)
	for i := 0; i < n; i++ {
		b, err := p.MonitorBounds(i)
		if err != nil {
			continue
		}
		scale, _ := p.ScaleFactor(i)
		log.Printf("MONITOR: %d at %v, scale %.2f", i, b, scale)
	}
}
