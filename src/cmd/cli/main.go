package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"screen-annotate/src/compositor"
	"screen-annotate/src/config"
	"screen-annotate/src/logutil"
	"screen-annotate/src/replay"
	"screen-annotate/src/screenshot"
	"screen-annotate/src/session"
	"screen-annotate/src/sink"
)

const (
	maxFileSizeMB = 50
	maxFileSize   = maxFileSizeMB * 1024 * 1024
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

type cliOptions struct {
	filePath   string
	scriptPath string
	outDir     string
	envPath    string
	scale      float64
	clipboard  bool
	jsonOutput bool
	verbose    bool
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args))
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"annotate"}
	}

	opts := &cliOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "annotate",
		Short:         "Annotate a PNG with a scripted session and save the result",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(*opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.filePath, "file", "", "Path to PNG file (use '-' for stdin)")
	cmd.Flags().StringVar(&opts.scriptPath, "script", "", "Path to the YAML event script")
	cmd.Flags().StringVar(&opts.outDir, "out", "", "Output directory (default: TARGET_DIR from configuration)")
	cmd.Flags().StringVar(&opts.envPath, "env", "", "Path to the .env file")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "Display scale factor (overrides the script)")
	cmd.Flags().BoolVar(&opts.clipboard, "clipboard", false, "Also copy the result to the clipboard")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("script")

	return cmd
}

func runWithOptions(opts cliOptions, stdin io.Reader, stdout io.Writer) error {
	// Configure logging BEFORE any other operations.
	if !opts.verbose {
		logutil.Setup(false)
	} else {
		logutil.SetupWriter(os.Stderr)
		fmt.Fprintf(os.Stderr, "[verbose] Starting annotate\n")
	}

	cfg, err := config.LoadWithOptions(config.LoadOptions{EnvPath: opts.envPath, TargetDirOverride: opts.outDir})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.verbose {
		fmt.Fprintf(os.Stderr, "[verbose] Config loaded: TargetDir=%s Color=%s Size=%d\n", cfg.TargetDir, cfg.DefaultColor, cfg.DefaultSize)
	}

	data, err := readInput(opts.filePath, stdin, opts.verbose)
	if err != nil {
		return err
	}
	img, err := screenshot.DecodePNG(data)
	if err != nil {
		return err
	}

	script, err := replay.LoadFile(opts.scriptPath)
	if err != nil {
		return err
	}
	scale := opts.scale
	if scale <= 0 {
		scale = script.Scale
	}
	if opts.verbose {
		fmt.Fprintf(os.Stderr, "[verbose] Script has %d events, scale %.2f\n", len(script.Events), scale)
	}

	if err := os.MkdirAll(cfg.TargetDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", cfg.TargetDir, err)
	}

	startTime := time.Now()
	sess, err := session.New(screenshot.NewStaticProvider(img, scale), session.Options{
		Color: cfg.Color(),
		Size:  cfg.DefaultSize,
	})
	if err != nil {
		return err
	}
	if !replay.Play(sess, script.Messages()) {
		return fmt.Errorf("script ended before the session was finished (add \"done\" or \"cancel\")")
	}
	shapes := len(sess.Shapes())
	description := sess.Description()

	out := sink.New(sink.Options{Dir: cfg.TargetDir, CopyToClipboard: opts.clipboard})
	path, err := compositor.Complete(sess, out)
	elapsed := time.Since(startTime)
	if compositor.IsCancellation(err) {
		return fmt.Errorf("nothing saved: %w", err)
	}
	if err != nil {
		return err
	}

	if opts.verbose {
		fmt.Fprintf(os.Stderr, "[verbose] Saved %s in %v\n", path, elapsed)
	}

	return outputResult(stdout, AnnotateResult{
		Path:       path,
		Source:     opts.filePath,
		Selection:  description,
		ShapeCount: shapes,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Duration:   elapsed.Seconds(),
	}, opts.jsonOutput)
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range []string{"file", "script", "out", "env", "scale", "json", "verbose", "clipboard"} {
			switch {
			case arg == "-"+name:
				normalized[i] = "--" + name
			case strings.HasPrefix(arg, "-"+name+"="):
				normalized[i] = "-" + arg
			}
		}
	}

	return normalized
}

func readInput(filePath string, stdin io.Reader, verbose bool) ([]byte, error) {
	var imageData []byte
	var err error

	if filePath == "-" {
		if verbose {
			fmt.Fprintf(os.Stderr, "[verbose] Reading image from stdin\n")
		}
		imageData, err = io.ReadAll(io.LimitReader(stdin, maxFileSize+1))
		if err != nil {
			return nil, fmt.Errorf("failed to read from stdin: %w", err)
		}
	} else {
		if verbose {
			fmt.Fprintf(os.Stderr, "[verbose] Reading image from file: %s\n", filePath)
		}
		imageData, err = os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
		}
	}

	if len(imageData) == 0 {
		return nil, fmt.Errorf("input file is empty")
	}
	if len(imageData) > maxFileSize {
		return nil, fmt.Errorf("input file exceeds maximum size of %d MB", maxFileSizeMB)
	}
	if len(imageData) < len(pngMagic) || !bytes.Equal(imageData[:len(pngMagic)], pngMagic) {
		return nil, fmt.Errorf("input is not a valid PNG file (invalid magic number)")
	}
	return imageData, nil
}

type AnnotateResult struct {
	Path       string  `json:"path"`
	Source     string  `json:"source"`
	Selection  string  `json:"selection"`
	ShapeCount int     `json:"shape_count"`
	Timestamp  string  `json:"timestamp"`
	Duration   float64 `json:"duration_seconds"`
}

func outputResult(w io.Writer, result AnnotateResult, jsonOutput bool) error {
	if jsonOutput {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result); err != nil {
			return fmt.Errorf("failed to encode JSON output: %w", err)
		}
		return nil
	}
	fmt.Fprintln(w, result.Path)
	return nil
}
