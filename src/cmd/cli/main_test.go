package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"screen-annotate/src/compositor"
	"screen-annotate/src/screenshot"
)

const cropScript = `scale: 1
events:
  - drag: {from: [10, 10], to: [50, 40]}
  - done
`

func writeFixtures(t *testing.T, script string) (pngPath, scriptPath string) {
	t.Helper()
	dir := t.TempDir()

	img := image.NewRGBA(image.Rect(0, 0, 120, 80))
	for y := 0; y < 80; y++ {
		for x := 0; x < 120; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 90, A: 255})
		}
	}
	data, err := screenshot.EncodePNG(img)
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	pngPath = filepath.Join(dir, "input.png")
	if err := os.WriteFile(pngPath, data, 0o644); err != nil {
		t.Fatal(err)
	}
	scriptPath = filepath.Join(dir, "script.yaml")
	if err := os.WriteFile(scriptPath, []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}
	return pngPath, scriptPath
}

func testOptions(t *testing.T, pngPath, scriptPath string) cliOptions {
	return cliOptions{
		filePath:   pngPath,
		scriptPath: scriptPath,
		outDir:     t.TempDir(),
		envPath:    filepath.Join(t.TempDir(), "missing.env"),
	}
}

func TestAnnotateCropsAndSaves(t *testing.T) {
	pngPath, scriptPath := writeFixtures(t, cropScript)
	opts := testOptions(t, pngPath, scriptPath)

	var stdout bytes.Buffer
	if err := runWithOptions(opts, nil, &stdout); err != nil {
		t.Fatalf("runWithOptions: %v", err)
	}

	path := strings.TrimSpace(stdout.String())
	if filepath.Dir(path) != opts.outDir {
		t.Fatalf("saved to %q, want under %s", path, opts.outDir)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	out, err := screenshot.DecodePNG(data)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if out.Bounds() != image.Rect(0, 0, 40, 30) {
		t.Errorf("output bounds = %v, want 40x30", out.Bounds())
	}
	if got := out.RGBAAt(0, 0); got.R != 10 || got.G != 10 {
		t.Errorf("top-left pixel = %v, want the source pixel at (10,10)", got)
	}
}

func TestAnnotateJSONOutput(t *testing.T) {
	script := `events:
  - tool: arrow
  - drag: {from: [10, 10], to: [60, 50]}
  - done
  - done
`
	pngPath, scriptPath := writeFixtures(t, script)
	opts := testOptions(t, pngPath, scriptPath)
	opts.jsonOutput = true

	var stdout bytes.Buffer
	if err := runWithOptions(opts, nil, &stdout); err != nil {
		t.Fatalf("runWithOptions: %v", err)
	}

	var result AnnotateResult
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		t.Fatalf("parse JSON: %v\n%s", err, stdout.String())
	}
	if result.Source != pngPath {
		t.Errorf("source = %q, want %q", result.Source, pngPath)
	}
	if result.ShapeCount != 1 {
		t.Errorf("shape_count = %d, want 1", result.ShapeCount)
	}
	if result.Selection != "Fullscreen" {
		t.Errorf("selection = %q, want Fullscreen", result.Selection)
	}
	if _, err := os.Stat(result.Path); err != nil {
		t.Errorf("saved file missing: %v", err)
	}
}

func TestAnnotateFromStdin(t *testing.T) {
	pngPath, scriptPath := writeFixtures(t, cropScript)
	data, err := os.ReadFile(pngPath)
	if err != nil {
		t.Fatal(err)
	}
	opts := testOptions(t, "-", scriptPath)

	var stdout bytes.Buffer
	if err := runWithOptions(opts, bytes.NewReader(data), &stdout); err != nil {
		t.Fatalf("runWithOptions: %v", err)
	}
	if stdout.Len() == 0 {
		t.Error("expected the saved path on stdout")
	}
}

func TestAnnotateCancelledScript(t *testing.T) {
	pngPath, scriptPath := writeFixtures(t, "events:\n  - cancel\n")
	opts := testOptions(t, pngPath, scriptPath)

	var stdout bytes.Buffer
	err := runWithOptions(opts, nil, &stdout)
	if !errors.Is(err, compositor.ErrCancelled) {
		t.Fatalf("err = %v, want ErrCancelled", err)
	}
	entries, _ := os.ReadDir(opts.outDir)
	if len(entries) != 0 {
		t.Errorf("cancelled script wrote %d files", len(entries))
	}
}

func TestAnnotateUnfinishedScript(t *testing.T) {
	pngPath, scriptPath := writeFixtures(t, "events:\n  - tool: arrow\n")
	opts := testOptions(t, pngPath, scriptPath)

	if err := runWithOptions(opts, nil, &bytes.Buffer{}); err == nil {
		t.Fatal("expected an error for a script that never finishes")
	}
}

func TestReadInputValidation(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{
			name:    "ValidPNG",
			data:    []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0x00},
			wantErr: false,
		},
		{
			name:    "InvalidMagic",
			data:    []byte{0x00, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a},
			wantErr: true,
		},
		{
			name:    "TooShort",
			data:    []byte{0x89, 'P', 'N', 'G'},
			wantErr: true,
		},
		{
			name:    "Empty",
			data:    []byte{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readInput("-", bytes.NewReader(tt.data), false)
			if (err != nil) != tt.wantErr {
				t.Errorf("readInput() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeLegacyArgs(t *testing.T) {
	got := normalizeLegacyArgs([]string{"annotate", "-file", "a.png", "-script=s.yaml", "-json", "--out", "dir"})
	want := []string{"annotate", "--file", "a.png", "--script=s.yaml", "--json", "--out", "dir"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("normalizeLegacyArgs() = %v, want %v", got, want)
	}
}

func TestNewRootCmdRequiresFlags(t *testing.T) {
	opts := &cliOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs([]string{"--file", "x.png"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error when --script is missing")
	}
}
