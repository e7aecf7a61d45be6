package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"screen-annotate/src/shape"
)

const (
	EnvPathEnvVar = "SCREEN_ANNOTATE_ENV"
	DefaultHotkey = "Ctrl+Shift+S"
)

type LoadOptions struct {
	// EnvPath names the .env file to read instead of the usual lookup.
	EnvPath           string
	TargetDirOverride string
	HotkeyOverride    string
}

type Config struct {
	TargetDir         string
	Hotkey            string
	EnableFileLogging bool
	// ScaleFactor overrides the detected monitor scale when > 0.
	ScaleFactor     float64
	DefaultTool     string
	DefaultColor    string
	DefaultSize     int
	Notifications   bool
	CopyToClipboard bool
	// EnvPath is the .env file the values came from, empty if none.
	EnvPath string
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Sources, lowest priority first:
	// 1) .env in the executable directory, else the file named by SCREEN_ANNOTATE_ENV
	// 2) process environment
	// 3) explicit overrides
	envPath := opts.EnvPath
	if envPath == "" {
		envPath = resolveEnvPath()
	}
	values := readDotenvValues(envPath)
	get := func(key string) string {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v
		}
		return values[key]
	}

	cfg := &Config{
		TargetDir:         firstNonEmpty(opts.TargetDirOverride, get("TARGET_DIR"), defaultTargetDir()),
		Hotkey:            firstNonEmpty(opts.HotkeyOverride, get("HOTKEY"), DefaultHotkey),
		EnableFileLogging: strings.ToLower(get("ENABLE_FILE_LOGGING")) == "true",
		ScaleFactor:       parseScale(get("SCALE_FACTOR")),
		DefaultTool:       resolveTool(get("DEFAULT_TOOL")),
		DefaultColor:      resolveColor(get("DEFAULT_COLOR")),
		DefaultSize:       resolveSize(get("DEFAULT_SIZE")),
		Notifications:     parseBool(get("NOTIFICATIONS"), true),
		CopyToClipboard:   parseBool(get("COPY_TO_CLIPBOARD"), true),
		EnvPath:           envPath,
	}
	return cfg, nil
}

// Tool returns the catalogue entry named by DefaultTool.
func (c *Config) Tool() shape.Tool {
	t, _ := shape.ToolByName(c.DefaultTool)
	return t
}

func (c *Config) Color() shape.Color {
	col, _ := shape.ColorByName(c.DefaultColor)
	return col
}

func resolveEnvPath() string {
	if execPath, err := os.Executable(); err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}

	if alt := os.Getenv(EnvPathEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func readDotenvValues(envPath string) map[string]string {
	if envPath == "" {
		return map[string]string{}
	}

	values, err := godotenv.Read(envPath)
	if err != nil {
		return map[string]string{}
	}

	return values
}

func defaultTargetDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	pictures := filepath.Join(home, "Pictures")
	if st, err := os.Stat(pictures); err == nil && st.IsDir() {
		return pictures
	}
	return home
}

func resolveTool(value string) string {
	if t, ok := shape.ToolByName(value); ok {
		return t.Name()
	}
	return "rectangle"
}

func resolveColor(value string) string {
	if c, ok := shape.ColorByName(value); ok {
		return c.String()
	}
	return shape.Red.String()
}

func resolveSize(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return shape.DefaultSize
	}
	return shape.ClampSize(n)
}

func parseScale(value string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || f <= 0 {
		return 0
	}
	return f
}

func parseBool(value string, def bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return b
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
