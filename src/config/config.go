package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultModeEnvVar = "DEFAULT_MODE"
	ModeFree          = "free"
	ModeElement       = "element"
)

// LoadOptions overrides individual settings, used by tests and CLI flags.
type LoadOptions struct {
	DefaultModeOverride string
	ExportDirOverride   string
}

type Config struct {
	Hotkey            string
	DefaultMode       string
	ModeModifier      string
	ElementDetection  bool
	EnableFileLogging bool
	ExportDir         string
	SaveToFile        bool
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Load configuration from sources in priority order:
	// 1) .env in the application (executable) directory
	// 2) If not found, use SCREEN_SNIP_ENV env var as a path to a config file
	if envPath := resolveEnvPath(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	cfg := &Config{
		Hotkey:            getEnvWithDefault("HOTKEY", "Ctrl+Alt+S"),
		DefaultMode:       resolveDefaultModeValue(opts),
		ModeModifier:      getEnvWithDefault("MODE_MODIFIER", "Alt"),
		ElementDetection:  strings.ToLower(getEnvWithDefault("ELEMENT_DETECTION", "true")) == "true",
		EnableFileLogging: strings.ToLower(os.Getenv("ENABLE_FILE_LOGGING")) == "true",
		ExportDir:         resolveExportDir(opts),
		SaveToFile:        strings.ToLower(os.Getenv("SAVE_TO_FILE")) == "true",
	}

	return cfg, nil
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}

	exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
	if _, err := os.Stat(exeEnv); err == nil {
		return exeEnv
	}

	if alt := os.Getenv("SCREEN_SNIP_ENV"); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func resolveExportDir(opts LoadOptions) string {
	if override := strings.TrimSpace(opts.ExportDirOverride); override != "" {
		return override
	}
	if dir := strings.TrimSpace(os.Getenv("EXPORT_DIR")); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Pictures")
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func resolveDefaultMode(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case ModeElement:
		return ModeElement
	default:
		return ModeFree
	}
}

func resolveDefaultModeValue(opts LoadOptions) string {
	if override := strings.TrimSpace(opts.DefaultModeOverride); override != "" {
		return resolveDefaultMode(override)
	}
	return resolveDefaultMode(os.Getenv(DefaultModeEnvVar))
}
