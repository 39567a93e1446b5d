package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Mode picks which build of the contract binaries is loaded.
type Mode string

const (
	ModeRelease Mode = "release"
	ModeDebug   Mode = "debug"
)

const (
	envMode = "MODE"
	envTop  = "TOP"
)

type Config struct {
	Mode Mode `json:"mode"`
	// Top is the repository root. When set, binaries live in Top/build.
	Top string `json:"top"`
	// BuildDir overrides the directory derived from Top.
	BuildDir string `json:"build_dir"`
}

func DefaultConfig() Config {
	return Config{Mode: ModeRelease}
}

// ParseMode accepts "debug" or "release" in any case. Empty is release.
func ParseMode(raw string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(ModeRelease):
		return ModeRelease, nil
	case string(ModeDebug):
		return ModeDebug, nil
	default:
		return "", fmt.Errorf("invalid mode %q (want debug or release)", raw)
	}
}

// ConfigFromEnv reads MODE and TOP through getenv. A nil getenv reads the
// process environment.
func ConfigFromEnv(getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := DefaultConfig()
	mode, err := ParseMode(getenv(envMode))
	if err != nil {
		return Config{}, err
	}
	cfg.Mode = mode
	cfg.Top = strings.TrimSpace(getenv(envTop))
	return cfg, nil
}

func ValidateConfig(cfg Config) error {
	if _, err := ParseMode(string(cfg.Mode)); err != nil {
		return err
	}
	if cfg.Mode == "" {
		return errors.New("mode is required")
	}
	return nil
}

// resolveDir picks the build directory: BuildDir, then Top/build, then the
// first of ./build and ../build that exists.
func resolveDir(cfg Config, exists func(string) bool) string {
	if cfg.BuildDir != "" {
		return cfg.BuildDir
	}
	if cfg.Top != "" {
		return filepath.Join(cfg.Top, "build")
	}
	for _, dir := range []string{"build", filepath.Join("..", "build")} {
		if exists(dir) {
			return dir
		}
	}
	return "build"
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
