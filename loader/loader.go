package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrBinaryMissing reports a contract binary that has not been built.
var ErrBinaryMissing = errors.New("contract binary missing")

// Loader reads contract binaries from the build directory of one mode,
// <build>/release or <build>/debug.
type Loader struct {
	cfg Config
	dir string
}

func New(cfg Config) (*Loader, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	mode, err := ParseMode(string(cfg.Mode))
	if err != nil {
		return nil, err
	}
	cfg.Mode = mode
	dir := filepath.Join(resolveDir(cfg, dirExists), string(cfg.Mode))
	return &Loader{cfg: cfg, dir: dir}, nil
}

// FromEnv is New(ConfigFromEnv(os.Getenv)).
func FromEnv() (*Loader, error) {
	cfg, err := ConfigFromEnv(nil)
	if err != nil {
		return nil, err
	}
	return New(cfg)
}

func (l *Loader) Dir() string { return l.dir }

func (l *Loader) Mode() Mode { return l.cfg.Mode }

// LoadBinary reads the named binary. name must be a plain file name.
func (l *Loader) LoadBinary(name string) ([]byte, error) {
	b, err := readFileFromDir(l.dir, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s (mode %s)", ErrBinaryMissing, filepath.Join(l.dir, name), l.cfg.Mode)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return b, nil
}

func readFileFromDir(dir, name string) ([]byte, error) {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return nil, fmt.Errorf("invalid file name: %q", name)
	}
	return fs.ReadFile(os.DirFS(dir), name)
}
