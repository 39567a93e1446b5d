package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// DBPath returns the cell database file under dir.
func DBPath(dir string) string {
	return filepath.Join(dir, "cells.db")
}

func ensureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", path, err)
	}
	return nil
}
