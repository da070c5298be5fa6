package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const manifestName = "irforge.toml"

const noManifestMessage = "no irforge.toml found\nplease specify the program explicitly, e.g.:\n  irforge build path/to/program.toml"

// findIrforgeToml walks from startDir up to the filesystem root.
func findIrforgeToml(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, manifestName)
		if info, err := os.Stat(candidate); err == nil {
			if !info.IsDir() {
				return candidate, true, nil
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// resolveProgramPath returns the explicit argument or the nearest manifest.
func resolveProgramPath(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		path := args[0]
		info, err := os.Stat(path)
		if err != nil {
			return "", fmt.Errorf("failed to read program: %w", err)
		}
		if info.IsDir() {
			path = filepath.Join(path, manifestName)
			if _, err := os.Stat(path); err != nil {
				return "", fmt.Errorf("%s: %w", path, err)
			}
		}
		return path, nil
	}
	path, ok, err := findIrforgeToml(".")
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errors.New(noManifestMessage)
	}
	return path, nil
}
