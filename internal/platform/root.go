package platform

import (
	"errors"
	"os"
	"path/filepath"
)

// ConfigFile is the optional per-corpus configuration file.
const ConfigFile = ".exemplar.yaml"

// ErrRootNotFound is returned by FindRoot when no marker is found.
var ErrRootNotFound = errors.New("root not found")

// FindRoot looks upwards from startDir for a corpus root indicator.
// Indicators are: .exemplar directory, .exemplar.yaml file or .git directory.
// If found, returns the absolute path to the root.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, ".exemplar") || hasFile(dir, ConfigFile) || hasFile(dir, ".git") {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", ErrRootNotFound
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
