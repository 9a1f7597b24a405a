// Package scan lists candidate dynamic-library files under a directory.
package scan

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// LibSuffix returns the native dynamic-library file suffix for the
// current platform.
func LibSuffix() string {
	switch runtime.GOOS {
	case "windows":
		return ".dll"
	case "darwin":
		return ".dylib"
	default:
		return ".so"
	}
}

// ListLibraries returns the paths of all files under root carrying the
// platform library suffix. With recursive set, subdirectories are walked;
// otherwise only the top level is read.
func ListLibraries(root string, recursive bool) ([]string, error) {
	var paths []string

	if !recursive {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), LibSuffix()) {
				paths = append(paths, filepath.Join(root, e.Name()))
			}
		}
		return paths, nil
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), LibSuffix()) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}
