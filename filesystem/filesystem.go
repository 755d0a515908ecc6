// Package filesystem provides a virtualized abstraction layer for all filesystem operations.
//
// It utilizes the afero library so that configuration, logs, the recently played registry
// and local media probing can run against either the OS or an in-memory backend.
package filesystem

import (
	"os"

	"github.com/spf13/afero"
)

var backend = afero.Afero{Fs: afero.NewOsFs()}

// API returns the active afero.Afero instance for filesystem interaction.
func API() afero.Afero {
	return backend
}

// SetOsFs restores the filesystem backend to the native operating system implementation.
func SetOsFs() {
	backend = afero.Afero{Fs: afero.NewOsFs()}
}

// SetMemMapFs initializes a volatile in-memory filesystem backend for unit testing.
func SetMemMapFs() {
	backend = afero.Afero{Fs: afero.NewMemMapFs()}
}

// IsRegularFile reports whether path names an existing, non-directory file on the active backend.
func IsRegularFile(path string) bool {
	info, err := backend.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// EnsureFile creates an empty file at path if none exists yet and opens it for appending.
func EnsureFile(path string) (afero.File, error) {
	return backend.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
}
