// Package filesystem routes every file access of the module through one
// afero backend so tests can run against memory.
package filesystem

import "github.com/spf13/afero"

var current afero.Fs = afero.NewOsFs()

// API wraps the backend in use.
func API() afero.Afero {
	return afero.Afero{Fs: current}
}

// Use installs fs as the backend.
func Use(fs afero.Fs) {
	current = fs
}

// UseOS goes back to the native filesystem.
func UseOS() {
	Use(afero.NewOsFs())
}

// InMemory installs an empty in-memory backend and returns it.
func InMemory() afero.Fs {
	fs := afero.NewMemMapFs()
	Use(fs)
	return fs
}
