package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// RingFS is an Afero FS with added functionality
// to replicate OS filesystems in testing
type RingFS interface {
	afero.Fs
	Abs(string) (string, error)
	HomeDir() (string, error)
}

type ringOSFS struct {
	afero.Fs
}

func NewOSFS() RingFS {
	return &ringOSFS{
		afero.NewOsFs(),
	}
}

func (g *ringOSFS) Abs(path string) (string, error) {
	return filepath.Abs(path)
}

func (g *ringOSFS) HomeDir() (string, error) {
	return os.UserHomeDir()
}

type ringMemFS struct {
	afero.Fs
	home string
}

// NewMemFS returns an in-memory RingFS whose home directory is /home.
func NewMemFS() RingFS {
	return &ringMemFS{
		Fs:   afero.NewMemMapFs(),
		home: "/home",
	}
}

func (g *ringMemFS) Abs(path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}
	return filepath.Join("/", path), nil
}

func (g *ringMemFS) HomeDir() (string, error) {
	return g.home, nil
}
