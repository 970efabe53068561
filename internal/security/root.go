// Package security confines file operations to a single flat directory
// using the os.Root API.
package security

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrPathEscapes  = errors.New("path escapes directory")
	ErrAbsolutePath = errors.New("absolute paths are not allowed")
	ErrEmptyPath    = errors.New("empty path not allowed")
	ErrNestedPath   = errors.New("nested paths are not allowed")
)

// Root provides file operations confined to one directory. Only direct
// children of the directory are addressable.
type Root struct {
	root *os.Root
	path string
}

// Open opens a Root for the directory at path. The directory must exist.
func Open(path string) (*Root, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	root, err := os.OpenRoot(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open directory root: %w", err)
	}

	return &Root{
		root: root,
		path: absPath,
	}, nil
}

// Close releases resources held by the Root.
func (r *Root) Close() error {
	if r.root != nil {
		return r.root.Close()
	}
	return nil
}

// Path returns the absolute path of the directory.
func (r *Root) Path() string {
	return r.path
}

// ValidateName rejects names that are empty, absolute, escape the
// directory, or point below it.
func ValidateName(name string) error {
	if name == "" {
		return ErrEmptyPath
	}
	if !filepath.IsLocal(name) {
		if filepath.IsAbs(name) {
			return fmt.Errorf("%w: %s", ErrAbsolutePath, name)
		}
		return fmt.Errorf("%w: %s", ErrPathEscapes, name)
	}
	if strings.ContainsAny(name, `/\`) || filepath.Clean(name) != name {
		return fmt.Errorf("%w: %s", ErrNestedPath, name)
	}
	return nil
}

// ReadFile reads the named file.
func (r *Root) ReadFile(name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	f, err := r.root.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// WriteFile truncates and writes the named file, creating it with perm.
func (r *Root) WriteFile(name string, data []byte, perm os.FileMode) error {
	f, err := r.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// OpenFile opens the named file with the given flags.
func (r *Root) OpenFile(name string, flag int, perm os.FileMode) (*os.File, error) {
	if err := ValidateName(name); err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	return r.root.OpenFile(name, flag, perm)
}

// Stat returns file info for the named file.
func (r *Root) Stat(name string) (os.FileInfo, error) {
	if err := ValidateName(name); err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	return r.root.Stat(name)
}

// Exists reports whether the named file exists.
func (r *Root) Exists(name string) (bool, error) {
	_, err := r.Stat(name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Remove removes the named file.
func (r *Root) Remove(name string) error {
	if err := ValidateName(name); err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	return r.root.Remove(name)
}

// Entries returns the directory's direct entries sorted by name.
func (r *Root) Entries() ([]fs.DirEntry, error) {
	return fs.ReadDir(r.root.FS(), ".")
}
