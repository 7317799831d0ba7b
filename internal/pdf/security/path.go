// Package security confines file access to the configured directory.
package security

import (
	"os"
	"path/filepath"
	"strings"

	pdferrors "github.com/a3tai/pdf-workdesk/internal/pdf/errors"
)

// PathValidator resolves user supplied paths and rejects the ones that
// escape the configured directory
type PathValidator struct {
	root string
}

// NewPathValidator creates a validator for root. The directory does not
// have to exist yet.
func NewPathValidator(root string) (*PathValidator, error) {
	if root == "" {
		return nil, pdferrors.New(pdferrors.ErrorTypeInvalidArgument, "configured directory cannot be empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeInvalidArgument, "cannot resolve configured directory", err)
	}
	return &PathValidator{root: filepath.Clean(abs)}, nil
}

// Root returns the absolute configured directory
func (v *PathValidator) Root() string {
	return v.root
}

// Resolve returns the absolute form of path. Relative paths are taken from
// the configured directory.
func (v *PathValidator) Resolve(path string) (string, error) {
	path = strings.ReplaceAll(path, "\x00", "")
	if strings.TrimSpace(path) == "" {
		return "", pdferrors.New(pdferrors.ErrorTypeInvalidArgument, "path cannot be empty")
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(v.root, path)
	}
	abs := filepath.Clean(path)

	if !v.Contains(abs) {
		return "", pdferrors.Newf(pdferrors.ErrorTypeInvalidArgument,
			"path is outside the configured directory: %s", path)
	}
	return abs, nil
}

// OutputPath picks where an operation writes its result: output when given,
// otherwise name next to input
func (v *PathValidator) OutputPath(input, output, name string) (string, error) {
	if output != "" {
		return v.Resolve(output)
	}
	return v.Resolve(filepath.Join(filepath.Dir(input), name))
}

// Contains reports whether path lies within the configured directory, both
// lexically and after symlinks are followed
func (v *PathValidator) Contains(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	if !within(v.root, abs) {
		return false
	}

	// A missing root cannot hold symlinks yet
	realRoot, err := filepath.EvalSymlinks(v.root)
	if err != nil {
		return true
	}
	return within(realRoot, realPath(abs))
}

// realPath follows symlinks in the longest existing prefix of path
func realPath(path string) string {
	rest := ""
	for p := path; ; p = filepath.Dir(p) {
		if resolved, err := filepath.EvalSymlinks(p); err == nil {
			return filepath.Join(resolved, rest)
		}
		parent := filepath.Dir(p)
		if parent == p {
			return path
		}
		rest = filepath.Join(filepath.Base(p), rest)
	}
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// EnsureDir creates the directory holding path when it is missing
func EnsureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return pdferrors.Wrap(pdferrors.ErrorTypeUnknown, "cannot create output directory", err)
	}
	return nil
}
