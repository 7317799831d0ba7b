package security

import (
	"os"
	"path/filepath"
	"testing"

	pdferrors "github.com/a3tai/pdf-workdesk/internal/pdf/errors"
)

func TestNewPathValidator(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		name      string
		dir       string
		wantError bool
	}{
		{name: "valid directory", dir: tempDir},
		{name: "empty directory", dir: "", wantError: true},
		{name: "non-existent directory", dir: "/non/existent/path"},
		{name: "relative directory", dir: "pdfs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator, err := NewPathValidator(tt.dir)
			if tt.wantError {
				if err == nil {
					t.Error("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !filepath.IsAbs(validator.Root()) {
				t.Errorf("Root() = %s, want an absolute path", validator.Root())
			}
		})
	}
}

func TestPathValidator_Resolve(t *testing.T) {
	tempDir := t.TempDir()
	if err := os.Mkdir(filepath.Join(tempDir, "subdir"), 0o755); err != nil {
		t.Fatalf("Failed to create subdirectory: %v", err)
	}

	validator, err := NewPathValidator(tempDir)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}

	tests := []struct {
		name      string
		path      string
		want      string
		wantError bool
	}{
		{name: "relative file", path: "report.pdf", want: filepath.Join(validator.Root(), "report.pdf")},
		{name: "nested relative file", path: "subdir/a.pdf", want: filepath.Join(validator.Root(), "subdir", "a.pdf")},
		{name: "absolute file inside", path: filepath.Join(tempDir, "b.pdf"), want: filepath.Join(validator.Root(), "b.pdf")},
		{name: "root itself", path: tempDir, want: validator.Root()},
		{name: "dot segments inside", path: "subdir/../c.pdf", want: filepath.Join(validator.Root(), "c.pdf")},
		{name: "null bytes stripped", path: "re\x00port.pdf", want: filepath.Join(validator.Root(), "report.pdf")},
		{name: "empty path", path: "", wantError: true},
		{name: "parent traversal", path: "../outside.pdf", wantError: true},
		{name: "absolute outside", path: "/etc/passwd", wantError: true},
		{name: "sibling with shared prefix", path: tempDir + "-other/x.pdf", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validator.Resolve(tt.path)
			if tt.wantError {
				if err == nil {
					t.Fatalf("Resolve(%q) expected error, got %s", tt.path, got)
				}
				if pdferrors.Classify(err) != pdferrors.ErrorTypeInvalidArgument {
					t.Errorf("Resolve(%q) error type = %s", tt.path, pdferrors.Classify(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) unexpected error: %v", tt.path, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %s, want %s", tt.path, got, tt.want)
			}
		})
	}
}

func TestPathValidator_Symlinks(t *testing.T) {
	tempDir := t.TempDir()
	outsideDir := t.TempDir()

	outsideFile := filepath.Join(outsideDir, "secret.pdf")
	if err := os.WriteFile(outsideFile, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}

	link := filepath.Join(tempDir, "link.pdf")
	if err := os.Symlink(outsideFile, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	linkDir := filepath.Join(tempDir, "linkdir")
	if err := os.Symlink(outsideDir, linkDir); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	validator, err := NewPathValidator(tempDir)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}

	if _, err := validator.Resolve("link.pdf"); err == nil {
		t.Error("Expected symlink to a file outside the directory to be rejected")
	}
	if _, err := validator.Resolve("linkdir/new.pdf"); err == nil {
		t.Error("Expected a new file under a symlinked directory to be rejected")
	}
}

func TestPathValidator_MissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "later")
	validator, err := NewPathValidator(root)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}

	if _, err := validator.Resolve("a.pdf"); err != nil {
		t.Errorf("Resolve() unexpected error for a missing root: %v", err)
	}
	if _, err := validator.Resolve("../a.pdf"); err == nil {
		t.Error("Expected traversal to be rejected for a missing root")
	}
}

func TestPathValidator_OutputPath(t *testing.T) {
	tempDir := t.TempDir()
	validator, err := NewPathValidator(tempDir)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}
	input := filepath.Join(validator.Root(), "docs", "in.pdf")

	got, err := validator.OutputPath(input, "", "in_rotated_90.pdf")
	if err != nil {
		t.Fatalf("OutputPath() unexpected error: %v", err)
	}
	if want := filepath.Join(validator.Root(), "docs", "in_rotated_90.pdf"); got != want {
		t.Errorf("OutputPath() = %s, want %s", got, want)
	}

	got, err = validator.OutputPath(input, "out/result.pdf", "ignored.pdf")
	if err != nil {
		t.Fatalf("OutputPath() unexpected error: %v", err)
	}
	if want := filepath.Join(validator.Root(), "out", "result.pdf"); got != want {
		t.Errorf("OutputPath() = %s, want %s", got, want)
	}

	if _, err := validator.OutputPath(input, "../escape.pdf", ""); err == nil {
		t.Error("Expected output outside the directory to be rejected")
	}
}

func TestEnsureDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "out.pdf")
	if err := EnsureDir(path); err != nil {
		t.Fatalf("EnsureDir() unexpected error: %v", err)
	}
	if info, err := os.Stat(filepath.Dir(path)); err != nil || !info.IsDir() {
		t.Errorf("EnsureDir() did not create %s", filepath.Dir(path))
	}
}
