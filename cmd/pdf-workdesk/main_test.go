package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/a3tai/pdf-workdesk/internal/pdf/pdftest"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeSample(t *testing.T, pages int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.pdf")
	if err := os.WriteFile(path, pdftest.Generate(pdftest.Texts(pages), ""), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	return path
}

func TestPrintVersion(t *testing.T) {
	var buf bytes.Buffer
	printVersion(&buf)

	for _, want := range []string{"PDF WorkDesk", "Version: " + version, "Git Commit: "} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("version output missing %q:\n%s", want, buf.String())
		}
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "PDF WorkDesk") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCmd()
	want := []string{"serve", "mcp", "text", "images", "info", "encrypt", "decrypt",
		"rotate", "resize", "merge", "convert", "reduce", "version"}

	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestInfoCommand(t *testing.T) {
	path := writeSample(t, 3)

	out, err := execute(t, "info", path)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if !strings.Contains(out, "Number of pages") || !strings.Contains(out, "3") {
		t.Errorf("unexpected info output:\n%s", out)
	}
}

func TestRotateCommand(t *testing.T) {
	path := writeSample(t, 2)
	target := filepath.Join(t.TempDir(), "rotated.pdf")

	out, err := execute(t, "rotate", path, "--angle", "180", "-o", target)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if !strings.Contains(out, "Wrote "+target) {
		t.Errorf("unexpected output: %q", out)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("output is not a PDF")
	}
}

func TestRotateCommand_InvalidAngle(t *testing.T) {
	path := writeSample(t, 1)

	if _, err := execute(t, "rotate", path, "--angle", "45"); err == nil {
		t.Error("expected an error for a 45 degree rotation")
	}
}

func TestEncryptDecryptCommands(t *testing.T) {
	path := writeSample(t, 1)
	dir := t.TempDir()
	locked := filepath.Join(dir, "locked.pdf")
	unlocked := filepath.Join(dir, "unlocked.pdf")

	if _, err := execute(t, "encrypt", path, "--new-password", "secret", "-o", locked); err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if _, err := execute(t, "info", locked); err == nil {
		t.Error("expected reading an encrypted file without a password to fail")
	}
	if _, err := execute(t, "decrypt", locked, "--password", "secret", "-o", unlocked); err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if _, err := execute(t, "info", unlocked); err != nil {
		t.Errorf("info on decrypted file: %v", err)
	}
}

func TestMergeCommand(t *testing.T) {
	first := writeSample(t, 2)
	second := writeSample(t, 3)
	target := filepath.Join(t.TempDir(), "merged.pdf")

	if _, err := execute(t, "merge", first, second, "-o", target); err != nil {
		t.Fatalf("merge: %v", err)
	}
	out, err := execute(t, "info", target)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if !strings.Contains(out, "5") {
		t.Errorf("merged document should have 5 pages:\n%s", out)
	}
}

func TestCommands_MissingArgument(t *testing.T) {
	for _, name := range []string{"text", "info", "rotate", "convert"} {
		if _, err := execute(t, name); err == nil {
			t.Errorf("%s without an argument should fail", name)
		}
	}
	if _, err := execute(t, "merge", "only-one.pdf"); err == nil {
		t.Error("merge with one argument should fail")
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		input, output, name, want string
	}{
		{"docs/a.pdf", "", "a_rotated.pdf", filepath.Join("docs", "a_rotated.pdf")},
		{"docs/a.pdf", "out.pdf", "a_rotated.pdf", "out.pdf"},
		{"https://example.com/a.pdf", "", "a.docx", "a.docx"},
	}
	for _, tt := range tests {
		if got := outputPath(tt.input, tt.output, tt.name); got != tt.want {
			t.Errorf("outputPath(%q, %q, %q) = %q, want %q", tt.input, tt.output, tt.name, got, tt.want)
		}
	}
}
