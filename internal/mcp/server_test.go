package mcp

import (
	"context"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"

	"github.com/a3tai/pdf-workdesk/internal/config"
	"github.com/a3tai/pdf-workdesk/internal/pdf"
	"github.com/a3tai/pdf-workdesk/internal/pdf/pdftest"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// newTestServer creates a server over a temp directory holding doc.pdf
// with three pages
func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "doc.pdf"), pdftest.Generate(pdftest.Texts(3), ""), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Mode = config.ModeStdio
	cfg.PDFDirectory = dir
	cfg.ServerName = "test-server"

	service := pdf.NewService(pdf.Options{MaxFileSize: cfg.MaxFileSize, PreviewDPI: cfg.PreviewDPI}, testLogger())
	server, err := NewServer(cfg, service, testLogger())
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return server, dir
}

func newRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: args},
	}
}

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()
	result, err := handler(context.Background(), newRequest(args))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if result == nil {
		t.Fatal("result should not be nil")
	}
	return resultText(result), result.IsError
}

func TestNewServer(t *testing.T) {
	service := pdf.NewService(pdf.Options{MaxFileSize: 1024}, testLogger())
	cfg := config.DefaultConfig()
	cfg.PDFDirectory = t.TempDir()

	if _, err := NewServer(nil, service, nil); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := NewServer(cfg, nil, nil); err == nil {
		t.Error("expected error for nil service")
	}

	server, err := NewServer(cfg, service, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if server.config != cfg || server.pdfService != service {
		t.Error("server fields not set correctly")
	}
	if server.mcpServer == nil {
		t.Error("mcpServer should be initialized")
	}
	if server.logger == nil {
		t.Error("logger should default to the standard logger")
	}
}

func TestServer_HandleValidateFile(t *testing.T) {
	server, dir := newTestServer(t)
	if err := os.WriteFile(filepath.Join(dir, "fake.pdf"), make([]byte, 1024), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	text, isErr := callTool(t, server.handleValidateFile, map[string]any{"path": "doc.pdf"})
	if isErr || !strings.Contains(text, "is valid and readable") {
		t.Errorf("expected doc.pdf to be valid, got: %s", text)
	}

	text, isErr = callTool(t, server.handleValidateFile, map[string]any{"path": "fake.pdf"})
	if isErr || !strings.Contains(text, "PDF validation failed") {
		t.Errorf("expected validation to fail, got: %s", text)
	}
}

func TestServer_HandleExtractText(t *testing.T) {
	server, _ := newTestServer(t)

	text, isErr := callTool(t, server.handleExtractText, map[string]any{"path": "doc.pdf", "pages": "2"})
	if isErr {
		t.Fatalf("unexpected error result: %s", text)
	}
	if !strings.Contains(text, "Pages: 2 of 3") {
		t.Errorf("expected page summary, got: %s", text)
	}
	if !strings.Contains(text, "Page 2 Text") {
		t.Errorf("expected page 2 text, got: %s", text)
	}

	text, isErr = callTool(t, server.handleExtractText, map[string]any{"path": "doc.pdf", "pages": "7"})
	if !isErr {
		t.Errorf("expected out of range pages to fail, got: %s", text)
	}
}

func TestServer_HandleMetadata(t *testing.T) {
	server, _ := newTestServer(t)

	text, isErr := callTool(t, server.handleMetadata, map[string]any{"path": "doc.pdf"})
	if isErr {
		t.Fatalf("unexpected error result: %s", text)
	}
	if !strings.Contains(text, "Number of pages: 3") {
		t.Errorf("expected page count, got: %s", text)
	}
}

func TestServer_HandleRotate(t *testing.T) {
	server, dir := newTestServer(t)

	text, isErr := callTool(t, server.handleRotate, map[string]any{"path": "doc.pdf", "angle": float64(90)})
	if isErr {
		t.Fatalf("unexpected error result: %s", text)
	}
	if _, err := os.Stat(filepath.Join(dir, "doc_rotated_90.pdf")); err != nil {
		t.Errorf("rotated file not written: %v", err)
	}

	text, isErr = callTool(t, server.handleRotate, map[string]any{
		"path": "doc.pdf", "angle": float64(180), "output": "out/turned.pdf",
	})
	if isErr {
		t.Fatalf("unexpected error result: %s", text)
	}
	if _, err := os.Stat(filepath.Join(dir, "out", "turned.pdf")); err != nil {
		t.Errorf("rotated file not written to output: %v", err)
	}

	_, isErr = callTool(t, server.handleRotate, map[string]any{"path": "doc.pdf", "angle": float64(45)})
	if !isErr {
		t.Error("expected an invalid angle to fail")
	}
}

func TestServer_HandleEncryptDecrypt(t *testing.T) {
	server, dir := newTestServer(t)

	text, isErr := callTool(t, server.handleEncrypt, map[string]any{
		"path": "doc.pdf", "new_password": "secret", "algorithm": "AES-128",
	})
	if isErr {
		t.Fatalf("unexpected error result: %s", text)
	}
	if _, err := os.Stat(filepath.Join(dir, "protected_doc.pdf")); err != nil {
		t.Fatalf("protected file not written: %v", err)
	}

	text, isErr = callTool(t, server.handleMetadata, map[string]any{"path": "protected_doc.pdf"})
	if !isErr {
		t.Errorf("expected a password to be required, got: %s", text)
	}

	text, isErr = callTool(t, server.handleDecrypt, map[string]any{"path": "protected_doc.pdf", "password": "secret"})
	if isErr {
		t.Fatalf("unexpected error result: %s", text)
	}
	if _, err := os.Stat(filepath.Join(dir, "unprotected_protected_doc.pdf")); err != nil {
		t.Errorf("unprotected file not written: %v", err)
	}
}

func TestServer_HandleMerge(t *testing.T) {
	server, dir := newTestServer(t)

	text, isErr := callTool(t, server.handleMerge, map[string]any{"path": "doc.pdf", "second_path": "doc.pdf"})
	if isErr {
		t.Fatalf("unexpected error result: %s", text)
	}

	text, isErr = callTool(t, server.handleMetadata, map[string]any{"path": filepath.Join(dir, "merged.pdf")})
	if isErr || !strings.Contains(text, "Number of pages: 6") {
		t.Errorf("expected six merged pages, got: %s", text)
	}
}

func TestServer_HandleReduce(t *testing.T) {
	server, dir := newTestServer(t)

	_, isErr := callTool(t, server.handleReduce, map[string]any{"path": "doc.pdf"})
	if !isErr {
		t.Error("expected reduce without options to fail")
	}

	text, isErr := callTool(t, server.handleReduce, map[string]any{"path": "doc.pdf", "lossless": true})
	if isErr {
		t.Fatalf("unexpected error result: %s", text)
	}
	if !strings.Contains(text, "Reduced from") {
		t.Errorf("expected size report, got: %s", text)
	}
	if _, err := os.Stat(filepath.Join(dir, "doc_reduced.pdf")); err != nil {
		t.Errorf("reduced file not written: %v", err)
	}
}

func TestServer_HandleServerInfo(t *testing.T) {
	server, _ := newTestServer(t)

	text, isErr := callTool(t, server.handleServerInfo, map[string]any{})
	if isErr {
		t.Fatalf("unexpected error result: %s", text)
	}
	for _, want := range []string{"test-server", "doc.pdf", "A4", "AES-256-R5"} {
		if !strings.Contains(text, want) {
			t.Errorf("server info missing %q: %s", want, text)
		}
	}
}

func TestServer_PathOutsideDirectory(t *testing.T) {
	server, _ := newTestServer(t)

	text, isErr := callTool(t, server.handleMetadata, map[string]any{"path": "../doc.pdf"})
	if !isErr || !strings.Contains(text, "outside") {
		t.Errorf("expected path outside the directory to be rejected, got: %s", text)
	}

	text, isErr = callTool(t, server.handleRotate, map[string]any{
		"path": "doc.pdf", "angle": float64(90), "output": "/tmp/../escape.pdf",
	})
	if !isErr {
		t.Errorf("expected output outside the directory to be rejected, got: %s", text)
	}
}

func TestServer_InvalidArguments(t *testing.T) {
	server, _ := newTestServer(t)

	handlers := []struct {
		name    string
		handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
	}{
		{"ExtractText", server.handleExtractText},
		{"ExtractImages", server.handleExtractImages},
		{"Metadata", server.handleMetadata},
		{"ValidateFile", server.handleValidateFile},
		{"Encrypt", server.handleEncrypt},
		{"Decrypt", server.handleDecrypt},
		{"Rotate", server.handleRotate},
		{"Resize", server.handleResize},
		{"Merge", server.handleMerge},
		{"ConvertWord", server.handleConvertWord},
		{"Reduce", server.handleReduce},
	}

	for _, h := range handlers {
		t.Run(h.name, func(t *testing.T) {
			text, isErr := callTool(t, h.handler, map[string]any{})
			if !isErr {
				t.Errorf("expected error result for missing arguments, got: %s", text)
			}
		})
	}
}

func TestServer_Run(t *testing.T) {
	server, _ := newTestServer(t)

	var out strings.Builder
	if err := server.Run(context.Background(), strings.NewReader(""), &out); err != nil {
		t.Errorf("Run() with closed input returned error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	in, w := io.Pipe()
	defer w.Close()
	if err := server.Run(ctx, in, &out); err != nil {
		t.Errorf("Run() with cancelled context returned error: %v", err)
	}
}

func TestEncryptionAlgorithmNames(t *testing.T) {
	names := encryptionAlgorithmNames()
	if len(names) != len(pdf.EncryptionAlgorithms) {
		t.Fatalf("got %d names, want %d", len(names), len(pdf.EncryptionAlgorithms))
	}
	if names[0] != pdf.EncryptionAlgorithms[0].Name {
		t.Errorf("names[0] = %s, want %s", names[0], pdf.EncryptionAlgorithms[0].Name)
	}
}

func TestServer_ImageTarget(t *testing.T) {
	server, dir := newTestServer(t)
	out := filepath.Join(dir, "doc_images")

	target, err := server.imageTarget(out, "page1_Im0.png")
	if err != nil {
		t.Fatalf("imageTarget() error: %v", err)
	}
	if target != filepath.Join(out, "page1_Im0.png") {
		t.Errorf("imageTarget() = %q", target)
	}

	for _, name := range []string{"../escape.png", "../../outside.png", "nested/deeper.png"} {
		if _, err := server.imageTarget(out, name); err == nil {
			t.Errorf("imageTarget(%q) should fail", name)
		}
	}
}

func TestServer_HandleExtractImages(t *testing.T) {
	server, dir := newTestServer(t)
	data, err := pdftest.Images(image.Pt(64, 48))
	if err != nil {
		t.Fatalf("failed to build image PDF: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "photos.pdf"), data, 0o644); err != nil {
		t.Fatalf("failed to write image PDF: %v", err)
	}

	text, isErr := callTool(t, server.handleExtractImages, map[string]any{"path": "photos.pdf"})
	if isErr {
		t.Fatalf("unexpected error: %s", text)
	}
	if !strings.Contains(text, "Total images found: 1") || !strings.Contains(text, "64x48") {
		t.Errorf("unexpected result:\n%s", text)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "photos_images"))
	if err != nil {
		t.Fatalf("image directory missing: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 image file, got %d", len(entries))
	}
}
