package pdf

import (
	"image"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/pdf-workdesk/internal/pdf/pdftest"
)

func generateTestPDF(texts []string, info string) []byte {
	return pdftest.Generate(texts, info)
}

func testTexts(n int) []string {
	return pdftest.Texts(n)
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestService() *Service {
	return NewService(Options{MaxFileSize: 10 * 1024 * 1024, PreviewDPI: 72}, testLogger())
}

// loadTestDocument loads a generated document with the given number of pages
func loadTestDocument(t *testing.T, pages int) *Document {
	t.Helper()
	doc, err := newTestService().Load(generateTestPDF(testTexts(pages), ""), "report.pdf", "")
	require.NoError(t, err)
	return doc
}

func writeTempFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// loadImageDocument loads a generated document with one noisy image per page,
// 200x200 on page 1 and 120x80 on page 2
func loadImageDocument(t *testing.T) *Document {
	t.Helper()
	data, err := pdftest.Images(image.Pt(200, 200), image.Pt(120, 80))
	require.NoError(t, err)
	doc, err := newTestService().Load(data, "photos.pdf", "")
	require.NoError(t, err)
	return doc
}
