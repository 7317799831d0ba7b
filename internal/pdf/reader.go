package pdf

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/sirupsen/logrus"
	"github.com/tsawler/tabula"
	tabulareader "github.com/tsawler/tabula/reader"

	pdferrors "github.com/a3tai/pdf-workdesk/internal/pdf/errors"
	"github.com/a3tai/pdf-workdesk/internal/pagerange"
)

// Reader handles text extraction from selected pages
type Reader struct {
	maxTextSize int
	logger      *logrus.Logger
}

// NewReader creates a new text reader
func NewReader(logger *logrus.Logger) *Reader {
	return &Reader{
		maxTextSize: 10 * 1024 * 1024, // 10MB text limit
		logger:      logger,
	}
}

// ExtractText extracts the text of the pages selected by req.Pages. Every
// page contributes its text preceded by a single space, in selection order.
func (r *Reader) ExtractText(doc *Document, req ExtractTextRequest) (*ExtractTextResult, error) {
	mode := strings.ToLower(strings.TrimSpace(req.Mode))
	if mode == "" {
		mode = TextModePlain
	}
	if mode != TextModePlain && mode != TextModeLayout {
		return nil, pdferrors.Newf(pdferrors.ErrorTypeInvalidArgument,
			"extraction mode must be %q or %q", TextModePlain, TextModeLayout)
	}

	indices, err := pagerange.Select(req.Pages, doc.PageCount)
	if err != nil {
		return nil, err
	}

	var pageText func(int) string
	switch mode {
	case TextModeLayout:
		pageText, err = r.layoutText(doc, indices)
	default:
		pageText, err = r.plainText(doc)
	}
	if err != nil {
		return nil, err
	}

	result := &ExtractTextResult{
		Pages: make([]int, 0, len(indices)),
		Mode:  mode,
	}

	var builder strings.Builder
	for _, idx := range indices {
		content := pageText(idx)
		if builder.Len()+len(content)+1 > r.maxTextSize {
			r.logger.WithFields(logrus.Fields{
				"document": doc.Name,
				"page":     idx + 1,
				"limit":    r.maxTextSize,
			}).Warn("text limit reached, truncating extraction")
			result.Truncated = true
			break
		}
		builder.WriteString(" ")
		builder.WriteString(content)
		result.Pages = append(result.Pages, idx+1)
	}

	result.Text = builder.String()
	return result, nil
}

// plainText returns a page text lookup backed by ledongthuc/pdf
func (r *Reader) plainText(doc *Document) (func(int) string, error) {
	plain := doc.Plain()
	pdfReader, err := pdf.NewReader(bytes.NewReader(plain), int64(len(plain)))
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeInvalidDocument, "failed to open PDF for text extraction", err)
	}

	cache := make(map[int]string)
	return func(idx int) string {
		if text, ok := cache[idx]; ok {
			return text
		}
		text := r.extractPageText(pdfReader, idx+1)
		cache[idx] = text
		return text
	}, nil
}

// extractPageText extracts the plain text of one page, empty on failure
func (r *Reader) extractPageText(pdfReader *pdf.Reader, pageNum int) (text string) {
	defer func() {
		// Recover from any panics inside the parser for this page
		if rec := recover(); rec != nil {
			r.logger.WithFields(logrus.Fields{"page": pageNum, "panic": rec}).Warn("text extraction failed")
			text = ""
		}
	}()

	page := pdfReader.Page(pageNum)
	if page.V.IsNull() {
		return ""
	}

	content, err := page.GetPlainText(nil)
	if err != nil {
		r.logger.WithError(err).WithField("page", pageNum).Debug("text extraction failed")
		return ""
	}
	return content
}

// layoutText extracts every distinct selected page with tabula's layout
// preserving mode. tabula reads from a file, so the document is staged
// in a temporary file for the duration of the extraction.
func (r *Reader) layoutText(doc *Document, indices []int) (func(int) string, error) {
	path, cleanup, err := stageTempFile(doc.Plain())
	if err != nil {
		return nil, err
	}
	defer cleanup()

	tr, err := tabulareader.Open(path)
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeInvalidDocument, "failed to open PDF for layout extraction", err)
	}
	defer tr.Close()

	texts := make(map[int]string, len(indices))
	for _, idx := range indices {
		if _, done := texts[idx]; done {
			continue
		}
		text, warnings, err := tabula.FromReader(tr).Pages(idx + 1).PreserveLayout().Text()
		if err != nil {
			return nil, pdferrors.Wrap(pdferrors.ErrorTypeConversionFailed,
				fmt.Sprintf("layout extraction failed on page %d", idx+1), err)
		}
		if len(warnings) > 0 {
			r.logger.WithFields(logrus.Fields{"page": idx + 1, "warnings": len(warnings)}).Debug("layout extraction warnings")
		}
		texts[idx] = text
	}

	return func(idx int) string { return texts[idx] }, nil
}

// stageTempFile writes data to a temporary .pdf file for libraries that
// only read from paths
func stageTempFile(data []byte) (string, func(), error) {
	f, err := os.CreateTemp("", "pdf-workdesk-*.pdf")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	cleanup := func() { _ = os.Remove(f.Name()) }

	if _, err := f.Write(data); err != nil {
		f.Close()
		cleanup()
		return "", nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to close temp file: %w", err)
	}
	return f.Name(), cleanup, nil
}
