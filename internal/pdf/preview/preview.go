// Package preview renders PDF pages to PNG images.
package preview

import (
	"errors"
	"fmt"
)

// DefaultDPI is the rendering resolution used when none is configured
const DefaultDPI = 96

// ErrPreviewUnavailable is returned when the binary was built without a
// rendering backend
var ErrPreviewUnavailable = errors.New("page preview is not available in this build")

// PageError reports a page index outside the document
type PageError struct {
	Index     int
	PageCount int
}

func (e *PageError) Error() string {
	return fmt.Sprintf("cannot render page %d of a document with %d pages", e.Index+1, e.PageCount)
}

// RenderPNG renders the zero-based page index of a PDF as PNG at dpi
func RenderPNG(data []byte, index int, dpi float64) ([]byte, error) {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	if index < 0 {
		return nil, &PageError{Index: index}
	}
	return renderPNG(data, index, dpi)
}

// Available reports whether this build can render previews
func Available() bool {
	return available
}
