//go:build mupdf

package preview

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/gen2brain/go-fitz"
)

const available = true

// renderPNG renders a page with MuPDF
func renderPNG(data []byte, index int, dpi float64) ([]byte, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("failed reading document: %w", err)
	}
	defer doc.Close()

	if n := doc.NumPage(); index >= n {
		return nil, &PageError{Index: index, PageCount: n}
	}

	img, err := doc.ImageDPI(index, dpi)
	if err != nil {
		return nil, fmt.Errorf("failed rendering page %d: %w", index+1, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed encoding page %d: %w", index+1, err)
	}
	return buf.Bytes(), nil
}
