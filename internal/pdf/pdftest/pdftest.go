// Package pdftest generates small PDF documents for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"math/rand"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Generate builds a PDF with one page per entry of texts. info, when
// not empty, is written as the body of the document information dictionary.
func Generate(texts []string, info string) []byte {
	n := len(texts)
	var b strings.Builder
	offsets := []int{}
	obj := func(body string) {
		offsets = append(offsets, b.Len())
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	b.WriteString("%PDF-1.4\n")

	// 1 catalog, 2 pages, 3 font, then page i at 4+2i and its content at 5+2i
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	kids := make([]string, n)
	for i := range texts {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n))
	obj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	for i, text := range texts {
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents %d 0 R /Resources << /Font << /F1 3 0 R >> >> >>", 5+2*i))
		content := fmt.Sprintf("BT\n/F1 12 Tf\n100 700 Td\n(%s) Tj\nET\n", text)
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(content), content))
	}

	infoRef := ""
	if info != "" {
		obj(info)
		infoRef = fmt.Sprintf(" /Info %d 0 R", len(offsets))
	}

	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R%s >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, infoRef, xref)

	return []byte(b.String())
}

// Texts returns n page texts "Page 1 Text", "Page 2 Text", ...
func Texts(n int) []string {
	texts := make([]string, n)
	for i := range texts {
		texts[i] = fmt.Sprintf("Page %d Text", i+1)
	}
	return texts
}


// Images builds a PDF with one page per size, each page showing a distinct
// noisy RGB image of that size. Noise keeps the images large and lossy
// compression effective.
func Images(sizes ...image.Point) ([]byte, error) {
	imgs := make([]io.Reader, len(sizes))
	for i, size := range sizes {
		data, err := noisePNG(size.X, size.Y, int64(i+1))
		if err != nil {
			return nil, err
		}
		imgs[i] = bytes.NewReader(data)
	}

	var buf bytes.Buffer
	if err := api.ImportImages(nil, &buf, imgs, pdfcpu.DefaultImportConfig(), model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("import images: %w", err)
	}
	return buf.Bytes(), nil
}

func noisePNG(width, height int, seed int64) ([]byte, error) {
	rnd := rand.New(rand.NewSource(seed))
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8(rnd.Intn(256))
		img.Pix[i+1] = uint8(rnd.Intn(256))
		img.Pix[i+2] = uint8(rnd.Intn(256))
		img.Pix[i+3] = 0xff
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
