//go:build !mupdf

package preview

const available = false

func renderPNG(_ []byte, _ int, _ float64) ([]byte, error) {
	return nil, ErrPreviewUnavailable
}
