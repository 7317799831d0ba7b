package pdf

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"image"
	_ "image/gif"  // register decoder for DecodeConfig
	_ "image/jpeg" // register decoder for DecodeConfig
	_ "image/png"  // register decoder for DecodeConfig
	"io"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/bmp"  // register decoder for DecodeConfig
	_ "golang.org/x/image/tiff" // register decoder for DecodeConfig

	pdferrors "github.com/a3tai/pdf-workdesk/internal/pdf/errors"
	"github.com/a3tai/pdf-workdesk/internal/pagerange"
)

// Assets handles embedded image extraction
type Assets struct {
	logger *logrus.Logger
}

// NewAssets creates a new image extractor
func NewAssets(logger *logrus.Logger) *Assets {
	return &Assets{logger: logger}
}

// ExtractImages returns the images of the selected pages in selection order.
// An image whose bytes were already returned is skipped.
func (a *Assets) ExtractImages(doc *Document, req ExtractImagesRequest) (*ExtractImagesResult, error) {
	indices, err := pagerange.Select(req.Pages, doc.PageCount)
	if err != nil {
		return nil, err
	}

	byPage, err := a.imagesByPage(doc, indices)
	if err != nil {
		return nil, err
	}

	seen := make(map[[sha256.Size]byte]bool)
	images := []ImageInfo{}
	for _, idx := range indices {
		for _, img := range byPage[idx+1] {
			sum := sha256.Sum256(img.Data)
			if seen[sum] {
				continue
			}
			seen[sum] = true
			images = append(images, img)
		}
	}

	return &ExtractImagesResult{
		Images:     images,
		TotalCount: len(images),
	}, nil
}

// imagesByPage extracts the images of every distinct selected page in one
// pass, keyed by 1-based page number
func (a *Assets) imagesByPage(doc *Document, indices []int) (map[int][]ImageInfo, error) {
	unique := make([]int, 0, len(indices))
	added := make(map[int]bool, len(indices))
	for _, idx := range indices {
		if !added[idx] {
			added[idx] = true
			unique = append(unique, idx)
		}
	}

	byPage := make(map[int][]ImageInfo)
	digest := func(img model.Image, _ bool, _ int) error {
		data, err := io.ReadAll(img)
		if err != nil {
			return fmt.Errorf("failed to read image %s: %w", img.Name, err)
		}

		info := ImageInfo{
			Name:       imageFileName(img),
			PageNumber: img.PageNr,
			ObjectNr:   img.ObjNr,
			Format:     strings.ToLower(img.FileType),
			Size:       int64(len(data)),
			Data:       data,
		}
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
			info.Width = cfg.Width
			info.Height = cfg.Height
		} else if img.Width > 0 && img.Height > 0 {
			info.Width = img.Width
			info.Height = img.Height
		} else {
			a.logger.WithFields(logrus.Fields{"image": info.Name, "format": info.Format}).Debug("image dimensions unavailable")
		}

		byPage[img.PageNr] = append(byPage[img.PageNr], info)
		return nil
	}

	conf := newConfiguration("")
	conf.Cmd = model.EXTRACTIMAGES
	if err := api.ExtractImages(bytes.NewReader(doc.Plain()), pagerange.PageNumbers(unique), digest, conf); err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeInvalidDocument, "failed to extract images", err).WithFile(doc.Name)
	}

	return byPage, nil
}

// imageFileName names an image after its resource name and page
func imageFileName(img model.Image) string {
	ext := strings.ToLower(img.FileType)
	if ext == "" {
		ext = "bin"
	}
	name := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ':' || r < 0x20 {
			return '_'
		}
		return r
	}, img.Name)
	if name == "" || strings.Trim(name, ".") == "" {
		name = fmt.Sprintf("obj%d", img.ObjNr)
	}
	return fmt.Sprintf("page%d_%s.%s", img.PageNr, name, ext)
}
