package pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/sirupsen/logrus"

	pdferrors "github.com/a3tai/pdf-workdesk/internal/pdf/errors"
)

// Image quality bounds for re-encoding
const (
	MinImageQuality = 1
	MaxImageQuality = 100
)

// Reduce shrinks doc with the selected options. Removing images and
// re-encoding them both imply removing duplication. Image quality is
// ignored when images are removed.
func (e *Editor) Reduce(doc *Document, req ReduceRequest) (*ReduceResult, error) {
	if !req.RemoveDuplication && !req.RemoveImages && req.ImageQuality == nil && !req.Lossless {
		return nil, pdferrors.New(pdferrors.ErrorTypeInvalidArgument, "select at least one reduction option")
	}

	out := doc.Plain()
	var err error

	switch {
	case req.RemoveImages:
		out, err = e.blankImages(out)
	case req.ImageQuality != nil:
		out, err = e.requalifyImages(out, clampQuality(*req.ImageQuality))
	}
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeConversionFailed, "failed to process images", err).WithFile(doc.Name)
	}

	if req.RemoveDuplication || req.RemoveImages || req.ImageQuality != nil {
		if out, err = optimize(out, false); err != nil {
			return nil, pdferrors.Wrap(pdferrors.ErrorTypeConversionFailed, "failed to remove duplication", err).WithFile(doc.Name)
		}
	}

	if req.Lossless {
		if out, err = optimize(out, true); err != nil {
			return nil, pdferrors.Wrap(pdferrors.ErrorTypeConversionFailed, "failed to compress PDF", err).WithFile(doc.Name)
		}
	}

	result := &ReduceResult{
		Artifact: &Artifact{
			Name:     doc.Stem() + "_reduced.pdf",
			MIMEType: MIMETypePDF,
			Data:     out,
		},
		OriginalSize: doc.Size(),
		ReducedSize:  int64(len(out)),
	}

	e.logger.WithFields(logrus.Fields{
		"document":  doc.Name,
		"original":  result.OriginalSize,
		"reduced":   result.ReducedSize,
		"reduction": fmt.Sprintf("%.2f%%", result.Reduction()),
	}).Info("document reduced")

	return result, nil
}

func clampQuality(q int) int {
	if q < MinImageQuality {
		return MinImageQuality
	}
	if q > MaxImageQuality {
		return MaxImageQuality
	}
	return q
}

// optimize rewrites data with pdfcpu's optimizer, which drops duplicate
// fonts, images and unused objects. compact additionally packs objects and
// the cross reference table into compressed streams.
func optimize(data []byte, compact bool) ([]byte, error) {
	conf := newConfiguration("")
	if compact {
		conf.WriteObjectStream = true
		conf.WriteXRefStream = true
	}

	var buf bytes.Buffer
	if err := api.Optimize(bytes.NewReader(data), &buf, conf); err != nil {
		return nil, fmt.Errorf("optimize failed: %w", err)
	}
	return buf.Bytes(), nil
}

// embeddedImage is one image object of a document
type embeddedImage struct {
	objNr    int
	pageNr   int
	fileType string
	width    int
	height   int
	data     []byte
}

// listImages returns every image object of data once
func listImages(data []byte) ([]embeddedImage, error) {
	var images []embeddedImage
	seen := make(map[int]bool)

	conf := newConfiguration("")
	conf.Cmd = model.EXTRACTIMAGES
	err := api.ExtractImages(bytes.NewReader(data), nil, func(img model.Image, _ bool, _ int) error {
		if seen[img.ObjNr] {
			return nil
		}
		seen[img.ObjNr] = true
		raw, err := io.ReadAll(img)
		if err != nil {
			return err
		}
		entry := embeddedImage{
			objNr:    img.ObjNr,
			pageNr:   img.PageNr,
			fileType: img.FileType,
			width:    img.Width,
			height:   img.Height,
			data:     raw,
		}
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(raw)); err == nil {
			entry.width, entry.height = cfg.Width, cfg.Height
		}
		images = append(images, entry)
		return nil
	}, conf)
	if err != nil {
		return nil, err
	}
	return images, nil
}

// replaceImage swaps the image object objNr for the encoded image in rd.
// pdfcpu only accepts a replacement with the dimensions of the original.
func replaceImage(data []byte, objNr int, rd io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	if err := api.UpdateImages(bytes.NewReader(data), rd, &buf, objNr, 0, "", newConfiguration("")); err != nil {
		return nil, fmt.Errorf("failed to replace image object %d: %w", objNr, err)
	}
	return buf.Bytes(), nil
}

// blankImage encodes a white grayscale PNG of the given size
func blankImage(width, height int) ([]byte, error) {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// blankImages replaces every image with a white image of the same size
func (e *Editor) blankImages(data []byte) ([]byte, error) {
	images, err := listImages(data)
	if err != nil {
		return nil, err
	}

	blanked := 0
	for _, img := range images {
		if img.width <= 0 || img.height <= 0 {
			e.logger.WithFields(logrus.Fields{"object": img.objNr, "format": img.fileType}).Warn("image size unknown, kept as is")
			continue
		}
		blank, err := blankImage(img.width, img.height)
		if err != nil {
			return nil, fmt.Errorf("failed to encode blank image for object %d: %w", img.objNr, err)
		}
		if data, err = replaceImage(data, img.objNr, bytes.NewReader(blank)); err != nil {
			return nil, err
		}
		blanked++
	}
	e.logger.WithFields(logrus.Fields{"images": len(images), "removed": blanked}).Debug("images removed")
	return data, nil
}

// requalifyImages re-encodes every decodable image as JPEG at quality and
// keeps the result where it is smaller than the original
func (e *Editor) requalifyImages(data []byte, quality int) ([]byte, error) {
	images, err := listImages(data)
	if err != nil {
		return nil, err
	}

	replaced := 0
	for _, img := range images {
		decoded, _, err := image.Decode(bytes.NewReader(img.data))
		if err != nil {
			e.logger.WithFields(logrus.Fields{"object": img.objNr, "format": img.fileType}).Debug("image not decodable, kept as is")
			continue
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, decoded, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("failed to encode image object %d: %w", img.objNr, err)
		}
		if buf.Len() >= len(img.data) {
			continue
		}

		if data, err = replaceImage(data, img.objNr, &buf); err != nil {
			return nil, err
		}
		replaced++
	}

	e.logger.WithFields(logrus.Fields{"images": len(images), "replaced": replaced, "quality": quality}).Debug("images re-encoded")
	return data, nil
}
