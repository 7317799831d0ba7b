package pdf

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	pdferrors "github.com/a3tai/pdf-workdesk/internal/pdf/errors"
)

// Resize defaults and limits
const (
	DefaultPaperSize = "A4"
	MinContentScale  = 0.1
	MaxContentScale  = 2.0
)

// PaperSizes returns the names of all known paper sizes, sorted
func PaperSizes() []string {
	names := make([]string, 0, len(types.PaperSize))
	for name := range types.PaperSize {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// lookupPaperSize returns the canonical name of a paper size, ignoring case
func lookupPaperSize(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultPaperSize
	}
	if _, ok := types.PaperSize[name]; ok {
		return name, true
	}
	for known := range types.PaperSize {
		if strings.EqualFold(known, name) {
			return known, true
		}
	}
	return "", false
}

// Rotate turns every page clockwise by angle degrees
func (e *Editor) Rotate(doc *Document, req RotateRequest) (*Artifact, error) {
	switch req.Angle {
	case 0, 90, 180, 270:
	default:
		return nil, pdferrors.Newf(pdferrors.ErrorTypeInvalidArgument,
			"rotation must be one of 0, 90, 180 or 270 degrees, got %d", req.Angle)
	}

	name := fmt.Sprintf("%s_rotated_%d.pdf", doc.Stem(), req.Angle)
	if req.Angle == 0 {
		return &Artifact{Name: name, MIMEType: MIMETypePDF, Data: bytes.Clone(doc.Plain())}, nil
	}

	out, err := e.transform(doc, "rotate", func(rs io.ReadSeeker, w io.Writer, conf *model.Configuration) error {
		return api.Rotate(rs, w, req.Angle, nil, conf)
	})
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeConversionFailed, "failed to rotate PDF", err).WithFile(doc.Name)
	}

	return &Artifact{Name: name, MIMEType: MIMETypePDF, Data: out}, nil
}

// Resize fits every page onto the requested paper size and then scales the
// page content by req.Scale around the page, keeping the paper size.
func (e *Editor) Resize(doc *Document, req ResizeRequest) (*Artifact, error) {
	paper, ok := lookupPaperSize(req.PaperSize)
	if !ok {
		return nil, pdferrors.Newf(pdferrors.ErrorTypeInvalidArgument, "unknown paper size %q", req.PaperSize)
	}
	scale := req.Scale
	if scale == 0 {
		scale = 1
	}
	if scale < MinContentScale || scale > MaxContentScale {
		return nil, pdferrors.Newf(pdferrors.ErrorTypeInvalidArgument,
			"content scale must be between %.1f and %.1f, got %g", MinContentScale, MaxContentScale, scale)
	}

	resize, err := pdfcpu.ParseResizeConfig("formsize:"+paper, types.POINTS)
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeInvalidArgument, "invalid paper size", err)
	}

	out, err := e.transform(doc, "resize", func(rs io.ReadSeeker, w io.Writer, conf *model.Configuration) error {
		return api.Resize(rs, w, nil, resize, conf)
	})
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeConversionFailed, "failed to resize PDF", err).WithFile(doc.Name)
	}

	if scale != 1 {
		zoom, err := pdfcpu.ParseZoomConfig("factor:"+strconv.FormatFloat(scale, 'f', -1, 64), types.POINTS)
		if err != nil {
			return nil, pdferrors.Wrap(pdferrors.ErrorTypeInvalidArgument, "invalid content scale", err)
		}
		var buf bytes.Buffer
		if err := api.Zoom(bytes.NewReader(out), &buf, nil, zoom, newConfiguration("")); err != nil {
			return nil, pdferrors.Wrap(pdferrors.ErrorTypeConversionFailed, "failed to scale page content", err).WithFile(doc.Name)
		}
		out = buf.Bytes()
	}

	return &Artifact{
		Name:     fmt.Sprintf("%s_scaled_%s_%sx.pdf", doc.Stem(), paper, formatScale(scale)),
		MIMEType: MIMETypePDF,
		Data:     out,
	}, nil
}

// formatScale renders a scale factor with at least one decimal, e.g. 1.0 or 0.25
func formatScale(scale float64) string {
	s := strconv.FormatFloat(scale, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Merge appends the pages of second to first
func (e *Editor) Merge(first, second *Document) (*Artifact, error) {
	if second == nil {
		return nil, pdferrors.New(pdferrors.ErrorTypeInvalidArgument, "a second PDF is required to merge")
	}

	var buf bytes.Buffer
	inputs := []io.ReadSeeker{bytes.NewReader(first.Plain()), bytes.NewReader(second.Plain())}
	if err := api.MergeRaw(inputs, &buf, false, newConfiguration("")); err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeConversionFailed, "failed to merge PDFs", err)
	}
	e.logger.WithField("pages", first.PageCount+second.PageCount).Debug("documents merged")

	return &Artifact{Name: "merged.pdf", MIMEType: MIMETypePDF, Data: buf.Bytes()}, nil
}
