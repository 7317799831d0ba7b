package pdf

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/a3tai/pdf-workdesk/internal/pagerange"
	pdferrors "github.com/a3tai/pdf-workdesk/internal/pdf/errors"
	"github.com/a3tai/pdf-workdesk/internal/pdf/preview"
)

// Options configures a Service
type Options struct {
	MaxFileSize int64
	PreviewDPI  float64
}

// Service is the entry point for every workdesk operation. It is safe for
// concurrent use; documents are never mutated by an operation.
type Service struct {
	loader     *Loader
	validator  *Validator
	reader     *Reader
	assets     *Assets
	editor     *Editor
	converter  *Converter
	logger     *logrus.Logger
	previewDPI float64
}

// NewService creates a new PDF service
func NewService(opts Options, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	loader := NewLoader(opts.MaxFileSize)
	return &Service{
		loader:     loader,
		validator:  NewValidator(loader),
		reader:     NewReader(logger),
		assets:     NewAssets(logger),
		editor:     NewEditor(logger),
		converter:  NewConverter(logger),
		logger:     logger,
		previewDPI: opts.PreviewDPI,
	}
}

// MaxFileSize returns the largest accepted document in bytes
func (s *Service) MaxFileSize() int64 {
	return s.loader.maxFileSize
}

// Load parses uploaded bytes as a document
func (s *Service) Load(data []byte, name, password string) (*Document, error) {
	doc, err := s.loader.Load(data, name, password)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"document":  doc.Name,
		"pages":     doc.PageCount,
		"encrypted": doc.Encrypted,
		"size":      doc.Size(),
	}).Debug("document loaded")
	return doc, nil
}

// LoadFile reads and parses a document from disk
func (s *Service) LoadFile(path, password string) (*Document, error) {
	return s.validator.ReadFile(path, password)
}

// ValidateFile checks whether path holds a readable PDF
func (s *Service) ValidateFile(path string) (*ValidateFileResult, error) {
	return s.validator.ValidateFile(path)
}

// Metadata returns the document information of doc
func (s *Service) Metadata(doc *Document) (*Metadata, error) {
	return ReadMetadata(doc)
}

// ExtractText extracts the text of the selected pages
func (s *Service) ExtractText(doc *Document, req ExtractTextRequest) (*ExtractTextResult, error) {
	return s.reader.ExtractText(doc, req)
}

// ExtractImages extracts the images of the selected pages
func (s *Service) ExtractImages(doc *Document, req ExtractImagesRequest) (*ExtractImagesResult, error) {
	return s.assets.ExtractImages(doc, req)
}

// Encrypt adds or changes the password of doc
func (s *Service) Encrypt(doc *Document, req EncryptRequest) (*Artifact, error) {
	return s.editor.Encrypt(doc, req)
}

// Decrypt removes the password of doc
func (s *Service) Decrypt(doc *Document) (*Artifact, error) {
	return s.editor.Decrypt(doc)
}

// Rotate rotates every page of doc clockwise
func (s *Service) Rotate(doc *Document, req RotateRequest) (*Artifact, error) {
	return s.editor.Rotate(doc, req)
}

// Resize changes the paper size of doc and scales its content
func (s *Service) Resize(doc *Document, req ResizeRequest) (*Artifact, error) {
	return s.editor.Resize(doc, req)
}

// Merge appends second to first
func (s *Service) Merge(first, second *Document) (*Artifact, error) {
	return s.editor.Merge(first, second)
}

// Reduce shrinks doc with the selected options
func (s *Service) Reduce(doc *Document, req ReduceRequest) (*ReduceResult, error) {
	return s.editor.Reduce(doc, req)
}

// ConvertToWord converts doc into a DOCX document
func (s *Service) ConvertToWord(doc *Document) (*Artifact, error) {
	return s.converter.ConvertToWord(doc)
}

// Preview renders the zero-based page index of doc as PNG
func (s *Service) Preview(doc *Document, index int) (*Artifact, error) {
	if err := pagerange.Check([]int{index}, doc.PageCount); err != nil {
		return nil, err
	}

	data, err := preview.RenderPNG(doc.Plain(), index, s.previewDPI)
	if err != nil {
		if errors.Is(err, preview.ErrPreviewUnavailable) {
			return nil, pdferrors.New(pdferrors.ErrorTypeUnsupportedOperation, err.Error())
		}
		var pageErr *preview.PageError
		if errors.As(err, &pageErr) {
			return nil, &pagerange.RangeError{Index: pageErr.Index, PageCount: pageErr.PageCount}
		}
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeConversionFailed, "failed to render preview", err).WithPage(index + 1)
	}

	return &Artifact{
		Name:     fmt.Sprintf("%s_page_%d.png", doc.Stem(), index+1),
		MIMEType: MIMETypePNG,
		Data:     data,
	}, nil
}

// PreviewAvailable reports whether page previews can be rendered
func (s *Service) PreviewAvailable() bool {
	return preview.Available()
}
