package pdf

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/sirupsen/logrus"
)

// Editor produces modified copies of documents. Every output is written
// from the decrypted bytes, so it carries no password unless the operation
// adds one.
type Editor struct {
	logger *logrus.Logger
}

// NewEditor creates a new document editor
func NewEditor(logger *logrus.Logger) *Editor {
	return &Editor{logger: logger}
}

// transform runs a pdfcpu write operation over the decrypted bytes of doc
func (e *Editor) transform(doc *Document, op string, fn func(rs io.ReadSeeker, w io.Writer, conf *model.Configuration) error) ([]byte, error) {
	var buf bytes.Buffer
	if err := fn(bytes.NewReader(doc.Plain()), &buf, newConfiguration("")); err != nil {
		return nil, fmt.Errorf("%s failed: %w", op, err)
	}

	e.logger.WithFields(logrus.Fields{
		"operation": op,
		"document":  doc.Name,
		"in":        len(doc.Plain()),
		"out":       buf.Len(),
	}).Debug("document transformed")

	return buf.Bytes(), nil
}
