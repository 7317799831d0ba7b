package pdf

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	pdferrors "github.com/a3tai/pdf-workdesk/internal/pdf/errors"
)

// headerSearchLimit is how far into a file the %PDF- marker may appear
const headerSearchLimit = 1024

// Document is a loaded PDF together with what is needed to operate on it.
// Operations read the decrypted bytes, so their outputs carry no password.
type Document struct {
	Name      string
	Password  string
	Encrypted bool
	PageCount int
	Version   string

	data  []byte
	plain []byte
}

// Bytes returns the document as it was uploaded
func (d *Document) Bytes() []byte {
	return d.data
}

// Plain returns the document without encryption
func (d *Document) Plain() []byte {
	return d.plain
}

// Size returns the size of the uploaded document in bytes
func (d *Document) Size() int64 {
	return int64(len(d.data))
}

// Stem returns the document name without its extension
func (d *Document) Stem() string {
	name := filepath.Base(d.Name)
	if ext := filepath.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	if name == "" || name == "." {
		return "document"
	}
	return name
}

// newConfiguration returns the pdfcpu configuration used for every operation
func newConfiguration(password string) *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.UserPW = password
	conf.OwnerPW = password
	return conf
}

// Loader turns raw bytes into Documents
type Loader struct {
	maxFileSize int64
}

// NewLoader creates a loader that rejects documents above maxFileSize bytes
func NewLoader(maxFileSize int64) *Loader {
	return &Loader{maxFileSize: maxFileSize}
}

// Load parses data as a PDF. An encrypted document without a password
// yields a PasswordRequired error, a wrong password InvalidPassword.
func (l *Loader) Load(data []byte, name, password string) (*Document, error) {
	if len(data) == 0 {
		return nil, pdferrors.New(pdferrors.ErrorTypeInvalidDocument, "file is empty").WithFile(name)
	}
	if int64(len(data)) > l.maxFileSize {
		return nil, pdferrors.Newf(pdferrors.ErrorTypeFileTooLarge,
			"file too large: %d bytes (max: %d bytes)", len(data), l.maxFileSize).WithFile(name)
	}
	if !hasPDFHeader(data) {
		return nil, pdferrors.New(pdferrors.ErrorTypeInvalidDocument, "missing %PDF- header").WithFile(name)
	}

	conf := newConfiguration(password)
	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		if looksEncrypted(data) {
			if password == "" {
				return nil, pdferrors.Wrap(pdferrors.ErrorTypePasswordRequired, "PDF is password protected", err).WithFile(name)
			}
			return nil, pdferrors.Wrap(pdferrors.ErrorTypeInvalidPassword, "password does not open the PDF", err).WithFile(name)
		}
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeInvalidDocument, "failed to read PDF", err).WithFile(name)
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeInvalidDocument, "failed to count pages", err).WithFile(name)
	}

	doc := &Document{
		Name:      name,
		Password:  password,
		Encrypted: ctx.Encrypt != nil,
		PageCount: ctx.PageCount,
		Version:   ctx.VersionString(),
		data:      data,
		plain:     data,
	}

	if doc.Encrypted {
		var buf bytes.Buffer
		if err := api.Decrypt(bytes.NewReader(data), &buf, newConfiguration(password)); err != nil {
			return nil, pdferrors.Wrap(pdferrors.ErrorTypeInvalidPassword, "failed to decrypt PDF", err).WithFile(name)
		}
		doc.plain = buf.Bytes()
	}

	return doc, nil
}

func hasPDFHeader(data []byte) bool {
	head := data
	if len(head) > headerSearchLimit {
		head = head[:headerSearchLimit]
	}
	return bytes.Contains(head, []byte("%PDF-"))
}

func looksEncrypted(data []byte) bool {
	return bytes.Contains(data, []byte("/Encrypt"))
}
