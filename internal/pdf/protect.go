package pdf

import (
	"bytes"
	"io"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	pdferrors "github.com/a3tai/pdf-workdesk/internal/pdf/errors"
)

// EncryptionAlgorithm is a selectable encryption scheme
type EncryptionAlgorithm struct {
	Name      string `json:"name"`
	AES       bool   `json:"aes"`
	KeyLength int    `json:"key_length"`
}

// DefaultEncryptionAlgorithm is used when a request names none
const DefaultEncryptionAlgorithm = "AES-256-R5"

// EncryptionAlgorithms lists the supported schemes in display order.
// pdfcpu writes AES-256 with revision 6 handlers, so both AES-256 names
// produce the same output.
var EncryptionAlgorithms = []EncryptionAlgorithm{
	{Name: "RC4-40", AES: false, KeyLength: 40},
	{Name: "RC4-128", AES: false, KeyLength: 128},
	{Name: "AES-128", AES: true, KeyLength: 128},
	{Name: "AES-256-R5", AES: true, KeyLength: 256},
	{Name: "AES-256", AES: true, KeyLength: 256},
}

// LookupEncryptionAlgorithm finds an algorithm by name, ignoring case. An
// empty name selects the default.
func LookupEncryptionAlgorithm(name string) (EncryptionAlgorithm, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultEncryptionAlgorithm
	}
	for _, alg := range EncryptionAlgorithms {
		if strings.EqualFold(alg.Name, name) {
			return alg, true
		}
	}
	return EncryptionAlgorithm{}, false
}

// configuration returns the pdfcpu configuration that encrypts with alg
func (alg EncryptionAlgorithm) configuration(password string) *model.Configuration {
	var conf *model.Configuration
	if alg.AES {
		conf = model.NewAESConfiguration(password, password, alg.KeyLength)
	} else {
		conf = model.NewRC4Configuration(password, password, alg.KeyLength)
	}
	conf.ValidationMode = model.ValidationRelaxed
	conf.Permissions = model.PermissionsAll
	return conf
}

// Encrypt protects doc with a new password. An encrypted document gets its
// password changed.
func (e *Editor) Encrypt(doc *Document, req EncryptRequest) (*Artifact, error) {
	if req.Password == "" {
		return nil, pdferrors.New(pdferrors.ErrorTypeInvalidArgument, "password cannot be empty")
	}
	alg, ok := LookupEncryptionAlgorithm(req.Algorithm)
	if !ok {
		return nil, pdferrors.Newf(pdferrors.ErrorTypeInvalidArgument, "unsupported encryption algorithm %q", req.Algorithm)
	}

	out, err := e.transform(doc, "encrypt", func(rs io.ReadSeeker, w io.Writer, _ *model.Configuration) error {
		return api.Encrypt(rs, w, alg.configuration(req.Password))
	})
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeConversionFailed, "failed to encrypt PDF", err).WithFile(doc.Name)
	}

	return &Artifact{
		Name:     "protected_" + doc.Name,
		MIMEType: MIMETypePDF,
		Data:     out,
	}, nil
}

// Decrypt removes the password of an encrypted document
func (e *Editor) Decrypt(doc *Document) (*Artifact, error) {
	if !doc.Encrypted {
		return nil, pdferrors.New(pdferrors.ErrorTypeUnsupportedOperation, "PDF does not have a password")
	}

	// Load already produced the decrypted bytes; write them out as a copy
	out := bytes.Clone(doc.Plain())
	e.logger.WithField("document", doc.Name).Debug("password removed")

	return &Artifact{
		Name:     "unprotected_" + doc.Name,
		MIMEType: MIMETypePDF,
		Data:     out,
	}, nil
}
