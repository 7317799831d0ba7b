package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	pdferrors "github.com/a3tai/pdf-workdesk/internal/pdf/errors"
)

// Validator checks files on disk before they are loaded
type Validator struct {
	loader *Loader
}

// NewValidator creates a validator that enforces the loader's limits
func NewValidator(loader *Loader) *Validator {
	return &Validator{loader: loader}
}

// ValidateFile reports whether path holds a readable PDF. A password
// protected file is valid; the message says a password is needed.
func (v *Validator) ValidateFile(path string) (*ValidateFileResult, error) {
	result := &ValidateFileResult{Path: path}

	if _, err := v.ReadFile(path, ""); err != nil {
		if pdferrors.Is(err, pdferrors.ErrorTypePasswordRequired) {
			result.Valid = true
			result.Message = "PDF is password protected"
			return result, nil
		}
		result.Message = err.Error()
		return result, nil //nolint:nilerr // an invalid file is a result, not a failure
	}

	result.Valid = true
	return result, nil
}

// ReadFile validates path and loads it as a Document
func (v *Validator) ReadFile(path, password string) (*Document, error) {
	if path == "" {
		return nil, pdferrors.New(pdferrors.ErrorTypeInvalidArgument, "path cannot be empty")
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, pdferrors.Newf(pdferrors.ErrorTypeNotFound, "file does not exist: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}
	if err := v.ValidateFileInfo(path, info); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read file: %w", err)
	}

	return v.loader.Load(data, filepath.Base(path), password)
}

// ValidateFileInfo performs basic validation on file info without opening the PDF
func (v *Validator) ValidateFileInfo(path string, info os.FileInfo) error {
	if info.IsDir() {
		return pdferrors.Newf(pdferrors.ErrorTypeInvalidArgument, "path is a directory, not a file: %s", path)
	}

	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return pdferrors.Newf(pdferrors.ErrorTypeInvalidDocument, "file is not a PDF: %s", path).WithFile(path)
	}

	if info.Size() == 0 {
		return pdferrors.Newf(pdferrors.ErrorTypeInvalidDocument, "file is empty: %s", path).WithFile(path)
	}

	if info.Size() > v.loader.maxFileSize {
		return pdferrors.Newf(pdferrors.ErrorTypeFileTooLarge,
			"file too large: %d bytes (max: %d bytes)", info.Size(), v.loader.maxFileSize).WithFile(path)
	}

	return nil
}
