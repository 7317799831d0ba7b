package errors

import (
	stderrors "errors"
	"fmt"
	"time"

	"github.com/a3tai/pdf-workdesk/internal/pagerange"
)

// PDFError is a workdesk failure with enough context to be shown to a user
type PDFError struct {
	Type        ErrorType `json:"type"`
	Message     string    `json:"message"`
	Context     string    `json:"context,omitempty"`
	FilePath    string    `json:"file_path,omitempty"`
	PageNumber  int       `json:"page_number,omitempty"`
	Recoverable bool      `json:"recoverable"`
	Timestamp   time.Time `json:"timestamp"`
	Err         error     `json:"-"`
}

// ErrorType represents the categories of workdesk errors
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeInvalidPageSpec
	ErrorTypePageOutOfRange
	ErrorTypePasswordRequired
	ErrorTypeInvalidPassword
	ErrorTypeInvalidDocument
	ErrorTypeFileTooLarge
	ErrorTypeFetchFailed
	ErrorTypeUnsupportedOperation
	ErrorTypeInvalidArgument
	ErrorTypeConversionFailed
	ErrorTypeNotFound
	ErrorTypeLimitExceeded
)

// Error implements the error interface
func (e *PDFError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Type.String(), e.Message, e.Context)
	}
	return fmt.Sprintf("[%s] %s", e.Type.String(), e.Message)
}

// Unwrap returns the underlying cause, if any
func (e *PDFError) Unwrap() error {
	return e.Err
}

// String returns a string representation of the ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeInvalidPageSpec:
		return "INVALID_PAGE_SPEC"
	case ErrorTypePageOutOfRange:
		return "PAGE_OUT_OF_RANGE"
	case ErrorTypePasswordRequired:
		return "PASSWORD_REQUIRED"
	case ErrorTypeInvalidPassword:
		return "INVALID_PASSWORD"
	case ErrorTypeInvalidDocument:
		return "INVALID_DOCUMENT"
	case ErrorTypeFileTooLarge:
		return "FILE_TOO_LARGE"
	case ErrorTypeFetchFailed:
		return "FETCH_FAILED"
	case ErrorTypeUnsupportedOperation:
		return "UNSUPPORTED_OPERATION"
	case ErrorTypeInvalidArgument:
		return "INVALID_ARGUMENT"
	case ErrorTypeConversionFailed:
		return "CONVERSION_FAILED"
	case ErrorTypeNotFound:
		return "NOT_FOUND"
	case ErrorTypeLimitExceeded:
		return "LIMIT_EXCEEDED"
	default:
		return "UNKNOWN"
	}
}

// MarshalText lets ErrorType appear by name in JSON payloads
func (et ErrorType) MarshalText() ([]byte, error) {
	return []byte(et.String()), nil
}

// IsRecoverable reports whether the user can fix the problem by changing
// their input and resubmitting
func (et ErrorType) IsRecoverable() bool {
	switch et {
	case ErrorTypeInvalidPageSpec, ErrorTypePageOutOfRange:
		return true
	case ErrorTypePasswordRequired, ErrorTypeInvalidPassword:
		return true
	case ErrorTypeInvalidArgument, ErrorTypeFetchFailed:
		return true
	default:
		return false
	}
}

// userMessages holds the inline validation message shown per error type
var userMessages = map[ErrorType]string{
	ErrorTypeInvalidPageSpec:      "Specified pages don't exist. Check the format.",
	ErrorTypePageOutOfRange:       "Specified pages don't exist. Check the format.",
	ErrorTypePasswordRequired:     "PDF is password protected. Please enter the password to proceed.",
	ErrorTypeInvalidPassword:      "The password is incorrect.",
	ErrorTypeInvalidDocument:      "The file does not seem to be a valid PDF file.",
	ErrorTypeFileTooLarge:         "The file is too large.",
	ErrorTypeFetchFailed:          "The URL does not seem to be a valid PDF file.",
	ErrorTypeUnsupportedOperation: "This operation is not available for this PDF.",
	ErrorTypeInvalidArgument:      "Invalid input.",
	ErrorTypeConversionFailed:     "The PDF could not be converted.",
	ErrorTypeNotFound:             "Not found.",
	ErrorTypeLimitExceeded:        "The server is busy. Please try again later.",
	ErrorTypeUnknown:              "Something went wrong while processing the PDF.",
}

// New creates a new PDFError
func New(errorType ErrorType, message string) *PDFError {
	return &PDFError{
		Type:        errorType,
		Message:     message,
		Recoverable: errorType.IsRecoverable(),
		Timestamp:   time.Now(),
	}
}

// Newf creates a new PDFError with a formatted message
func Newf(errorType ErrorType, format string, args ...any) *PDFError {
	return New(errorType, fmt.Sprintf(format, args...))
}

// Wrap wraps err as a PDFError of the given type, keeping it as the cause
func Wrap(errorType ErrorType, message string, err error) *PDFError {
	e := New(errorType, message)
	e.Err = err
	if err != nil {
		e.Context = err.Error()
	}
	return e
}

// WithFile adds file path information to an existing PDFError
func (e *PDFError) WithFile(filePath string) *PDFError {
	e.FilePath = filePath
	return e
}

// WithPage adds page number information to an existing PDFError
func (e *PDFError) WithPage(pageNumber int) *PDFError {
	e.PageNumber = pageNumber
	return e
}

// Classify returns the ErrorType of err. Page specification errors from the
// resolver are recognised without being wrapped first.
func Classify(err error) ErrorType {
	if err == nil {
		return ErrorTypeUnknown
	}

	var pdfErr *PDFError
	if stderrors.As(err, &pdfErr) {
		return pdfErr.Type
	}

	var parseErr *pagerange.ParseError
	if stderrors.As(err, &parseErr) {
		return ErrorTypeInvalidPageSpec
	}

	var rangeErr *pagerange.RangeError
	if stderrors.As(err, &rangeErr) {
		return ErrorTypePageOutOfRange
	}

	return ErrorTypeUnknown
}

// Is reports whether err classifies as errorType
func Is(err error, errorType ErrorType) bool {
	return Classify(err) == errorType
}

// UserMessage returns the single message shown to the user for a failed
// operation. Invalid arguments carry their own message; unclassified errors
// get a generic one so internal details stay in the logs.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	errorType := Classify(err)
	if errorType == ErrorTypeInvalidArgument || errorType == ErrorTypeUnsupportedOperation {
		var pdfErr *PDFError
		if stderrors.As(err, &pdfErr) {
			return pdfErr.Message
		}
	}

	return userMessages[errorType]
}
