package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	pdferrors "github.com/a3tai/pdf-workdesk/internal/pdf/errors"
)

// errorResponse is the body of every failed request
type errorResponse struct {
	Error string              `json:"error"`
	Type  pdferrors.ErrorType `json:"type"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Warn("failed to write response")
	}
}

// writeError reports err once, with the status matching its type
func (s *Server) writeError(w http.ResponseWriter, err error) {
	errType := pdferrors.Classify(err)
	status := statusFor(errType)
	if status >= http.StatusInternalServerError {
		s.logger.WithError(err).Error("operation failed")
	}
	s.writeJSON(w, status, errorResponse{
		Error: pdferrors.UserMessage(err),
		Type:  errType,
	})
}

func statusFor(t pdferrors.ErrorType) int {
	switch t {
	case pdferrors.ErrorTypeInvalidPageSpec,
		pdferrors.ErrorTypePageOutOfRange,
		pdferrors.ErrorTypeInvalidArgument,
		pdferrors.ErrorTypeInvalidDocument,
		pdferrors.ErrorTypeUnsupportedOperation:
		return http.StatusBadRequest
	case pdferrors.ErrorTypePasswordRequired, pdferrors.ErrorTypeInvalidPassword:
		return http.StatusUnauthorized
	case pdferrors.ErrorTypeNotFound:
		return http.StatusNotFound
	case pdferrors.ErrorTypeFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case pdferrors.ErrorTypeFetchFailed:
		return http.StatusBadGateway
	case pdferrors.ErrorTypeLimitExceeded:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads an optional JSON body into v
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return pdferrors.Wrap(pdferrors.ErrorTypeInvalidArgument, "invalid JSON body", err)
	}
	return nil
}
