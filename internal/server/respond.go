package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/unixblacksteel/mindmap/pkg/errors"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code      errors.Code `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

// respondError writes err with the status its code maps to. Internal causes
// are logged, not returned.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	msg := errors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "request_id", RequestID(r.Context()), "err", err)
		if status == http.StatusInternalServerError {
			msg = "internal error"
		}
	}
	s.respondJSON(w, status, errorBody{Error: errorDetail{
		Code:      code,
		Message:   msg,
		RequestID: RequestID(r.Context()),
	}})
}

// statusFor maps an error to an HTTP status.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case stderrors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}

	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidTree, errors.ErrCodeInvalidMode:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeBusy, errors.ErrCodeExportInProgress:
		return http.StatusConflict
	case errors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	case errors.ErrCodeGeneration, errors.ErrCodeEmptyResponse,
		errors.ErrCodeNetwork, errors.ErrCodeUnauthorized:
		return http.StatusBadGateway
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeInvalidConfig, errors.ErrCodeSurfaceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
