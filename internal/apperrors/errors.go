package apperrors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
)

// ErrorResponse wraps every failed request: {"error": {...}}.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

// SuccessResponse wraps every successful request: {"request_id", "data"}.
type SuccessResponse struct {
	RequestID string      `json:"request_id"`
	Data      interface{} `json:"data"`
}

// kindStatuses maps each error kind to the status and envelope code a
// client sees for it. Order matters only for errors joining several kinds.
var kindStatuses = []struct {
	kind   error
	status int
	code   string
}{
	{ErrBadRequest, http.StatusBadRequest, "bad_request"},
	{ErrUnauthenticated, http.StatusUnauthorized, "unauthorized"},
	{ErrForbidden, http.StatusForbidden, "forbidden"},
	{ErrNotFound, http.StatusNotFound, "not_found"},
	{ErrConflict, http.StatusConflict, "conflict"},
}

// StatusFor maps err to its HTTP status and envelope code. Unclassified
// errors map to 500.
func StatusFor(err error) (int, string) {
	for _, ks := range kindStatuses {
		if errors.Is(err, ks.kind) {
			return ks.status, ks.code
		}
	}
	return http.StatusInternalServerError, "internal_error"
}

func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func WriteError(w http.ResponseWriter, r *http.Request, statusCode int, code, message string) {
	writeJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{Code: code, Message: message, RequestID: GetRequestID(r.Context())},
	})
}

func WriteSuccess(w http.ResponseWriter, r *http.Request, statusCode int, data interface{}) {
	writeJSON(w, statusCode, SuccessResponse{RequestID: GetRequestID(r.Context()), Data: data})
}

// WriteServiceError answers with the status of err's kind and its message.
// Unclassified errors are logged once here and answered with
// fallbackMessage so internals never reach the client.
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error, fallbackMessage string) {
	status, code := StatusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("request_id", GetRequestID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg(fallbackMessage)
		WriteInternalError(w, r, fallbackMessage)
		return
	}

	message := err.Error()
	var appErr *Error
	if errors.As(err, &appErr) {
		message = appErr.Message()
	}
	WriteError(w, r, status, code, message)
}

func writeKind(w http.ResponseWriter, r *http.Request, kind error, message string) {
	status, code := StatusFor(kind)
	WriteError(w, r, status, code, message)
}

// WriteBadRequest is for rejections made in handlers before a service runs,
// such as malformed path parameters.
func WriteBadRequest(w http.ResponseWriter, r *http.Request, message string) {
	writeKind(w, r, ErrBadRequest, message)
}

func WriteUnauthorized(w http.ResponseWriter, r *http.Request, message string) {
	writeKind(w, r, ErrUnauthenticated, message)
}

func WritePayloadTooLarge(w http.ResponseWriter, r *http.Request, message string) {
	WriteError(w, r, http.StatusRequestEntityTooLarge, "payload_too_large", message)
}

func WriteServiceUnavailable(w http.ResponseWriter, r *http.Request, message string) {
	WriteError(w, r, http.StatusServiceUnavailable, "service_unavailable", message)
}

func WriteInternalError(w http.ResponseWriter, r *http.Request, message string) {
	WriteError(w, r, http.StatusInternalServerError, "internal_error", message)
}
