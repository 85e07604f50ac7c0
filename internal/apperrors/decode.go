package apperrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// DecodeJSON decodes the request body into dst. On failure it writes a 400,
// or a 413 when the body exceeded the configured limit, and returns false.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			WritePayloadTooLarge(w, r, fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxErr.Limit))
			return false
		}

		var classified *Error
		if errors.As(err, &classified) {
			WriteBadRequest(w, r, classified.Message())
			return false
		}

		WriteBadRequest(w, r, "Invalid request body")
		return false
	}
	return true
}
