package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/scoreboard/internal/api/apierr"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// decodeJSON reads a JSON body into v. Numbers are kept as json.Number so
// loosely typed fields can be coerced later.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return NewInvalidRequestError("request body too large")
		}
		return NewInvalidRequestError("invalid request body")
	}
	return nil
}
