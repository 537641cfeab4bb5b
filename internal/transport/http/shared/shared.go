// Package shared holds the response and request plumbing every handler
// package uses, so error envelopes and validation behave identically across
// verticals.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	dErrors "github.com/piipapoy/pedulikucing-app-sub000/pkg/domain-errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrorResponse is the uniform JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteJSON writes a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// WriteError translates a domain error into the JSON error envelope. Unknown
// errors collapse to a 500 without leaking internals.
func WriteError(w http.ResponseWriter, err error) {
	var de *dErrors.Error
	if !errors.As(err, &de) {
		WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   string(dErrors.CodeInternal),
			Message: "internal error",
		})
		return
	}
	WriteJSON(w, dErrors.ToHTTPStatus(de.Code), ErrorResponse{
		Error:   string(de.Code),
		Message: de.Message,
	})
}

// DecodeAndValidate parses the JSON body into dst and runs struct validation.
// Both failure modes surface as coded domain errors for WriteError.
func DecodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "request validation failed")
	}
	return nil
}
