package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"specforge/internal/config"
	"specforge/internal/domain"
)

// ParseJSON decodes a JSON request body into dest. Malformed or oversized
// bodies and unknown fields are reported as domain.ErrValidation.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxRequestBodyBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("%w: request body exceeds %d bytes", domain.ErrValidation, maxErr.Limit)
		}
		return fmt.Errorf("%w: invalid JSON: %v", domain.ErrValidation, err)
	}
	if decoder.More() {
		return fmt.Errorf("%w: invalid JSON: trailing data after object", domain.ErrValidation)
	}
	return nil
}

// RequireQuery returns a query parameter or a validation error when absent
func RequireQuery(r *http.Request, name string) (string, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return "", fmt.Errorf("%w: query parameter %q is required", domain.ErrValidation, name)
	}
	return v, nil
}
