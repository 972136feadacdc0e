// Package http provides the JSON API server and its handlers.
//
// This file implements request body decoding shared by the handlers.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"finance/internal/core"
)

// maxBodyBytes caps every request body.
const maxBodyBytes = 1 << 20

var (
	errBodyRequired = &core.ValidationError{Message: "request body is required"}
	errInvalidJSON  = &core.ValidationError{Message: "invalid JSON body"}
	errBodyTooLarge = &core.ValidationError{Message: "request body too large"}
)

// decodeJSONBody reads a JSON object from r into dst. An absent body, a
// JSON null and an empty object are all reported as a missing body.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errBodyTooLarge
		}
		return errInvalidJSON
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return errBodyRequired
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return errInvalidJSON
	}
	if len(fields) == 0 {
		return errBodyRequired
	}

	if err := json.Unmarshal(body, dst); err != nil {
		var validation *core.ValidationError
		if errors.As(err, &validation) {
			return validation
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return &core.ValidationError{Field: typeErr.Field, Message: "invalid value for field " + typeErr.Field}
		}
		return errInvalidJSON
	}
	return nil
}
