// Package http provides the JSON API server and its handlers.
//
// This file implements the builder used for every JSON response and the
// mapping from domain errors to status codes.

package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"finance/internal/core"
	applog "finance/internal/log"
)

// JSONResponseBuilder provides a fluent API for writing JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       any
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json")

	payload, err := json.Marshal(b.body)
	if err != nil {
		slog.Error("Failed to encode response body", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.WriteHeader(b.statusCode)
	_, _ = w.Write(payload)
	_, _ = w.Write([]byte("\n"))
}

type errorBody struct {
	Error string `json:"error"`
}

type messageBody struct {
	Message string `json:"message"`
}

// ErrorResponse creates a standard {"error": message} response.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Body(errorBody{Error: message})
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// InternalServerError creates a 500 response. Details stay in the logs.
func InternalServerError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, "internal server error")
}

// MessageResponse creates a 200 {"message": message} response.
func MessageResponse(message string) *JSONResponseBuilder {
	return NewJSONResponse().Body(messageBody{Message: message})
}

// errorFor maps a service error onto a response. Unknown errors are logged
// and reported as 500.
func errorFor(r *http.Request, op string, err error) *JSONResponseBuilder {
	var (
		validation *core.ValidationError
		notFound   *core.NotFoundError
		auth       *core.AuthError
	)
	ctx := r.Context()
	switch {
	case errors.As(err, &validation):
		logRejected(r, op, applog.ErrorTypeValidation, err)
		return BadRequestError(validation.Error())
	case errors.As(err, &auth):
		logRejected(r, op, applog.ErrorTypeAuth, err)
		return BadRequestError(auth.Error())
	case errors.As(err, &notFound):
		logRejected(r, op, applog.ErrorTypeNotFound, err)
		return NotFoundError(notFound.Error())
	}

	fields := applog.NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "", "").
		WithErrorType(applog.ErrorTypeInternal)
	applog.NewStructuredLogger(applog.FromContext(ctx)).
		LogError(ctx, "Request failed", err, applog.ComponentHTTP, op, fields)
	return InternalServerError()
}

// logRejected records a client error at debug level.
func logRejected(r *http.Request, op, errorType string, err error) {
	applog.FromContext(r.Context()).DebugContext(r.Context(), "Request rejected",
		applog.FieldOperation, op,
		applog.FieldErrorType, errorType,
		applog.FieldError, err.Error())
}
