package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"incident-pipeline/internal/contextutil"
	"incident-pipeline/internal/service"
)

// Result is the outcome of one handled request: a status with a body to
// encode, or an error to be mapped onto a status.
type Result struct {
	Status int
	Body   any
	Err    error
}

// OK returns a 200 result.
func OK(body any) Result {
	return Result{Status: http.StatusOK, Body: body}
}

// Created returns a 201 result.
func Created(body any) Result {
	return Result{Status: http.StatusCreated, Body: body}
}

// Fail returns an error result.
func Fail(err error) Result {
	return Result{Err: err}
}

// HandlerFunc handles a request and reports what to answer.
type HandlerFunc func(r *http.Request) Result

// Route binds a method and path to a handler.
type Route struct {
	Method string
	Path   string
	Handle HandlerFunc
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Serve adapts h to net/http, writing its result as JSON.
func Serve(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := h(r)
		if res.Err != nil {
			handleServiceError(w, r, res.Err)
			return
		}
		writeJSON(w, r, res.Status, res.Body)
	}
}

// handleServiceError maps service errors to HTTP status codes and responses.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		logger.WarnContext(ctx, "invalid request", "error", err)
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("Validation error: %s %s", validationErr.Field, validationErr.Message))
	case errors.Is(err, service.ErrInvalidInput):
		logger.WarnContext(ctx, "invalid request", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid input")
	case errors.Is(err, service.ErrNotFound):
		logger.InfoContext(ctx, "resource not found", "error", err)
		WriteError(w, http.StatusNotFound, "Resource not found")
	case errors.Is(err, service.ErrMethodNotAllowed):
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	default:
		logger.ErrorContext(ctx, "service error", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	buf, err := encode(body)
	if err != nil {
		ctx := r.Context()
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to encode response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf)
}

// WriteError writes an error response.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	buf, _ := encode(ErrorResponse{Error: message})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(buf)
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
