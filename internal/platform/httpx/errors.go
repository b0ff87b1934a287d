// Package httpx provides HTTP response utilities.
package httpx

import (
	"context"
	"errors"
	"net/http"
)

// Sentinel errors for domain layer.
var (
	ErrNotFound   = errors.New("resource not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
)

// Problemer is implemented by domain errors that know their HTTP representation.
type Problemer interface {
	error
	ProblemStatus() int
	ProblemTitle() string
}

// Extender lets a Problemer attach RFC7807 extension members.
type Extender interface {
	ProblemExtensions() map[string]any
}

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	var p Problemer
	if errors.As(err, &p) {
		var ext map[string]any
		var e Extender
		if errors.As(err, &e) {
			ext = e.ProblemExtensions()
		}
		status := p.ProblemStatus()
		detail := err.Error()
		if status >= http.StatusInternalServerError {
			detail = ""
		}
		ProblemWith(w, status, p.ProblemTitle(), detail, ext)
		return
	}
	switch {
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrConflict):
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		Problem(w, http.StatusGatewayTimeout, "Timeout", "")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
