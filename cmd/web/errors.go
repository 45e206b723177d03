package main

import (
	"errors"
	"net/http"

	"github.com/AdamBeresnev/doubles-bracket/internal/httputil"
	"github.com/AdamBeresnev/doubles-bracket/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// errorStatus maps service errors onto HTTP status codes. Order matters: a
// forbidden or invalid request is also a declined one.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbiddenOperation):
		return http.StatusForbidden
	case errors.Is(err, service.ErrValidationFailed):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrDeclined):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// serviceErrorJSON answers an API call that failed in the service layer.
func serviceErrorJSON(w http.ResponseWriter, msg string, err error) {
	status := errorStatus(err)
	if status < http.StatusInternalServerError {
		msg = err.Error()
	}
	httputil.ErrorJSON(w, status, msg, err)
}

// serviceError answers a page or htmx request that failed in the service layer.
func serviceError(w http.ResponseWriter, msg string, err error) {
	switch errorStatus(err) {
	case http.StatusNotFound:
		httputil.NotFound(w, err.Error(), err)
	case http.StatusForbidden:
		httputil.Forbidden(w, err.Error(), err)
	case http.StatusBadRequest:
		httputil.BadRequest(w, err.Error(), err)
	case http.StatusConflict:
		httputil.Conflict(w, err.Error(), err)
	default:
		httputil.InternalServerError(w, msg, err)
	}
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}
