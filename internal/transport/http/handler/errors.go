package handler

import (
	"errors"
	"net/http"

	"github.com/go-identity-api/internal/domain"
)

// httpError maps service-layer sentinel errors to HTTP status codes.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrBadRequest),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrInvalidCode),
		errors.Is(err, domain.ErrCodeExpired):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
