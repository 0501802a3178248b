package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/BrandonDHaskell/campusgate/internal/campus/service"
	"github.com/BrandonDHaskell/campusgate/internal/campus/types"
)

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, types.ErrorResponse{Error: message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// statusFor maps service errors to an HTTP status and a message safe to
// return. ok is false for unexpected errors, which callers log and answer
// with their own generic 500 message.
func statusFor(err error) (status int, msg string, ok bool) {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, err.Error(), true
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, err.Error(), true
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error(), true
	case errors.Is(err, service.ErrDuplicateAccess),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrCodeTaken):
		return http.StatusConflict, err.Error(), true
	}
	return http.StatusInternalServerError, "", false
}
