package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/zatekoja/dealsearch/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/dealsearch/pkg/errors"
)

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError maps an AppError kind to a status code. Anything that is
// not the caller's fault is reported with the generic message only.
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error, generic string) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case apperrors.ErrorTypeValidation:
			respondWithError(w, http.StatusBadRequest, appErr.Message)
			return
		case apperrors.ErrorTypeNotFound:
			respondWithError(w, http.StatusNotFound, appErr.Message)
			return
		}
	}

	observability.LoggerFromContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg(generic)
	respondWithError(w, http.StatusInternalServerError, generic)
}
