package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"StravaFriendsDashboard/internal/domain"
)

type errorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, errorEnvelope{Error: apiError{Code: code, Message: message}})
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteDomainError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteJSON(w, http.StatusBadRequest, errorEnvelope{Error: apiError{
			Code:    "validation_error",
			Message: "invalid request",
			Fields:  verr.Fields,
		}})
	case errors.Is(err, domain.ErrValidation):
		WriteError(w, http.StatusBadRequest, "validation_error", "invalid request")
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrAuthentication):
		WriteError(w, http.StatusUnauthorized, "not_authenticated", "not authenticated")
	case errors.Is(err, domain.ErrRemoteUnavailable):
		WriteError(w, http.StatusBadGateway, "remote_unavailable", "strava is unavailable")
	case errors.Is(err, domain.ErrFriendExists):
		WriteError(w, http.StatusConflict, "friend_exists", "friend already added")
	case errors.Is(err, domain.ErrRateLimited):
		WriteError(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
	case errors.Is(err, domain.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", "not found")
	case errors.Is(err, domain.ErrStore):
		WriteError(w, http.StatusInternalServerError, "store_failure", "storage failure")
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
