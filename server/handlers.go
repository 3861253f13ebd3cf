package server

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/lmaotrigine/indieauth/internal/errors"
	"github.com/rs/zerolog"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeJSON = "application/json; charset=utf-8"
	contentTypeText = "text/plain; charset=utf-8"
)

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	writeJSON(w, statusCode, map[string]string{
		"error":             errorCode,
		"error_description": description,
	})
}

// writeError maps err to its status code. Server side failures are logged and
// their detail withheld from the caller.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeJSONError(w, "server_error", http.StatusText(status), status)
		return
	}

	zerolog.Ctx(r.Context()).Debug().Err(err).Str("path", r.URL.Path).Msg("request rejected")
	description := err.Error()
	if status == http.StatusNotFound {
		description = apperrors.ErrNotFound.Error()
	}
	writeJSONError(w, errorCode(status), description, status)
}

func errorCode(status int) string {
	switch status {
	case http.StatusNotFound:
		return "not_found"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "access_denied"
	default:
		return "invalid_request"
	}
}
