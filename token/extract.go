package token

import (
	"strings"

	apperrors "github.com/lmaotrigine/indieauth/internal/errors"
)

// Extract picks the raw token from a request's Authorization header values
// or, when there are none, the token cookie. Several header values are
// ambiguous and rejected outright.
func Extract(headerValues []string, cookieValue string, hasCookie bool) (string, error) {
	switch len(headerValues) {
	case 0:
		if !hasCookie || cookieValue == "" {
			return "", apperrors.ErrNoTokenInRequest
		}
		return cookieValue, nil
	case 1:
		raw := strings.TrimSpace(headerValues[0])
		if len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
			raw = strings.TrimSpace(raw[7:])
		}
		if raw == "" {
			return "", apperrors.ErrNoTokenInRequest
		}
		return raw, nil
	default:
		return "", apperrors.ErrNoTokenInRequest
	}
}
