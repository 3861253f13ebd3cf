package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common error types for the gateway
var (
	// Lookup errors
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")

	// Token errors
	ErrNoTokenInRequest = errors.New("no paseto in request")
	ErrTokenValidation  = errors.New("paseto validation error")
	ErrTokenCreation    = errors.New("paseto creation error")
	ErrTokenRevoked     = errors.New("token revoked")
	ErrMissingClaim     = errors.New("token subject and audience are required")

	// Upstream provider errors
	ErrExchangeFailure = errors.New("failed to exchange token")
	ErrUserNotAllowed  = errors.New("I'm sorry Dave, I'm afraid I can't do that.")

	// General errors
	ErrPersistence = errors.New("internal database error")
	ErrInternal    = errors.New("internal error")
)

// ResponseTypeError is returned when an IndieAuth request asks for anything but "code" or "id".
type ResponseTypeError struct {
	ResponseType string
}

func (e *ResponseTypeError) Error() string {
	return fmt.Sprintf("wrong indieauth response type: %s", e.ResponseType)
}

// ChallengeMethodError is returned for any PKCE method other than S256.
type ChallengeMethodError struct {
	Method string
}

func (e *ChallengeMethodError) Error() string {
	return fmt.Sprintf("code challenge method %s not supported. Must be S256", e.Method)
}

// InvalidCodeVerifierError is returned when a verifier does not hash to the stored challenge.
type InvalidCodeVerifierError struct {
	Verifier string
}

func (e *InvalidCodeVerifierError) Error() string {
	return fmt.Sprintf("invalid code verifier: %s", e.Verifier)
}

// InvalidURIError names a provider URI that could not be parsed.
type InvalidURIError struct {
	URI string
}

func (e *InvalidURIError) Error() string {
	return fmt.Sprintf("invalid URI: '%s'", e.URI)
}

// ExchangeStatusError carries the status of a rejected token exchange.
type ExchangeStatusError struct {
	Status int
}

func (e *ExchangeStatusError) Error() string {
	return fmt.Sprintf("token exchange returned non-success status code: %d", e.Status)
}

// ProviderError is a rejection raised while handling an upstream provider round trip.
type ProviderError struct {
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("OAuth2 error: %s", e.Message)
}

// HTTPStatus maps an error to the status code returned to the caller.
func HTTPStatus(err error) int {
	var (
		responseType    *ResponseTypeError
		challengeMethod *ChallengeMethodError
		verifier        *InvalidCodeVerifierError
		provider        *ProviderError
		exchangeStatus  *ExchangeStatusError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &responseType), errors.As(err, &challengeMethod), errors.As(err, &verifier), errors.Is(err, ErrMissingClaim):
		return http.StatusBadRequest
	case errors.Is(err, ErrNoTokenInRequest), errors.Is(err, ErrTokenValidation), errors.Is(err, ErrTokenRevoked):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUserNotAllowed):
		return http.StatusForbidden
	case errors.As(err, &provider), errors.As(err, &exchangeStatus), errors.Is(err, ErrExchangeFailure):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
