package server

import (
	"context"
	"net/http"

	"github.com/lmaotrigine/indieauth/token"
	"github.com/rs/zerolog"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyToken stores the validated bearer token
const ContextKeyToken ContextKey = "token"

// RequireToken is middleware that authenticates the request with a gateway
// token taken from the Authorization header or the private token cookie.
// Every failure is a 401.
func (s *Server) RequireToken() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			cookieValue, hasCookie := s.cookies.GetPrivate(r, tokenCookieName)
			raw, err := token.Extract(r.Header.Values("Authorization"), cookieValue, hasCookie)
			if err != nil {
				writeJSONError(w, "unauthorized", err.Error(), http.StatusUnauthorized)
				return
			}

			tok, err := s.validator.Validate(raw)
			if err != nil {
				zerolog.Ctx(r.Context()).Debug().Err(err).Msg("token rejected")
				writeJSONError(w, "unauthorized", "invalid token", http.StatusUnauthorized)
				return
			}

			if err := s.revocations.Check(r.Context(), tok); err != nil {
				zerolog.Ctx(r.Context()).Debug().Err(err).Str("jti", tok.Jti).Msg("token no longer valid")
				writeJSONError(w, "unauthorized", "invalid token", http.StatusUnauthorized)
				return
			}

			next(w, r.WithContext(context.WithValue(r.Context(), ContextKeyToken, tok)))
		}
	}
}

// TokenFromContext returns the token stored by RequireToken.
func TokenFromContext(ctx context.Context) (*token.Token, bool) {
	tok, ok := ctx.Value(ContextKeyToken).(*token.Token)
	return tok, ok
}
