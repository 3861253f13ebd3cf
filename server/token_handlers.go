package server

import (
	"net/http"

	"github.com/rs/zerolog"
)

// TokenInfo echoes the caller's validated token payload.
func (s *Server) TokenInfo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok, ok := TokenFromContext(r.Context())
		if !ok {
			writeJSONError(w, "unauthorized", "no token", http.StatusUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, tok)
	}
}

// MintToken issues a new token for any sub and aud to an authenticated caller.
func (s *Server) MintToken() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := TokenFromContext(r.Context())
		if !ok {
			writeJSONError(w, "unauthorized", "no token", http.StatusUnauthorized)
			return
		}
		params, ok := requireParams(w, r.URL.Query(), "aud", "sub")
		if !ok {
			return
		}

		signed, tok, err := s.issuer.Mint(r.Context(), params["sub"], params["aud"])
		if err != nil {
			writeError(w, r, err)
			return
		}

		zerolog.Ctx(r.Context()).Info().
			Str("caller", caller.Sub).
			Str("jti", tok.Jti).
			Str("sub", tok.Sub).
			Str("aud", tok.Aud).
			Msg("token minted")
		w.Header().Set("Content-Type", contentTypeText)
		_, _ = w.Write([]byte(signed))
	}
}

// RevokeToken invalidates one of the caller's own tokens by jti.
func (s *Server) RevokeToken() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := TokenFromContext(r.Context())
		if !ok {
			writeJSONError(w, "unauthorized", "no token", http.StatusUnauthorized)
			return
		}
		params, ok := requireParams(w, r.URL.Query(), "jti")
		if !ok {
			return
		}

		if err := s.revocations.Revoke(r.Context(), caller, params["jti"]); err != nil {
			writeError(w, r, err)
			return
		}

		zerolog.Ctx(r.Context()).Info().Str("jti", params["jti"]).Str("caller", caller.Sub).Msg("token revoked")
		w.WriteHeader(http.StatusNoContent)
	}
}
