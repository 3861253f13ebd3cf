package server

import (
	"net/http"

	"github.com/rs/zerolog"
)

func (s *Server) login(w http.ResponseWriter, r *http.Request) (Login, bool) {
	login, ok := s.logins[r.PathValue("provider")]
	if !ok {
		writeJSONError(w, "not_found", "unknown provider", http.StatusNotFound)
	}
	return login, ok
}

// LoginRedirect sends the browser to the named provider's consent page.
func (s *Server) LoginRedirect() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		login, ok := s.login(w, r)
		if !ok {
			return
		}
		if err := login.Provider.Redirect(w, r, login.Scopes); err != nil {
			writeError(w, r, err)
		}
	}
}

// LoginCallback finishes a federated login: the provider grant is turned into
// a gateway token, stored in the private token cookie and returned as text.
func (s *Server) LoginCallback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		login, ok := s.login(w, r)
		if !ok {
			return
		}

		if errParam := r.URL.Query().Get("error"); errParam != "" {
			writeJSONError(w, "access_denied", "Authorization failed: "+errParam, http.StatusBadRequest)
			return
		}

		grant, err := login.Provider.Callback(w, r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		signed, err := login.Completer.Complete(r.Context(), grant)
		if err != nil {
			writeError(w, r, err)
			return
		}

		if err := s.cookies.SetPrivate(w, &http.Cookie{Name: tokenCookieName, Value: signed, Path: "/"}); err != nil {
			writeError(w, r, err)
			return
		}

		zerolog.Ctx(r.Context()).Info().Str("provider", login.Provider.Name()).Msg("federated login complete")
		w.Header().Set("Content-Type", contentTypeText)
		_, _ = w.Write([]byte(signed))
	}
}
