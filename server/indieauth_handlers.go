package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/lmaotrigine/indieauth/indieauth"
	"github.com/rs/zerolog"
)

// requireParams returns the named values of params, writing a 400 naming the
// first absent one.
func requireParams(w http.ResponseWriter, params url.Values, names ...string) (map[string]string, bool) {
	values := make(map[string]string, len(names))
	for _, name := range names {
		if !params.Has(name) {
			writeJSONError(w, "invalid_request", "missing parameter "+name, http.StatusBadRequest)
			return nil, false
		}
		values[name] = params.Get(name)
	}
	return values, true
}

// IssueCode starts an IndieAuth request. Browsers get the approval page, any
// other client the approval as JSON.
func (s *Server) IssueCode() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, ok := requireParams(w, r.URL.Query(),
			"me", "client_id", "redirect_uri", "state", "response_type", "code_challenge", "code_challenge_method")
		if !ok {
			return
		}

		approval, err := s.indieAuth.Issue(r.Context(), indieauth.AuthRequest{
			Me:                  params["me"],
			ClientID:            params["client_id"],
			RedirectURI:         params["redirect_uri"],
			State:               params["state"],
			ResponseType:        params["response_type"],
			CodeChallenge:       params["code_challenge"],
			CodeChallengeMethod: params["code_challenge_method"],
		})
		if err != nil {
			writeError(w, r, err)
			return
		}

		if !strings.Contains(r.Header.Get("Accept"), "text/html") {
			writeJSON(w, http.StatusOK, approval)
			return
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		if err := s.authz.Execute(w, approval); err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to render approval page")
		}
	}
}

// AuthorizeCode approves a pending code and sends the owner back to the client.
func (s *Server) AuthorizeCode() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, ok := requireParams(w, r.URL.Query(), "code")
		if !ok {
			return
		}

		redirect, err := s.indieAuth.Authorize(r.Context(), params["code"])
		if err != nil {
			writeError(w, r, err)
			return
		}
		http.Redirect(w, r, redirect, http.StatusSeeOther)
	}
}

// ExchangeCode redeems an approved code. Parameters may come in the query
// string or a form body.
func (s *Server) ExchangeCode() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			writeJSONError(w, "invalid_request", "Failed to parse form data", http.StatusBadRequest)
			return
		}
		params, ok := requireParams(w, r.Form, "code", "redirect_uri", "client_id", "code_verifier")
		if !ok {
			return
		}

		me, err := s.indieAuth.Exchange(r.Context(), indieauth.ExchangeRequest{
			ClientID:     params["client_id"],
			RedirectURI:  params["redirect_uri"],
			Code:         params["code"],
			CodeVerifier: params["code_verifier"],
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, me)
	}
}
