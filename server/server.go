package server

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/lmaotrigine/indieauth/indieauth"
	"github.com/lmaotrigine/indieauth/internal/config"
	"github.com/lmaotrigine/indieauth/internal/cookies"
	"github.com/lmaotrigine/indieauth/oauth2"
	"github.com/lmaotrigine/indieauth/token"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Completer turns a provider grant into a gateway token.
type Completer interface {
	Complete(ctx context.Context, grant *oauth2.TokenResponse) (string, error)
}

// Login binds an upstream provider to the scopes it is asked for and the
// service that finishes the login.
type Login struct {
	Provider  *oauth2.Provider
	Scopes    []string
	Completer Completer
}

// Dependencies are the services the HTTP layer is built on.
type Dependencies struct {
	IndieAuth   *indieauth.Service
	Issuer      *token.Issuer
	Validator   *token.Validator
	Revocations *token.RevocationChecker
	Cookies     *cookies.Jar
	Logins      []Login
}

type Server struct {
	env         string
	mux         *http.ServeMux
	routes      []string
	config      config.Config
	indieAuth   *indieauth.Service
	issuer      *token.Issuer
	validator   *token.Validator
	revocations *token.RevocationChecker
	cookies     *cookies.Jar
	logins      map[string]Login
	authz       *template.Template
}

func New(config config.Config, deps Dependencies) (*Server, error) {
	switch {
	case deps.IndieAuth == nil:
		return nil, errors.New("[Server New] indieauth service is required")
	case deps.Issuer == nil, deps.Validator == nil, deps.Revocations == nil:
		return nil, errors.New("[Server New] token issuer, validator and revocation checker are required")
	case deps.Cookies == nil:
		return nil, errors.New("[Server New] cookie jar is required")
	}

	authz, err := ParseTemplate("authz.html")
	if err != nil {
		return nil, errors.Wrap(err, "[Server New] failed to parse approval page")
	}

	s := &Server{
		env:         config.GetEnv(),
		mux:         http.NewServeMux(),
		config:      config,
		indieAuth:   deps.IndieAuth,
		issuer:      deps.Issuer,
		validator:   deps.Validator,
		revocations: deps.Revocations,
		cookies:     deps.Cookies,
		logins:      make(map[string]Login, len(deps.Logins)),
		authz:       authz,
	}
	for _, login := range deps.Logins {
		if login.Provider == nil || login.Completer == nil {
			return nil, errors.New("[Server New] login needs a provider and a completer")
		}
		s.logins[login.Provider.Name()] = login
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != config.DevEnv {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Info().Msgf("[%-19s] %s", displayMethod, path)
}
