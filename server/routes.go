package server

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
)

func (s *Server) initRoutes() {
	// IndieAuth
	s.RegisterRouteHandler("GET "+RouteAuth, ChainMiddleware(s.IssueCode(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteAuthAuthorized, ChainMiddleware(s.AuthorizeCode(), s.HTMLMiddleWare(s.RequireToken())...))
	s.RegisterRouteHandler("POST "+RouteAuth, ChainMiddleware(s.ExchangeCode(), s.APIMiddleware()...))

	// Tokens
	s.RegisterRouteHandler("GET "+RouteTokenInfo, ChainMiddleware(s.TokenInfo(), s.APIMiddleware(s.RequireToken())...))
	s.RegisterRouteHandler("POST "+RouteTokenMint, ChainMiddleware(s.MintToken(), s.APIMiddleware(s.RequireToken())...))
	s.RegisterRouteHandler("POST "+RouteTokenRevoke, ChainMiddleware(s.RevokeToken(), s.APIMiddleware(s.RequireToken())...))

	// Federated login
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginRedirect(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteLoginCallback, ChainMiddleware(s.LoginCallback(), s.HTMLMiddleWare()...))

	// Well-known text files
	s.RegisterRouteHandler("GET "+RouteBotInfo, ChainMiddleware(s.serveFileHandler("botinfo.txt"), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteRobots, ChainMiddleware(s.serveFileHandler("robots.txt"), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteSecurity, ChainMiddleware(s.serveFileHandler("security.txt"), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteWellKnownSecurity, ChainMiddleware(s.serveFileHandler("security.txt"), s.HTMLMiddleWare()...))

	s.RegisterRouteFunc("GET "+RouteHealth, s.Health())

	// CORS preflight
	for _, route := range []string{RouteAuth, RouteTokenInfo, RouteTokenMint, RouteTokenRevoke} {
		s.RegisterRouteHandler("OPTIONS "+route, ChainMiddleware(s.preflight(), s.APIMiddleware()...))
	}
}

func (s *Server) serveFileHandler(fileName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := StreamFile(w, r, fileName); err != nil {
			logError(r.Method, r.URL.Path, err.Error())
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
		}
	}
}

// preflight answers OPTIONS requests that carry no Origin; CorsMiddleware
// handles the rest.
func (s *Server) preflight() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentTypeText)
		_, _ = w.Write([]byte("ok"))
	}
}

func logError(method, path, error string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	errorString := Red + error + ResetColor
	log.Error().Msgf("[%-19s] %s %s", displayMethod, path, errorString)
}
