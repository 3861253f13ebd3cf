package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// IndieAuth Routes
	RouteAuth           = "/auth"
	RouteAuthAuthorized = "/auth/authorized"

	// Token Routes
	RouteTokenInfo   = "/token/info"
	RouteTokenMint   = "/token/mint"
	RouteTokenRevoke = "/token/revoke"

	// Federated Login Routes
	RouteLogin         = "/login/{provider}"
	RouteLoginCallback = "/login/{provider}/callback"

	// Well-known Routes
	RouteBotInfo           = "/.well-known/botinfo"
	RouteRobots            = "/robots.txt"
	RouteSecurity          = "/security.txt"
	RouteWellKnownSecurity = "/.well-known/security.txt"

	RouteHealth = "/healthz"
)

// tokenCookieName holds the private token cookie set by federated login.
const tokenCookieName = "token"
