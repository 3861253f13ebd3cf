package oauth2

// ProviderConfig holds the endpoints and client credentials of one upstream
// OAuth2 provider. It is loaded once at startup and never mutated.
type ProviderConfig struct {
	Name         string
	AuthURI      string
	TokenURI     string
	ClientID     string
	ClientSecret string
	// RedirectURI is optional; providers with a single registered callback
	// do not need it.
	RedirectURI string
}
