package oauth2

// ResponseType represents the OAuth 2.0 response type.
type ResponseType string

const (
	// CodeResponseType indicates the authorization code flow. It is the only
	// response type requested from upstream providers.
	CodeResponseType ResponseType = "code"
)

// GrantType represents the OAuth 2.0 grant type used at the token endpoint.
type GrantType string

const (
	// AuthorizationCodeGrant exchanges an authorization code for tokens.
	// Token request includes: code, redirect_uri (if configured), client_id, client_secret
	AuthorizationCodeGrant GrantType = "authorization_code"

	// RefreshTokenGrant exchanges a refresh token for new tokens.
	// Token request includes: refresh_token, client_id, client_secret
	RefreshTokenGrant GrantType = "refresh_token"
)

// TokenRequest is the credential sent to a provider's token endpoint: either
// an authorization code or a refresh token.
type TokenRequest struct {
	Grant GrantType
	Value string
}

// AuthorizationCode builds a TokenRequest for the authorization_code grant.
func AuthorizationCode(code string) TokenRequest {
	return TokenRequest{Grant: AuthorizationCodeGrant, Value: code}
}

// RefreshToken builds a TokenRequest for the refresh_token grant.
func RefreshToken(token string) TokenRequest {
	return TokenRequest{Grant: RefreshTokenGrant, Value: token}
}

// Param is one extra query parameter for an authorization URL. Extras are a
// slice, not a map, because their order is kept.
type Param struct {
	Name  string
	Value string
}
