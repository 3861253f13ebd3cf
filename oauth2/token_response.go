package oauth2

// TokenResponse represents the response from an upstream OAuth2 token request
// as defined in RFC 6749. Optional fields are nil when the provider omits them.
type TokenResponse struct {
	// AccessToken is the token used to call the provider's APIs.
	// Usage: Include in Authorization header: "Bearer <access_token>"
	AccessToken string `json:"access_token"`

	// TokenType indicates how to use the access token, normally "bearer".
	TokenType string `json:"token_type"`

	// ExpiresIn is the lifetime in seconds of the access token.
	ExpiresIn *int64 `json:"expires_in,omitempty"`

	// RefreshToken is used with grant_type=refresh_token to obtain a new access token.
	RefreshToken *string `json:"refresh_token,omitempty"`

	// CreatedAt is a unix timestamp some providers (GitLab) add to the response.
	CreatedAt *int64 `json:"created_at,omitempty"`

	// Scope indicates the access token's granted permissions, space separated.
	// When the provider omits it the scope from the callback query is used.
	Scope *string `json:"scope,omitempty"`
}
