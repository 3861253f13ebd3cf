package indieauth

import "context"

// Response types accepted on the authorization endpoint.
const (
	ResponseTypeCode = "code"
	ResponseTypeID   = "id"
)

// AuthorizationCode is an in-flight IndieAuth grant.
type AuthorizationCode struct {
	Code          string `json:"code"`
	ClientID      string `json:"client_id"`
	RedirectURI   string `json:"redirect_uri"`
	State         string `json:"state"`
	ResponseType  string `json:"response_type"`
	CodeChallenge string `json:"code_challenge"`
	Authorized    bool   `json:"authorized"`
}

// CodeRepo persists authorization codes. Every method reports a missing row
// as errors.ErrNotFound from the internal errors package.
type CodeRepo interface {
	Insert(ctx context.Context, code *AuthorizationCode) error
	Get(ctx context.Context, code string) (*AuthorizationCode, error)

	// Authorize flips the authorized flag in a single conditional update and
	// returns the updated row.
	Authorize(ctx context.Context, code string) (*AuthorizationCode, error)

	// ConsumeAuthorized deletes the row only if it is authorized and carries
	// codeChallenge, returning what was deleted. Concurrent callers on the
	// same code see at most one success.
	ConsumeAuthorized(ctx context.Context, code, codeChallenge string) (*AuthorizationCode, error)
}
