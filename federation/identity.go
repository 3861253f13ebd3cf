package federation

import "context"

// Identity is the stored provider grant for a federated login.
type Identity struct {
	ID           string `json:"id"`
	UserID       int64  `json:"user_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Repo persists federated identities.
type Repo interface {
	Insert(ctx context.Context, identity *Identity) error
	Get(ctx context.Context, id string) (*Identity, error)
	UpdateTokens(ctx context.Context, id, accessToken, refreshToken string) error
}
