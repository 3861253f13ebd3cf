package sqlstore

import (
	"context"

	"github.com/lmaotrigine/indieauth/federation"
	apperrors "github.com/lmaotrigine/indieauth/internal/errors"
)

// IdentityRepo stores federated GitLab grants in gitlab_tokens.
type IdentityRepo struct {
	*DB
}

var _ federation.Repo = (*IdentityRepo)(nil)

func NewIdentityRepo(db *DB) *IdentityRepo {
	return &IdentityRepo{DB: db}
}

func (r *IdentityRepo) Insert(ctx context.Context, identity *federation.Identity) error {
	_, err := r.db.ExecContext(ctx, r.rebind(
		"INSERT INTO gitlab_tokens (id, user_id, access_token, refresh_token) VALUES (?, ?, ?, ?)"),
		identity.ID, identity.UserID, identity.AccessToken, identity.RefreshToken,
	)
	return handleError(err)
}

func (r *IdentityRepo) Get(ctx context.Context, id string) (*federation.Identity, error) {
	var identity federation.Identity
	err := r.db.QueryRowContext(ctx, r.rebind(
		"SELECT id, user_id, access_token, refresh_token FROM gitlab_tokens WHERE id = ?"), id,
	).Scan(&identity.ID, &identity.UserID, &identity.AccessToken, &identity.RefreshToken)
	if err != nil {
		return nil, handleError(err)
	}
	return &identity, nil
}

func (r *IdentityRepo) UpdateTokens(ctx context.Context, id, accessToken, refreshToken string) error {
	res, err := r.db.ExecContext(ctx, r.rebind(
		"UPDATE gitlab_tokens SET access_token = ?, refresh_token = ? WHERE id = ?"),
		accessToken, refreshToken, id,
	)
	if err != nil {
		return handleError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return handleError(err)
	}
	if n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
