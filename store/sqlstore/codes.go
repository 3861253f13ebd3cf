package sqlstore

import (
	"context"
	"database/sql"

	"github.com/lmaotrigine/indieauth/indieauth"
)

const codeColumns = "code, client_id, redirect_uri, state, response_type, code_challenge, authorized"

// CodeRepo stores IndieAuth codes in indieauth_codes.
type CodeRepo struct {
	*DB
}

var _ indieauth.CodeRepo = (*CodeRepo)(nil)

func NewCodeRepo(db *DB) *CodeRepo {
	return &CodeRepo{DB: db}
}

func (r *CodeRepo) Insert(ctx context.Context, code *indieauth.AuthorizationCode) error {
	_, err := r.db.ExecContext(ctx, r.rebind(
		"INSERT INTO indieauth_codes ("+codeColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)"),
		code.Code, code.ClientID, code.RedirectURI, code.State, code.ResponseType, code.CodeChallenge, code.Authorized,
	)
	return handleError(err)
}

func (r *CodeRepo) Get(ctx context.Context, code string) (*indieauth.AuthorizationCode, error) {
	row := r.db.QueryRowContext(ctx, r.rebind(
		"SELECT "+codeColumns+" FROM indieauth_codes WHERE code = ?"), code)
	return scanCode(row)
}

func (r *CodeRepo) Authorize(ctx context.Context, code string) (*indieauth.AuthorizationCode, error) {
	row := r.db.QueryRowContext(ctx, r.rebind(
		"UPDATE indieauth_codes SET authorized = ? WHERE code = ? RETURNING "+codeColumns), true, code)
	return scanCode(row)
}

func (r *CodeRepo) ConsumeAuthorized(ctx context.Context, code, codeChallenge string) (*indieauth.AuthorizationCode, error) {
	row := r.db.QueryRowContext(ctx, r.rebind(
		"DELETE FROM indieauth_codes WHERE code = ? AND authorized = ? AND code_challenge = ? RETURNING "+codeColumns),
		code, true, codeChallenge)
	return scanCode(row)
}

func scanCode(row *sql.Row) (*indieauth.AuthorizationCode, error) {
	var c indieauth.AuthorizationCode
	if err := row.Scan(&c.Code, &c.ClientID, &c.RedirectURI, &c.State, &c.ResponseType, &c.CodeChallenge, &c.Authorized); err != nil {
		return nil, handleError(err)
	}
	return &c, nil
}
