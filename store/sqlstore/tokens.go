package sqlstore

import (
	"context"
	"database/sql"

	apperrors "github.com/lmaotrigine/indieauth/internal/errors"
	"github.com/lmaotrigine/indieauth/token"
)

// TokenRepo stores token audit records in tokens.
type TokenRepo struct {
	*DB
}

var _ token.Repo = (*TokenRepo)(nil)

func NewTokenRepo(db *DB) *TokenRepo {
	return &TokenRepo{DB: db}
}

func (r *TokenRepo) Insert(ctx context.Context, record *token.Record) error {
	_, err := r.db.ExecContext(ctx, r.rebind(
		"INSERT INTO tokens (id, sub, aud, iss, iat, exp, valid) VALUES (?, ?, ?, ?, ?, ?, ?)"),
		record.ID, record.Sub, record.Aud, record.Iss, record.Iat, record.Exp, record.Valid,
	)
	return handleError(err)
}

func (r *TokenRepo) Get(ctx context.Context, id string) (*token.Record, error) {
	var (
		record     token.Record
		exp, valid sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, r.rebind(
		"SELECT id, sub, aud, iss, iat, exp, valid FROM tokens WHERE id = ?"), id,
	).Scan(&record.ID, &record.Sub, &record.Aud, &record.Iss, &record.Iat, &exp, &valid)
	if err != nil {
		return nil, handleError(err)
	}
	if exp.Valid {
		record.Exp = &exp.Int64
	}
	if valid.Valid {
		record.Valid = &valid.Int64
	}
	return &record, nil
}

func (r *TokenRepo) Revoke(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.rebind("UPDATE tokens SET valid = 0 WHERE id = ?"), id)
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
