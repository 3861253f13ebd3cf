package token

import "context"

// Record is the audit row written for every minted token.
type Record struct {
	ID    string `json:"id"`
	Sub   string `json:"sub"`
	Aud   string `json:"aud"`
	Iss   string `json:"iss"`
	Iat   string `json:"iat"`
	Exp   *int64 `json:"exp,omitempty"`   // unix seconds
	Valid *int64 `json:"valid,omitempty"` // 0 once revoked
}

// Revoked reports whether the record has been explicitly invalidated.
func (r *Record) Revoked() bool {
	return r.Valid != nil && *r.Valid == 0
}

// Repo persists token audit records. Missing rows are reported as
// errors.ErrNotFound from the internal errors package.
type Repo interface {
	Insert(ctx context.Context, record *Record) error
	Get(ctx context.Context, id string) (*Record, error)
	Revoke(ctx context.Context, id string) error
}
