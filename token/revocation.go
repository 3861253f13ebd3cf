package token

import (
	"context"
	"time"

	apperrors "github.com/lmaotrigine/indieauth/internal/errors"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
)

// RevocationChecker consults the audit records of validated tokens. Lookups
// are cached for a short TTL, so a revocation can take that long to apply on
// other instances.
type RevocationChecker struct {
	repo    Repo
	records *cache.Cache
	nowTime func() time.Time
}

// cachedRecord also caches "no such record", where record is nil.
type cachedRecord struct {
	record *Record
}

// NewRevocationChecker creates a checker that caches lookups for ttl.
func NewRevocationChecker(repo Repo, ttl time.Duration) *RevocationChecker {
	return &RevocationChecker{
		repo:    repo,
		records: cache.New(ttl, 2*ttl),
		nowTime: time.Now,
	}
}

// Check rejects tokens whose record is flagged invalid or past its exp.
// Tokens without a record are accepted.
func (c *RevocationChecker) Check(ctx context.Context, tok *Token) error {
	record, err := c.lookup(ctx, tok.Jti)
	if err != nil {
		return err
	}
	if record == nil {
		return nil
	}
	if record.Revoked() {
		return apperrors.ErrTokenRevoked
	}
	if record.Exp != nil && c.nowTime().Unix() >= *record.Exp {
		return errors.Wrap(apperrors.ErrTokenRevoked, "token record has expired")
	}
	return nil
}

// Revoke invalidates the token jti on behalf of caller. Only tokens with the
// caller's own subject can be revoked; anything else is not found.
func (c *RevocationChecker) Revoke(ctx context.Context, caller *Token, jti string) error {
	record, err := c.repo.Get(ctx, jti)
	if err != nil {
		return errors.Wrap(err, "[RevocationChecker.Revoke] failed to load token record")
	}
	if record.Sub != caller.Sub {
		return apperrors.ErrNotFound
	}
	if err := c.repo.Revoke(ctx, jti); err != nil {
		return errors.Wrap(err, "[RevocationChecker.Revoke] failed to revoke token")
	}
	c.records.Delete(jti)
	return nil
}

func (c *RevocationChecker) lookup(ctx context.Context, jti string) (*Record, error) {
	if cached, ok := c.records.Get(jti); ok {
		return cached.(cachedRecord).record, nil
	}

	record, err := c.repo.Get(ctx, jti)
	switch {
	case apperrors.Is(err, apperrors.ErrNotFound):
		record = nil
	case err != nil:
		return nil, errors.Wrap(err, "[RevocationChecker.Check] failed to load token record")
	}
	c.records.Set(jti, cachedRecord{record: record}, cache.DefaultExpiration)
	return record, nil
}
