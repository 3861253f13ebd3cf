// Package valkeystore keeps IndieAuth codes in valkey so several gateway
// instances can share them. Codes expire after a fixed TTL.
package valkeystore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lmaotrigine/indieauth/indieauth"
	apperrors "github.com/lmaotrigine/indieauth/internal/errors"
	"github.com/pkg/errors"
	"github.com/valkey-io/valkey-go"
)

// authorizeScript sets authorized=true and keeps the remaining TTL.
var authorizeScript = valkey.NewLuaScript(`
local v = redis.call('GET', KEYS[1])
if not v then return false end
local c = cjson.decode(v)
c['authorized'] = true
local out = cjson.encode(c)
redis.call('SET', KEYS[1], out, 'KEEPTTL')
return out
`)

// consumeScript deletes the code only if it is authorized and carries the
// challenge in ARGV[1].
var consumeScript = valkey.NewLuaScript(`
local v = redis.call('GET', KEYS[1])
if not v then return false end
local c = cjson.decode(v)
if c['authorized'] ~= true or c['code_challenge'] ~= ARGV[1] then return false end
redis.call('DEL', KEYS[1])
return v
`)

// CodeRepo implements indieauth.CodeRepo on valkey.
type CodeRepo struct {
	client valkey.Client
	prefix string
	ttl    time.Duration
}

var _ indieauth.CodeRepo = (*CodeRepo)(nil)

func NewCodeRepo(client valkey.Client, prefix string, ttl time.Duration) *CodeRepo {
	return &CodeRepo{
		client: client,
		prefix: strings.TrimSuffix(prefix, ":"),
		ttl:    ttl,
	}
}

func (r *CodeRepo) Insert(ctx context.Context, code *indieauth.AuthorizationCode) error {
	encoded, err := json.Marshal(code)
	if err != nil {
		return errors.Wrap(err, "[CodeRepo.Insert] failed to encode code")
	}

	cmd := r.client.B().Set().Key(r.key(code.Code)).Value(valkey.BinaryString(encoded)).Nx().Ex(r.ttl).Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return apperrors.ErrConflict
		}
		return errors.Wrap(apperrors.ErrPersistence, err.Error())
	}
	return nil
}

func (r *CodeRepo) Get(ctx context.Context, code string) (*indieauth.AuthorizationCode, error) {
	raw, err := r.client.Do(ctx, r.client.B().Get().Key(r.key(code)).Build()).AsBytes()
	return decode(raw, err)
}

func (r *CodeRepo) Authorize(ctx context.Context, code string) (*indieauth.AuthorizationCode, error) {
	raw, err := authorizeScript.Exec(ctx, r.client, []string{r.key(code)}, nil).AsBytes()
	return decode(raw, err)
}

func (r *CodeRepo) ConsumeAuthorized(ctx context.Context, code, codeChallenge string) (*indieauth.AuthorizationCode, error) {
	raw, err := consumeScript.Exec(ctx, r.client, []string{r.key(code)}, []string{codeChallenge}).AsBytes()
	return decode(raw, err)
}

func (r *CodeRepo) key(code string) string {
	return fmt.Sprintf("%s:code:%s", r.prefix, code)
}

func decode(raw []byte, err error) (*indieauth.AuthorizationCode, error) {
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, apperrors.ErrNotFound
		}
		return nil, errors.Wrap(apperrors.ErrPersistence, err.Error())
	}

	var code indieauth.AuthorizationCode
	if err := json.Unmarshal(raw, &code); err != nil {
		return nil, errors.Wrap(err, "failed to decode stored code")
	}
	return &code, nil
}
