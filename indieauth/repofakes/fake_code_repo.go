package fakecoderepo

import (
	"context"
	"sync"

	"github.com/lmaotrigine/indieauth/indieauth"
	apperrors "github.com/lmaotrigine/indieauth/internal/errors"
)

var _ indieauth.CodeRepo = (*FakeCodeRepo)(nil)

type FakeCodeRepo struct {
	codes map[string]indieauth.AuthorizationCode
	lock  sync.RWMutex
}

func NewFakeCodeRepo() *FakeCodeRepo {
	return &FakeCodeRepo{
		codes: make(map[string]indieauth.AuthorizationCode),
	}
}

func (r *FakeCodeRepo) Insert(_ context.Context, code *indieauth.AuthorizationCode) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.codes[code.Code]; ok {
		return apperrors.ErrConflict
	}
	r.codes[code.Code] = *code
	return nil
}

func (r *FakeCodeRepo) Get(_ context.Context, code string) (*indieauth.AuthorizationCode, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	stored, ok := r.codes[code]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &stored, nil
}

func (r *FakeCodeRepo) Authorize(_ context.Context, code string) (*indieauth.AuthorizationCode, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	stored, ok := r.codes[code]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	stored.Authorized = true
	r.codes[code] = stored
	return &stored, nil
}

func (r *FakeCodeRepo) ConsumeAuthorized(_ context.Context, code, codeChallenge string) (*indieauth.AuthorizationCode, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	stored, ok := r.codes[code]
	if !ok || !stored.Authorized || stored.CodeChallenge != codeChallenge {
		return nil, apperrors.ErrNotFound
	}
	delete(r.codes, code)
	return &stored, nil
}

// Len returns the number of stored codes.
func (r *FakeCodeRepo) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.codes)
}
