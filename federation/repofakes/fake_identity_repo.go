package fakeidentityrepo

import (
	"context"
	"sync"

	"github.com/lmaotrigine/indieauth/federation"
	apperrors "github.com/lmaotrigine/indieauth/internal/errors"
)

var _ federation.Repo = (*FakeIdentityRepo)(nil)

type FakeIdentityRepo struct {
	identities map[string]federation.Identity
	lock       sync.RWMutex
}

func NewFakeIdentityRepo() *FakeIdentityRepo {
	return &FakeIdentityRepo{
		identities: make(map[string]federation.Identity),
	}
}

func (r *FakeIdentityRepo) Insert(_ context.Context, identity *federation.Identity) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.identities[identity.ID]; ok {
		return apperrors.ErrConflict
	}
	r.identities[identity.ID] = *identity
	return nil
}

func (r *FakeIdentityRepo) Get(_ context.Context, id string) (*federation.Identity, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	identity, ok := r.identities[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &identity, nil
}

func (r *FakeIdentityRepo) UpdateTokens(_ context.Context, id, accessToken, refreshToken string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	identity, ok := r.identities[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	identity.AccessToken = accessToken
	identity.RefreshToken = refreshToken
	r.identities[id] = identity
	return nil
}

// All returns a snapshot of every stored identity.
func (r *FakeIdentityRepo) All() []federation.Identity {
	r.lock.RLock()
	defer r.lock.RUnlock()

	all := make([]federation.Identity, 0, len(r.identities))
	for _, identity := range r.identities {
		all = append(all, identity)
	}
	return all
}
