package tokenfakerepo

import (
	"context"
	"sync"

	apperrors "github.com/lmaotrigine/indieauth/internal/errors"
	"github.com/lmaotrigine/indieauth/internal/utils"
	"github.com/lmaotrigine/indieauth/token"
)

var _ token.Repo = (*FakeTokenRepo)(nil)

type FakeTokenRepo struct {
	records map[string]token.Record
	gets    int
	lock    sync.RWMutex
}

func NewFakeTokensRepo() *FakeTokenRepo {
	return &FakeTokenRepo{
		records: make(map[string]token.Record),
	}
}

func (tr *FakeTokenRepo) Insert(_ context.Context, record *token.Record) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	if _, ok := tr.records[record.ID]; ok {
		return apperrors.ErrConflict
	}
	tr.records[record.ID] = *record
	return nil
}

func (tr *FakeTokenRepo) Get(_ context.Context, id string) (*token.Record, error) {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	tr.gets++
	record, ok := tr.records[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &record, nil
}

func (tr *FakeTokenRepo) Revoke(_ context.Context, id string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	record, ok := tr.records[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	record.Valid = utils.Ptr(int64(0))
	tr.records[id] = record
	return nil
}

// Gets returns how many times Get has been called.
func (tr *FakeTokenRepo) Gets() int {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	return tr.gets
}

// Len returns the number of stored records.
func (tr *FakeTokenRepo) Len() int {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	return len(tr.records)
}
