package storagefake

import (
	"context"
	"sync"

	"github.com/krystark/portal-gate/credentials"
	"github.com/pkg/errors"
)

var _ credentials.Storage = (*FakeStorage)(nil)

// FakeStorage is an in-process Storage used by tests and by deployments
// that run without redis. FailAll simulates storage disabled by policy:
// every operation errors, which the Store must absorb.
type FakeStorage struct {
	lock    sync.RWMutex
	tiers   map[credentials.Scope]string
	FailAll bool
}

func New() *FakeStorage {
	return &FakeStorage{tiers: make(map[credentials.Scope]string)}
}

func (f *FakeStorage) Get(_ context.Context, scope credentials.Scope) (string, error) {
	f.lock.RLock()
	defer f.lock.RUnlock()
	if f.FailAll {
		return "", errors.New("storage unavailable")
	}
	return f.tiers[scope], nil
}

func (f *FakeStorage) Set(_ context.Context, scope credentials.Scope, payload string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.FailAll {
		return errors.New("storage unavailable")
	}
	f.tiers[scope] = payload
	return nil
}

func (f *FakeStorage) Remove(_ context.Context, scope credentials.Scope) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.FailAll {
		return errors.New("storage unavailable")
	}
	delete(f.tiers, scope)
	return nil
}

// Raw returns the stored payload for a tier without error handling.
func (f *FakeStorage) Raw(scope credentials.Scope) string {
	f.lock.RLock()
	defer f.lock.RUnlock()
	return f.tiers[scope]
}
