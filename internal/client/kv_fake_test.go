package client_test

import (
	"context"
	"errors"
	"path"
	"sync"
	"time"

	"urap-polar/internal/store"
)

// fakeKVStore in-memory KV for unit tests; failing makes every call error.
type fakeKVStore struct {
	mu      sync.Mutex
	data    map[string]string
	ttls    map[string]time.Duration
	failing bool
}

var errKVDown = errors.New("kv down")

func newFakeKVStore() *fakeKVStore {
	return &fakeKVStore{
		data: make(map[string]string),
		ttls: make(map[string]time.Duration),
	}
}

func (f *fakeKVStore) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return "", errKVDown
	}
	v, ok := f.data[key]
	if !ok {
		return "", store.ErrMiss
	}
	return v, nil
}

func (f *fakeKVStore) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errKVDown
	}
	f.data[key] = value
	f.ttls[key] = ttl
	return nil
}

func (f *fakeKVStore) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, errKVDown
	}
	var keys []string
	for k := range f.data {
		if ok, _ := path.Match(pattern, k); ok {
			keys = append(keys, k)
		}
	}
	return keys, nil
}
