package keyvalue

import (
	"sync"

	"github.com/Youngger9765/duotopia-sub010/core"
)

type inMemStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ core.KeyValueStore = (*inMemStore)(nil)

func NewInMemStore() core.KeyValueStore {
	return &inMemStore{data: make(map[string][]byte)}
}

func (s *inMemStore) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.data[key]
	if !ok {
		return nil, core.ErrKeyNotFound
	}
	return append([]byte(nil), raw...), nil
}

func (s *inMemStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), value...)
	return nil
}
