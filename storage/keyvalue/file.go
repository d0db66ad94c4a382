package keyvalue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/Youngger9765/duotopia-sub010/core"
)

// fileStore keeps all keys in a single JSON file, written atomically.
// It backs the teacher history on a student's own machine.
type fileStore struct {
	mu   sync.Mutex
	path string
}

var _ core.KeyValueStore = (*fileStore)(nil)

func NewFileStore(path string) (core.KeyValueStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "creating store directory")
	}
	return &fileStore{path: path}, nil
}

func (fs *fileStore) Get(key string) ([]byte, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entries, err := fs.read()
	if err != nil {
		return nil, err
	}
	raw, ok := entries[key]
	if !ok {
		return nil, core.ErrKeyNotFound
	}
	return raw, nil
}

func (fs *fileStore) Set(key string, value []byte) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entries, err := fs.read()
	if err != nil && errors.Cause(err) != core.ErrKeyNotFound {
		// unreadable store: start over rather than fail forever
		entries = nil
	}
	if entries == nil {
		entries = make(map[string]json.RawMessage, 1)
	}
	entries[key] = append(json.RawMessage(nil), value...)

	raw, err := json.Marshal(entries)
	if err != nil {
		return errors.Wrap(err, "encoding store")
	}

	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return errors.Wrap(err, "writing store")
	}
	return errors.Wrap(os.Rename(tmp, fs.path), "replacing store")
}

func (fs *fileStore) read() (map[string]json.RawMessage, error) {
	raw, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		return nil, core.ErrKeyNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading store")
	}
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, errors.Wrap(err, "decoding store")
	}
	return entries, nil
}
