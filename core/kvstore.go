package core

import "errors"

// ErrKeyNotFound is returned by KeyValueStore.Get when the key has never been set.
var ErrKeyNotFound = errors.New("key not found")

// KeyValueStore is any durable client-side store holding opaque values
// under string keys. Implementations live in storage/keyvalue.
type KeyValueStore interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
}
