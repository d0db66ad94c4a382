package keyvalue

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Youngger9765/duotopia-sub010/core"
)

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store", "history.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore() failed: %v", err)
	}

	if _, err := store.Get("missing"); err != core.ErrKeyNotFound {
		t.Errorf("Get(missing) error = %v; want %v", err, core.ErrKeyNotFound)
	}

	if err := store.Set("a", []byte(`[1,2,3]`)); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := store.Set("b", []byte(`"x"`)); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	got, err := store.Get("a")
	if err != nil {
		t.Fatalf("Get(a) failed: %v", err)
	}
	if string(got) != `[1,2,3]` {
		t.Errorf("Get(a) = %s; want [1,2,3]", got)
	}

	// values survive a reopen
	store, err = NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore() failed: %v", err)
	}
	if got, err = store.Get("b"); err != nil || string(got) != `"x"` {
		t.Errorf("Get(b) after reopen = %s, %v; want \"x\"", got, err)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(path, []byte("not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore() failed: %v", err)
	}

	if _, err := store.Get("a"); err == nil {
		t.Error("Get() on corrupt store: want error")
	}
	// a write starts the store over
	if err := store.Set("a", []byte(`1`)); err != nil {
		t.Fatalf("Set() on corrupt store failed: %v", err)
	}
	if got, err := store.Get("a"); err != nil || string(got) != "1" {
		t.Errorf("Get(a) = %s, %v; want 1", got, err)
	}
}

func TestInMemStore(t *testing.T) {
	store := NewInMemStore()
	if _, err := store.Get("k"); err != core.ErrKeyNotFound {
		t.Errorf("Get() error = %v; want %v", err, core.ErrKeyNotFound)
	}
	if err := store.Set("k", []byte("v")); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	got, err := store.Get("k")
	if err != nil || string(got) != "v" {
		t.Errorf("Get(k) = %s, %v; want v", got, err)
	}

	// the stored value is a copy
	got[0] = 'x'
	if got2, _ := store.Get("k"); string(got2) != "v" {
		t.Error("Get() must return a copy")
	}
}
