package core

import (
	"context"
	"encoding/base32"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore persists each key as its own JSON document inside a
// directory. It is the default provider: the closest analogue to the
// browser storage the original client relied on. Writes go through a
// temp file and a rename so a crash mid-write cannot corrupt a slot.
type FileStore struct {
	mu     sync.Mutex
	dir    string
	logger Logger
}

// NewFileStore creates the directory if needed and returns the store.
func NewFileStore(dir string, logger Logger) (*FileStore, error) {
	if logger == nil {
		logger = &NoOpLogger{}
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".dinehall")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

// Get retrieves a value; a missing key yields an empty string.
func (f *FileStore) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return string(data), nil
}

// Set stores a value under key, replacing any prior value.
func (f *FileStore) Set(ctx context.Context, key string, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := f.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}
	f.logger.Debug("Store write", map[string]interface{}{
		"operation":  "store_set",
		"key":        key,
		"value_size": len(value),
	})
	return nil
}

// Delete removes a value from the store
func (f *FileStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// path maps a key to a filename. Keys are encoded so the mapping stays
// total and collision-free regardless of key characters.
func (f *FileStore) path(key string) string {
	name := strings.ToLower(base32.HexEncoding.WithPadding(base32.NoPadding).EncodeToString([]byte(key)))
	return filepath.Join(f.dir, name+".json")
}
