package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore persists the token and snapshot under a directory, the way
// CLI tools keep credentials in the user's home. Files are written with
// 0600 permissions.
type FileStore struct {
	dir string
}

const (
	tokenFile    = "token"
	snapshotFile = "state.json"
)

// NewFileStore creates the directory if needed and returns a store
// rooted at it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) Save(_ context.Context, token string) error {
	return os.WriteFile(filepath.Join(f.dir, tokenFile), []byte(token), 0o600)
}

func (f *FileStore) Load(_ context.Context) (string, error) {
	raw, err := os.ReadFile(filepath.Join(f.dir, tokenFile))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

func (f *FileStore) Clear(_ context.Context) error {
	for _, name := range []string{tokenFile, snapshotFile} {
		if err := os.Remove(filepath.Join(f.dir, name)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

func (f *FileStore) Put(_ context.Context, s Snapshot) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return os.WriteFile(filepath.Join(f.dir, snapshotFile), raw, 0o600)
}

func (f *FileStore) Get(_ context.Context) (*Snapshot, error) {
	raw, err := os.ReadFile(filepath.Join(f.dir, snapshotFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		// A corrupt cache is treated as no cache.
		return nil, nil
	}
	return &s, nil
}
