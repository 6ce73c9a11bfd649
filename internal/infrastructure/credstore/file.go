package credstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sportsfed/console-gateway/internal/core/domain"
	"github.com/sportsfed/console-gateway/internal/core/ports"
)

// FileStore persists the token/user pair as one JSON document. Writing the
// whole pair through a temp file + rename keeps Save atomic with respect to
// a concurrent Load, including a Load from another process: a reader sees
// either the old pair or the new pair, never a token without its user.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a FileStore at path. The parent directory is created
// on the first Save.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("credstore: file path is required")
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Save(_ context.Context, token string, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	encoded, err := json.Marshal(ports.Credentials{Token: token, User: user})
	if err != nil {
		return fmt.Errorf("credstore: encode credentials: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("credstore: mkdir state dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".session-*")
	if err != nil {
		return fmt.Errorf("credstore: create temp file: %w", err)
	}
	if _, err := tmp.Write(encoded); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("credstore: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("credstore: close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("credstore: chmod temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("credstore: replace state file: %w", err)
	}
	return nil
}

// Load fails soft: a missing file means no session, and a malformed or
// incomplete file is cleared and reported as absent, never as an error.
func (s *FileStore) Load(ctx context.Context) (*ports.Credentials, error) {
	s.mu.Lock()
	raw, err := os.ReadFile(s.path)
	s.mu.Unlock()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("credstore: read state file: %w", err)
	}

	var creds ports.Credentials
	if err := json.Unmarshal(raw, &creds); err != nil || creds.Token == "" || creds.User == nil {
		_ = s.Clear(ctx)
		return nil, nil
	}
	return &creds, nil
}

func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("credstore: remove state file: %w", err)
	}
	return nil
}
