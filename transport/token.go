package transport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TokenStore persists the opaque auth token the backend hands out on
// connect, so a reconnect resumes the same identity. The token is treated
// as an opaque string; the file holds nothing else.
type TokenStore struct {
	path string
}

func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// Load returns the persisted token, or "" when none exists.
func (s *TokenStore) Load() string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (s *TokenStore) Save(token string) error {
	if token == "" {
		return nil
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create token dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}
