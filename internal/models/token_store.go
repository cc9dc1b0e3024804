package models

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// TokenStore persists the API bearer token next to the global config
type TokenStore struct {
	TokenFile string
}

// NewTokenStore returns a store keeping the token in configDir/.auth_token
func NewTokenStore(configDir string) *TokenStore {
	return &TokenStore{
		TokenFile: filepath.Join(configDir, ".auth_token"),
	}
}

// SaveToken writes the token with owner-only permissions
func (ts *TokenStore) SaveToken(token string) error {
	return os.WriteFile(ts.TokenFile, []byte(strings.TrimSpace(token)), 0600)
}

// GetToken returns the stored token, or ErrNotLoggedIn if there is none
func (ts *TokenStore) GetToken() (string, error) {
	data, err := os.ReadFile(ts.TokenFile)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNotLoggedIn
	}
	if err != nil {
		return "", err
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNotLoggedIn
	}
	return token, nil
}

// ClearToken removes the stored token; a missing file is not an error
func (ts *TokenStore) ClearToken() error {
	if err := os.Remove(ts.TokenFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
