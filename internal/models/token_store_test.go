package models

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenStore(t *testing.T) {
	store := NewTokenStore(t.TempDir())

	_, err := store.GetToken()
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	require.NoError(t, store.SaveToken("  secret-token\n"))
	token, err := store.GetToken()
	require.NoError(t, err)
	assert.Equal(t, "secret-token", token)

	info, err := os.Stat(store.TokenFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	require.NoError(t, store.ClearToken())
	require.NoError(t, store.ClearToken())
	_, err = store.GetToken()
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}
