package api

import (
	"context"
	"encoding/json"
	"net/http"
	"subsctl/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginStoresTokenFromBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/auth/signin", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "admin@example.com", body["email"])
		assert.Equal(t, "hunter2", body["password"])

		_, _ = w.Write([]byte(`{"token": "fresh-token", "user": {"id": 12, "email": "admin@example.com", "name": "Admin"}}`))
	})

	auth, err := client.Login(context.Background(), "admin@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", auth.Token)
	assert.Equal(t, "12", auth.UserID)
	assert.Equal(t, "Admin", auth.Name)

	stored, err := client.tokenStore.GetToken()
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", stored)
}

func TestLoginReadsTokenCookie(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "admin_session", Value: "cookie-token"})
		_, _ = w.Write([]byte(`{"user": {"id": "u-1"}}`))
	})

	auth, err := client.Login(context.Background(), "admin@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "cookie-token", auth.Token)
	assert.Equal(t, "u-1", auth.UserID)
	assert.Equal(t, "admin@example.com", auth.Email)
}

func TestLoginWithoutTokenFails(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"user": {"id": 1}}`))
	})

	_, err := client.Login(context.Background(), "a@b.c", "pw")
	assert.ErrorContains(t, err, "no authentication token")
}

func TestLogoutClearsTokenEvenWhenServerFails(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := client.Logout(context.Background())
	assert.Error(t, err)

	_, err = client.tokenStore.GetToken()
	assert.ErrorIs(t, err, models.ErrNotLoggedIn)
}

func TestCurrentUser(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/account/me", r.URL.Path)
		_, _ = w.Write([]byte(`{"user": {"id": 12, "name": "Admin", "email": "admin@example.com"}}`))
	})

	user, err := client.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), user.ID)
	assert.Equal(t, "Admin", user.Name)
}
