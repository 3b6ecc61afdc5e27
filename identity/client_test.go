package identity_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/krystark/portal-gate/identity"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestClientProfile(t *testing.T) {
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/profile", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": 42, "username": "jdoe", "email": "jdoe@example.com",
			"firstName": "John", "lastName": "Doe", "legacyId": "42",
		})
	}))
	defer ts.Close()

	client := identity.NewClient(ts.URL, zerolog.Nop())
	profile, err := client.Profile(context.Background(), "tok-1")

	require.NoError(t, err)
	require.Equal(t, "Bearer tok-1", gotAuth)
	require.Equal(t, int64(42), profile.ID)
	require.Equal(t, "42", profile.LegacyID)
	require.Equal(t, "John Doe", profile.DisplayName())
}

func TestClientProfileStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "expired", http.StatusUnauthorized)
	}))
	defer ts.Close()

	client := identity.NewClient(ts.URL, zerolog.Nop())
	_, err := client.Profile(context.Background(), "tok-1")

	var statusErr *identity.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusUnauthorized, statusErr.StatusCode())
}

func TestClientProfileTransportError(t *testing.T) {
	client := identity.NewClient("http://127.0.0.1:1", zerolog.Nop())
	_, err := client.Profile(context.Background(), "tok-1")

	require.Error(t, err)
	var statusErr *identity.StatusError
	require.False(t, errors.As(err, &statusErr))
}

func TestClientRefresh(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/refresh", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "refresh-1", body["refreshToken"])

		_ = json.NewEncoder(w).Encode(map[string]any{"accessToken": "new-access"})
	}))
	defer ts.Close()

	client := identity.NewClient(ts.URL, zerolog.Nop())
	pair, err := client.Refresh(context.Background(), "refresh-1")

	require.NoError(t, err)
	require.Equal(t, "new-access", pair.AccessToken)
	// server did not rotate the refresh token; the pair reflects that
	require.Empty(t, pair.RefreshToken)
}

func TestClientRefreshMissingAccessToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{})
	}))
	defer ts.Close()

	client := identity.NewClient(ts.URL, zerolog.Nop())
	_, err := client.Refresh(context.Background(), "refresh-1")
	require.Error(t, err)
}
