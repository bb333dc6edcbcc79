package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/habedi/escola/auth"
	"github.com/stretchr/testify/require"
)

const apiPrefix = "/api/v1"

// newTestClient starts a fake backend serving mux and returns a client pointed at it.
func newTestClient(t *testing.T, mux *http.ServeMux) (*Client, *auth.MemoryStore, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	store := auth.NewMemoryStore()
	c, err := New(srv.URL+apiPrefix, store)
	require.NoError(t, err)
	return c, store, srv
}

func seedTokens(t *testing.T, store auth.Store, access, refresh string) {
	t.Helper()
	ctx := context.Background()
	if access != "" {
		require.NoError(t, store.Set(ctx, auth.AccessTokenKey, access))
	}
	if refresh != "" {
		require.NoError(t, store.Set(ctx, auth.RefreshTokenKey, refresh))
	}
}

func storedToken(t *testing.T, store auth.Store, key string) string {
	t.Helper()
	v, _, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return body
}

var testUser = map[string]any{
	"id":            7,
	"email":         "prof@escola.com",
	"nome_completo": "Ana Souza",
	"tipo_usuario":  "PROFESSOR",
	"escola":        map[string]any{"id": "0b5e6f0a-3c1e-4a8e-9a43-4cf0f4a1f0aa", "nome_fantasia": "Escola Sol"},
}

// meHandler answers /usuarios/me/ for the given bearer token only.
func meHandler(token string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Token is invalid or expired"})
			return
		}
		writeJSON(w, http.StatusOK, testUser)
	}
}
