package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benmalka/gatherly/internal/auth"
)

type fakeUserLoader struct {
	identities map[int64]*Identity
	err        error
}

func (f *fakeUserLoader) LoadIdentity(_ context.Context, userID int64) (*Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.identities[userID], nil
}

func newTestAuthenticator(t *testing.T, loader *fakeUserLoader) (*Authenticator, *auth.TokenService) {
	t.Helper()
	tokens := auth.NewTokenService("test-secret", time.Hour)
	if loader == nil {
		loader = &fakeUserLoader{identities: map[int64]*Identity{}}
	}
	return NewAuthenticator(tokens, loader), tokens
}

// capture returns a handler that records the identity it saw
func capture(got **Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := GetIdentity(r.Context()); ok {
			*got = id
		}
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(h http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Message
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"", "", false},
		{"abc123", "", false},
		{"Basic abc123", "", false},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"Bearer abc123", "abc123", true},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		token, ok := bearerToken(req)
		assert.Equal(t, tt.ok, ok, "header %q", tt.header)
		if tt.ok {
			assert.Equal(t, tt.token, token)
		}
	}
}

func TestRequireAuthMissingHeader(t *testing.T) {
	a, _ := newTestAuthenticator(t, nil)
	rec := doRequest(a.RequireAuth(capture(new(*Identity))), "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authorization token not found", message(t, rec))
}

func TestRequireAuthInvalidToken(t *testing.T) {
	a, _ := newTestAuthenticator(t, nil)
	rec := doRequest(a.RequireAuth(capture(new(*Identity))), "Bearer garbage")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid token", message(t, rec))
}

func TestRequireAuthUserNotFound(t *testing.T) {
	a, tokens := newTestAuthenticator(t, &fakeUserLoader{identities: map[int64]*Identity{}})
	token, err := tokens.Issue(99, "gone@b.com", nil)
	require.NoError(t, err)

	rec := doRequest(a.RequireAuth(capture(new(*Identity))), "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "user not found", message(t, rec))
}

func TestRequireAuthLoaderError(t *testing.T) {
	a, tokens := newTestAuthenticator(t, &fakeUserLoader{err: errors.New("db down")})
	token, err := tokens.Issue(1, "", nil)
	require.NoError(t, err)

	rec := doRequest(a.RequireAuth(capture(new(*Identity))), "Bearer "+token)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequireAuthUsesStoredRoles(t *testing.T) {
	// token claims say admin, the store says otherwise; the store wins
	loader := &fakeUserLoader{identities: map[int64]*Identity{
		5: {UserID: 5, Email: "fresh@b.com", Roles: []string{"invite"}},
	}}
	a, tokens := newTestAuthenticator(t, loader)
	token, err := tokens.Issue(5, "stale@b.com", []string{"admin"})
	require.NoError(t, err)

	var got *Identity
	rec := doRequest(a.RequireAuth(capture(&got)), "Bearer "+token)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, int64(5), got.UserID)
	assert.Equal(t, "fresh@b.com", got.Email)
	assert.Equal(t, []string{"invite"}, got.Roles)
}

func TestExtractRolesFromClaims(t *testing.T) {
	a, tokens := newTestAuthenticator(t, nil)
	token, err := tokens.Issue(3, "c@d.com", []string{"admin"})
	require.NoError(t, err)

	var got *Identity
	rec := doRequest(a.ExtractRoles(capture(&got)), "Bearer "+token)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, int64(3), got.UserID)
	assert.Equal(t, "c@d.com", got.Email)
	assert.Equal(t, []string{"admin"}, got.Roles)
}

func TestExtractRolesDefaultsToInvite(t *testing.T) {
	a, tokens := newTestAuthenticator(t, nil)
	token, err := tokens.Issue(3, "", nil)
	require.NoError(t, err)

	var got *Identity
	rec := doRequest(a.ExtractRoles(capture(&got)), "Bearer "+token)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, []string{"invite"}, got.Roles)
}

func TestExtractRolesRejectsMissingOrBadHeader(t *testing.T) {
	a, _ := newTestAuthenticator(t, nil)

	rec := doRequest(a.ExtractRoles(capture(new(*Identity))), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(a.ExtractRoles(capture(new(*Identity))), "Bearer bad.token.here")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid token", message(t, rec))
}

func TestRequireAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	gate := RequireAdmin(next)

	tests := []struct {
		name     string
		identity *Identity
		want     int
	}{
		{"no identity attached", nil, http.StatusForbidden},
		{"no roles", &Identity{}, http.StatusForbidden},
		{"invite only", &Identity{Roles: []string{"invite"}}, http.StatusForbidden},
		{"admin", &Identity{Roles: []string{"admin"}}, http.StatusOK},
		{"admin among others", &Identity{Roles: []string{"invite", "admin"}}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, "/groups/1", nil)
			if tt.identity != nil {
				req = req.WithContext(WithIdentity(req.Context(), tt.identity))
			}
			rec := httptest.NewRecorder()
			gate.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusForbidden {
				assert.Equal(t, "Access denied", message(t, rec))
			}
		})
	}
}

// The gate before the role resolver always rejects: ordering is a hard
// invariant of every route composing the two.
func TestRequireAdminBeforeResolverAlwaysRejects(t *testing.T) {
	a, tokens := newTestAuthenticator(t, nil)
	token, err := tokens.Issue(1, "", []string{"admin"})
	require.NoError(t, err)

	misordered := RequireAdmin(a.ExtractRoles(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	rec := doRequest(misordered, "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
