package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/benmalka/gatherly/internal/auth"
	"github.com/benmalka/gatherly/pkg/response"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// IdentityKey is the context key for the authenticated request identity
const IdentityKey ContextKey = "identity"

// AdminRole is the role required by RequireAdmin
const AdminRole = "admin"

// Identity is the typed per-request auth context attached by the
// role-resolving middlewares and consumed by handlers.
type Identity struct {
	UserID int64
	Email  string
	Roles  []string
}

// HasRole reports whether the identity carries the given role
func (id *Identity) HasRole(role string) bool {
	for _, r := range id.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// UserLoader resolves a token subject to the currently stored identity.
// A nil identity with a nil error means the user does not exist.
type UserLoader interface {
	LoadIdentity(ctx context.Context, userID int64) (*Identity, error)
}

// Authenticator holds the two role-resolving strategies: RequireAuth
// (store-backed, always-fresh roles) and ExtractRoles (token-embedded,
// no lookup, stale for at most the token lifetime).
type Authenticator struct {
	tokens *auth.TokenService
	users  UserLoader
}

// NewAuthenticator creates an authenticator over a token service and user store
func NewAuthenticator(tokens *auth.TokenService, users UserLoader) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The Bearer prefix is required on every authenticated route.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// RequireAuth verifies the bearer token and loads the referenced user from
// the store, attaching an Identity whose roles reflect current stored state
// rather than the token's claims.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			response.Unauthorized(w, "Authorization token not found")
			return
		}

		claims, err := a.tokens.Verify(token)
		if err != nil {
			response.Unauthorized(w, "Invalid token")
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			response.Unauthorized(w, "missing subject")
			return
		}

		identity, err := a.users.LoadIdentity(r.Context(), userID)
		if err != nil {
			response.InternalError(w, "Failed to load user")
			return
		}
		if identity == nil {
			response.Unauthorized(w, "user not found")
			return
		}

		ctx := context.WithValue(r.Context(), IdentityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ExtractRoles verifies the bearer token and attaches an Identity built
// from the token claims alone. Cheaper than RequireAuth but may serve
// roles revoked since issuance, for at most the token TTL.
func (a *Authenticator) ExtractRoles(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			response.Unauthorized(w, "Authorization token not found")
			return
		}

		claims, err := a.tokens.Verify(token)
		if err != nil {
			response.Unauthorized(w, "Invalid token")
			return
		}

		identity := &Identity{
			Email: claims.Email,
			Roles: claims.RoleSet(),
		}
		if id, err := claims.UserID(); err == nil {
			identity.UserID = id
		}

		ctx := context.WithValue(r.Context(), IdentityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects any request whose attached identity lacks the admin
// role. It must run after RequireAuth or ExtractRoles; with no identity
// attached it always rejects.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := GetIdentity(r.Context())
		if !ok || !identity.HasRole(AdminRole) {
			response.Forbidden(w, "Access denied")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetIdentity extracts the request identity from the context
func GetIdentity(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(*Identity)
	return identity, ok
}

// WithIdentity returns a context carrying the given identity
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}
