package user

import (
	"context"
	"database/sql/driver"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/benmalka/gatherly/internal/auth"
)

var userColumns = []string{"id", "name", "email", "password_hash", "roles", "created_at"}

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock, *auth.TokenService) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens := auth.NewTokenService("test-secret", time.Hour)
	svc := NewService(NewRepository(db), tokens, bcrypt.MinCost)
	return svc, mock, tokens
}

func userRow(id int64, name, email, hash string, roles string) *sqlmock.Rows {
	return sqlmock.NewRows(userColumns).AddRow(id, name, email, hash, roles, time.Now())
}

// hashOf matches any bcrypt hash of the given plaintext, and never the
// plaintext itself.
type hashOf struct{ plain string }

func (m hashOf) Match(v driver.Value) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	return s != m.plain && auth.CheckPassword(m.plain, s)
}

// arrayContaining matches a Postgres array literal containing the value
type arrayContaining struct{ value string }

func (m arrayContaining) Match(v driver.Value) bool {
	switch s := v.(type) {
	case string:
		return strings.Contains(s, m.value)
	case []byte:
		return strings.Contains(string(s), m.value)
	}
	return false
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, mock, _ := newTestService(t)

	mock.ExpectQuery(`FROM users\s+WHERE email`).
		WithArgs("a@b.com").
		WillReturnRows(userRow(1, "A", "a@b.com", "hash", "{invite}"))

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Name: "B", Email: "a@b.com", Password: "Aa1!aaaa",
	})

	assert.ErrorIs(t, err, ErrEmailAlreadyInUse)
	// no INSERT must have run
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterHashesPasswordAndDefaultsRoles(t *testing.T) {
	svc, mock, _ := newTestService(t)

	mock.ExpectQuery(`FROM users\s+WHERE email`).
		WithArgs("a@b.com").
		WillReturnRows(sqlmock.NewRows(userColumns))

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("A", "a@b.com", hashOf{plain: "Aa1!aaaa"}, arrayContaining{value: "invite"}).
		WillReturnRows(userRow(1, "A", "a@b.com", "stored-hash", "{invite}"))

	user, err := svc.Register(context.Background(), &RegisterRequest{
		Name: "A", Email: "a@b.com", Password: "Aa1!aaaa",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, []string{"invite"}, user.Roles)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, mock, _ := newTestService(t)

	mock.ExpectQuery(`FROM users\s+WHERE email`).
		WithArgs("nobody@b.com").
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := svc.Login(context.Background(), &LoginRequest{Email: "nobody@b.com", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, mock, _ := newTestService(t)

	hash, err := auth.HashPassword("Aa1!aaaa", bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery(`FROM users\s+WHERE email`).
		WithArgs("a@b.com").
		WillReturnRows(userRow(1, "A", "a@b.com", hash, "{invite}"))

	_, err = svc.Login(context.Background(), &LoginRequest{Email: "a@b.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc, mock, tokens := newTestService(t)

	hash, err := auth.HashPassword("Aa1!aaaa", bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery(`FROM users\s+WHERE email`).
		WithArgs("a@b.com").
		WillReturnRows(userRow(42, "A", "a@b.com", hash, "{invite,admin}"))

	token, err := svc.Login(context.Background(), &LoginRequest{Email: "a@b.com", Password: "Aa1!aaaa"})
	require.NoError(t, err)

	claims, err := tokens.Verify(token)
	require.NoError(t, err)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.ElementsMatch(t, []string{"invite", "admin"}, claims.RoleSet())
}

func TestLoadIdentity(t *testing.T) {
	svc, mock, _ := newTestService(t)

	mock.ExpectQuery(`FROM users\s+WHERE id`).
		WithArgs(int64(7)).
		WillReturnRows(userRow(7, "A", "a@b.com", "hash", "{admin}"))

	identity, err := svc.LoadIdentity(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.Equal(t, int64(7), identity.UserID)
	assert.Equal(t, "a@b.com", identity.Email)
	assert.Equal(t, []string{"admin"}, identity.Roles)

	mock.ExpectQuery(`FROM users\s+WHERE id`).
		WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows(userColumns))

	identity, err = svc.LoadIdentity(context.Background(), 8)
	require.NoError(t, err)
	assert.Nil(t, identity)
}

func TestUpdateRejectsTakenEmail(t *testing.T) {
	svc, mock, _ := newTestService(t)

	newEmail := "taken@b.com"
	mock.ExpectQuery(`FROM users\s+WHERE email`).
		WithArgs(newEmail).
		WillReturnRows(userRow(2, "Other", newEmail, "hash", "{invite}"))

	_, err := svc.Update(context.Background(), 1, &UpdateUserRequest{Email: &newEmail})
	assert.ErrorIs(t, err, ErrEmailAlreadyInUse)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMissingUser(t *testing.T) {
	svc, mock, _ := newTestService(t)

	mock.ExpectExec(`DELETE FROM users`).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.Delete(context.Background(), 9)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
