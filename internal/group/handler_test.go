package group

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benmalka/gatherly/internal/auth"
	mw "github.com/benmalka/gatherly/pkg/middleware"
)

// loaderDirectory satisfies both middleware.UserLoader and UserDirectory.
// Group routes take the token-embedded role path, so LoadIdentity is
// never reached in these tests.
type loaderDirectory struct {
	fakeDirectory
}

func (l loaderDirectory) LoadIdentity(_ context.Context, _ int64) (*mw.Identity, error) {
	return nil, nil
}

func newTestRouter(t *testing.T, dir fakeDirectory) (http.Handler, sqlmock.Sqlmock, *auth.TokenService) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens := auth.NewTokenService("test-secret", time.Hour)
	svc := NewService(NewRepository(db), dir)
	authenticator := mw.NewAuthenticator(tokens, loaderDirectory{dir})
	return NewHandler(svc, authenticator).Routes(), mock, tokens
}

func TestDeleteGroupNonAdmin(t *testing.T) {
	h, mock, tokens := newTestRouter(t, fakeDirectory{})

	token, err := tokens.Issue(1, "user@b.com", []string{"invite"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/10", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Access denied")
	// the group must remain untouched
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteGroupAdmin(t *testing.T) {
	h, mock, tokens := newTestRouter(t, fakeDirectory{})

	token, err := tokens.Issue(1, "admin@b.com", []string{"admin"})
	require.NoError(t, err)

	mock.ExpectExec(`DELETE FROM groups`).
		WithArgs(int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodDelete, "/10", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Group deleted successfully")
}

func TestCreateGroupNoToken(t *testing.T) {
	h, _, _ := newTestRouter(t, fakeDirectory{})

	body, _ := json.Marshal(CreateGroupRequest{Name: "team"})
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateGroupUnknownMembers(t *testing.T) {
	h, _, tokens := newTestRouter(t, fakeDirectory{"a@b.com": 1})

	token, err := tokens.Issue(1, "admin@b.com", []string{"admin"})
	require.NoError(t, err)

	body, _ := json.Marshal(CreateGroupRequest{
		Name:    "team",
		Members: []string{"a@b.com", "ghost@b.com"},
	})
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Message           string   `json:"message"`
		NonExistingEmails []string `json:"nonExistingEmails"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Some member emails do not exist", resp.Message)
	assert.Equal(t, []string{"ghost@b.com"}, resp.NonExistingEmails)
}

func TestGetGroupWithMembers(t *testing.T) {
	h, mock, _ := newTestRouter(t, fakeDirectory{})

	mock.ExpectQuery(`FROM groups\s+WHERE id`).
		WithArgs(int64(10)).
		WillReturnRows(groupRow(10, "team"))
	mock.ExpectQuery(`FROM group_members gm`).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows(memberColumns).
			AddRow(int64(1), "A", "a@b.com", time.Now()).
			AddRow(int64(2), "C", "c@d.com", time.Now()))

	req := httptest.NewRequest(http.MethodGet, "/10", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp GroupResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "team", resp.Name)
	require.Len(t, resp.Members, 2)
	assert.Equal(t, "a@b.com", resp.Members[0].Email)
}

func TestGetGroupNotFound(t *testing.T) {
	h, mock, _ := newTestRouter(t, fakeDirectory{})

	mock.ExpectQuery(`FROM groups\s+WHERE id`).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(groupColumns))

	req := httptest.NewRequest(http.MethodGet, "/99", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Group not found")
}
