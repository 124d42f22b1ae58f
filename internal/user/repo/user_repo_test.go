package repo

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kentalbores/IntProg-sub001/internal/user/entity"
)

func newMock(t *testing.T) (*UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewUserRepo(sqlx.NewDb(db, "postgres")), mock
}

var userCols = []string{"id", "username", "email", "password_hash", "firstname", "lastname", "roles",
	"profile_picture", "onboarding_completed", "registered_events", "created_at", "updated_at"}

func TestEnsureTable(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS users")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, r.EnsureTable(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
	// username and email are indexed by their UNIQUE constraints
	assert.NotContains(t, usersDDL, "CREATE INDEX")
	assert.Contains(t, usersDDL, "email TEXT NOT NULL UNIQUE")
}

func TestGetByUsername_ScalarRoles(t *testing.T) {
	r, mock := newMock(t)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username=$1")).
		WithArgs("ana").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(int64(11), "ana", "ana@example.com", nil, "Ana", "Cruz", []byte(`"guest"`), "", false, []byte(`[3]`), now, now))

	u, err := r.GetByUsername(context.Background(), "ana")
	require.NoError(t, err)
	assert.Equal(t, int64(11), u.ID)
	assert.Equal(t, entity.RoleSet{entity.RoleGuest}, u.Roles)
	assert.False(t, u.RolesList)
	assert.Nil(t, u.PasswordHash)
	assert.Equal(t, entity.EventIDs{3}, u.RegisteredEvents)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByEmail_NoRows(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=$1")).
		WithArgs("x@example.com").
		WillReturnRows(sqlmock.NewRows(userCols))

	_, err := r.GetByEmail(context.Background(), "x@example.com")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate(t *testing.T) {
	r, mock := newMock(t)
	hash := "h"
	u := &entity.User{Username: "ana", Email: "ana@example.com", PasswordHash: &hash, Roles: entity.RoleSet{entity.RoleGuest}}
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(sqlmock.AnyArg(), "ana", "ana@example.com", "h", "", "", `["guest"]`, "", false, "[]").
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := r.Create(context.Background(), u)
	require.NoError(t, err)
	assert.NotZero(t, id)
	assert.Equal(t, id, u.ID)
	assert.True(t, u.RolesList)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_Duplicate(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	_, err := r.Create(context.Background(), &entity.User{Username: "ana", Email: "ana@example.com"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestCreate_OtherError(t *testing.T) {
	r, mock := newMock(t)
	boom := errors.New("connection reset")
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).WillReturnError(boom)

	_, err := r.Create(context.Background(), &entity.User{Username: "ana", Email: "ana@example.com"})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrDuplicate)
	assert.Contains(t, err.Error(), "insert user")
}

func TestSaveRoles(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET roles=$2::jsonb")).
		WithArgs(int64(5), `["guest","vendor"]`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := r.SaveRoles(context.Background(), 5, entity.RoleSet{entity.RoleGuest, entity.RoleVendor})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRoles_Missing(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET roles=$2::jsonb")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := r.SaveRoles(context.Background(), 5, entity.RoleSet{entity.RoleGuest})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestSaveRoles_Error(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET roles=$2::jsonb")).
		WillReturnError(errors.New("read-only transaction"))

	err := r.SaveRoles(context.Background(), 5, entity.RoleSet{entity.RoleGuest})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "update roles")
}

func TestAddRole(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectQuery(`UPDATE users SET roles = CASE .* RETURNING roles`).
		WithArgs(int64(5), "organizer").
		WillReturnRows(sqlmock.NewRows([]string{"roles"}).AddRow([]byte(`["guest","organizer"]`)))

	roles, err := r.AddRole(context.Background(), 5, entity.RoleOrganizer)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleSet{entity.RoleGuest, entity.RoleOrganizer}, roles)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddRole_Missing(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectQuery(`UPDATE users SET roles = CASE`).
		WillReturnRows(sqlmock.NewRows([]string{"roles"}))

	_, err := r.AddRole(context.Background(), 5, entity.RoleVendor)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
