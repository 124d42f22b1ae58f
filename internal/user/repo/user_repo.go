package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/kentalbores/IntProg-sub001/internal/user/entity"
	"github.com/kentalbores/IntProg-sub001/pkg/utilities"
)

// ErrDuplicate is returned by Create when the username or email is taken.
var ErrDuplicate = errors.New("duplicate user")

// UserRepo provides data access for users table using sqlx.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// usersDDL relies on the UNIQUE constraints for the username and email indexes.
// roles is JSONB so that rows still holding a plain string role can be read.
const usersDDL = `
CREATE TABLE IF NOT EXISTS users (
  id BIGINT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT,
  firstname TEXT NOT NULL DEFAULT '',
  lastname TEXT NOT NULL DEFAULT '',
  roles JSONB NOT NULL DEFAULT '["guest"]'::jsonb,
  profile_picture TEXT NOT NULL DEFAULT '',
  onboarding_completed BOOLEAN NOT NULL DEFAULT false,
  registered_events JSONB NOT NULL DEFAULT '[]'::jsonb,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// EnsureTable creates the users table if not exists (idempotent).
func (r *UserRepo) EnsureTable(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, usersDDL)
	return err
}

const userColumns = `id, username, email, password_hash, firstname, lastname, roles,
		profile_picture, onboarding_completed, registered_events, created_at, updated_at`

type userRow struct {
	ID                  int64              `db:"id"`
	Username            string             `db:"username"`
	Email               string             `db:"email"`
	PasswordHash        *string            `db:"password_hash"`
	FirstName           string             `db:"firstname"`
	LastName            string             `db:"lastname"`
	Roles               entity.StoredRoles `db:"roles"`
	ProfilePicture      string             `db:"profile_picture"`
	OnboardingCompleted bool               `db:"onboarding_completed"`
	RegisteredEvents    entity.EventIDs    `db:"registered_events"`
	CreatedAt           time.Time          `db:"created_at"`
	UpdatedAt           time.Time          `db:"updated_at"`
}

func (row *userRow) toEntity() *entity.User {
	return &entity.User{
		ID:                  row.ID,
		Username:            row.Username,
		Email:               row.Email,
		PasswordHash:        row.PasswordHash,
		FirstName:           row.FirstName,
		LastName:            row.LastName,
		Roles:               row.Roles.Roles,
		RolesList:           row.Roles.List,
		ProfilePicture:      row.ProfilePicture,
		OnboardingCompleted: row.OnboardingCompleted,
		RegisteredEvents:    row.RegisteredEvents,
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
	}
}

// Create inserts a new user row with a snowflake id and returns the id.
// Unique violations are reported as ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) (int64, error) {
	id, err := utilities.NewSnowflakeInt64()
	if err != nil {
		return 0, fmt.Errorf("generate user id: %w", err)
	}
	roles, err := rolesJSON(u.Roles)
	if err != nil {
		return 0, err
	}
	events, err := u.RegisteredEvents.Value()
	if err != nil {
		return 0, err
	}
	const q = `INSERT INTO users (id, username, email, password_hash, firstname, lastname, roles, profile_picture, onboarding_completed, registered_events)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err = r.db.ExecContext(ctx, q, id, u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName,
		roles, u.ProfilePicture, u.OnboardingCompleted, events)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return 0, ErrDuplicate
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}
	u.ID = id
	u.RolesList = true
	return id, nil
}

// GetByUsername fetches by username or returns sql.ErrNoRows.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username=$1`, username)
}

// GetByEmail fetches by email or returns sql.ErrNoRows.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
}

func (r *UserRepo) getOne(ctx context.Context, q string, arg any) (*entity.User, error) {
	var row userRow
	if err := r.db.GetContext(ctx, &row, q, arg); err != nil {
		return nil, err
	}
	return row.toEntity(), nil
}

// SaveRoles overwrites the role list of a user.
func (r *UserRepo) SaveRoles(ctx context.Context, id int64, roles entity.RoleSet) error {
	v, err := rolesJSON(roles)
	if err != nil {
		return err
	}
	const q = `UPDATE users SET roles=$2::jsonb, updated_at=NOW() WHERE id=$1`
	res, err := r.db.ExecContext(ctx, q, id, v)
	if err != nil {
		return fmt.Errorf("update roles: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update roles: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AddRole appends role to the user's role list in one statement unless it is
// already there, and returns the resulting list. A row that still holds a
// scalar role ends up with role alone.
func (r *UserRepo) AddRole(ctx context.Context, id int64, role entity.Role) (entity.RoleSet, error) {
	const q = `UPDATE users SET roles = CASE
			WHEN jsonb_typeof(roles) = 'array' AND roles @> jsonb_build_array($2::text) THEN roles
			WHEN jsonb_typeof(roles) = 'array' THEN roles || jsonb_build_array($2::text)
			ELSE jsonb_build_array($2::text)
		END, updated_at=NOW()
		WHERE id=$1 RETURNING roles`
	var stored entity.StoredRoles
	if err := r.db.GetContext(ctx, &stored, q, id, string(role)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("add role: %w", err)
	}
	return stored.Roles, nil
}

func rolesJSON(roles entity.RoleSet) (string, error) {
	v, err := entity.StoredRoles{Roles: roles, List: true}.Value()
	if err != nil {
		return "", fmt.Errorf("encode roles: %w", err)
	}
	return v.(string), nil
}
