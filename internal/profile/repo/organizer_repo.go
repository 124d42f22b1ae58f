package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/kentalbores/IntProg-sub001/internal/profile/entity"
	"github.com/kentalbores/IntProg-sub001/pkg/utilities"
)

// OrganizerRepo stores organizer profiles, one per user.
type OrganizerRepo struct {
	db *sqlx.DB
}

func NewOrganizerRepo(db *sqlx.DB) *OrganizerRepo { return &OrganizerRepo{db: db} }

// EnsureTable creates the organizers table if it does not already exist.
func (r *OrganizerRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS organizers (
  id VARCHAR(27) PRIMARY KEY,
  user_id BIGINT NOT NULL UNIQUE,
  name TEXT NOT NULL DEFAULT '',
  type TEXT NOT NULL DEFAULT 'individual',
  description TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// FindByUser returns the organizer profile of a user or sql.ErrNoRows.
func (r *OrganizerRepo) FindByUser(ctx context.Context, userID int64) (*entity.OrganizerProfile, error) {
	const q = `SELECT id, user_id, name, type, description, created_at FROM organizers WHERE user_id=$1`
	var p entity.OrganizerProfile
	if err := r.db.GetContext(ctx, &p, q, userID); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts p with a new KSUID. It reports false without error when a
// profile for the same user already exists.
func (r *OrganizerRepo) Create(ctx context.Context, p *entity.OrganizerProfile) (bool, error) {
	if p.ID == "" {
		p.ID = utilities.NewKSUID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	const q = `INSERT INTO organizers (id, user_id, name, type, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (user_id) DO NOTHING`
	res, err := r.db.ExecContext(ctx, q, p.ID, p.UserID, p.Name, p.Type, p.Description, p.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("insert organizer: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert organizer: %w", err)
	}
	return n == 1, nil
}
