package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/kentalbores/IntProg-sub001/internal/profile/entity"
	"github.com/kentalbores/IntProg-sub001/pkg/utilities"
)

// VendorRepo stores vendor profiles, one per user.
type VendorRepo struct {
	db *sqlx.DB
}

func NewVendorRepo(db *sqlx.DB) *VendorRepo { return &VendorRepo{db: db} }

func (r *VendorRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS vendors (
  id VARCHAR(27) PRIMARY KEY,
  user_id BIGINT NOT NULL UNIQUE,
  name TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  address TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

func (r *VendorRepo) FindByUser(ctx context.Context, userID int64) (*entity.VendorProfile, error) {
	const q = `SELECT id, user_id, name, description, address, created_at FROM vendors WHERE user_id=$1`
	var p entity.VendorProfile
	if err := r.db.GetContext(ctx, &p, q, userID); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create behaves like OrganizerRepo.Create.
func (r *VendorRepo) Create(ctx context.Context, p *entity.VendorProfile) (bool, error) {
	if p.ID == "" {
		p.ID = utilities.NewKSUID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	const q = `INSERT INTO vendors (id, user_id, name, description, address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (user_id) DO NOTHING`
	res, err := r.db.ExecContext(ctx, q, p.ID, p.UserID, p.Name, p.Description, p.Address, p.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("insert vendor: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert vendor: %w", err)
	}
	return n == 1, nil
}
