// Package profile provisions and serves the role-specific profiles of a user.
package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kentalbores/IntProg-sub001/internal/metrics"
	"github.com/kentalbores/IntProg-sub001/internal/profile/entity"
	userentity "github.com/kentalbores/IntProg-sub001/internal/user/entity"
)

// ErrProfileNotFound is returned when a user has no profile of the requested kind.
var ErrProfileNotFound = errors.New("profile not found")

// OrganizerStore is satisfied by repo.OrganizerRepo.
type OrganizerStore interface {
	FindByUser(ctx context.Context, userID int64) (*entity.OrganizerProfile, error)
	Create(ctx context.Context, p *entity.OrganizerProfile) (bool, error)
}

// VendorStore is satisfied by repo.VendorRepo.
type VendorStore interface {
	FindByUser(ctx context.Context, userID int64) (*entity.VendorProfile, error)
	Create(ctx context.Context, p *entity.VendorProfile) (bool, error)
}

// Service creates profiles lazily and looks them up.
type Service struct {
	organizers OrganizerStore
	vendors    VendorStore
	logger     *zap.SugaredLogger
}

func NewService(organizers OrganizerStore, vendors VendorStore, logger *zap.SugaredLogger) *Service {
	return &Service{organizers: organizers, vendors: vendors, logger: logger}
}

// Provision makes sure u has exactly one profile for role. It is a no-op when
// the profile already exists or when role carries no profile.
func (s *Service) Provision(ctx context.Context, u *userentity.User, role userentity.Role) error {
	var err error
	switch role {
	case userentity.RoleOrganizer:
		err = s.provisionOrganizer(ctx, u)
	case userentity.RoleVendor:
		err = s.provisionVendor(ctx, u)
	default:
		return nil
	}
	if err != nil {
		metrics.ProfileProvisioning.WithLabelValues(string(role), metrics.ProvisionFailed).Inc()
	}
	return err
}

func (s *Service) provisionOrganizer(ctx context.Context, u *userentity.User) error {
	_, err := s.organizers.FindByUser(ctx, u.ID)
	if err == nil {
		metrics.ProfileProvisioning.WithLabelValues(string(userentity.RoleOrganizer), metrics.ProvisionExists).Inc()
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("find organizer profile: %w", err)
	}
	p := &entity.OrganizerProfile{
		UserID:      u.ID,
		Name:        DisplayName(u),
		Type:        entity.OrganizerIndividual,
		Description: "",
	}
	created, err := s.organizers.Create(ctx, p)
	if err != nil {
		return err
	}
	s.record(u, userentity.RoleOrganizer, created)
	return nil
}

func (s *Service) provisionVendor(ctx context.Context, u *userentity.User) error {
	_, err := s.vendors.FindByUser(ctx, u.ID)
	if err == nil {
		metrics.ProfileProvisioning.WithLabelValues(string(userentity.RoleVendor), metrics.ProvisionExists).Inc()
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("find vendor profile: %w", err)
	}
	p := &entity.VendorProfile{
		UserID:      u.ID,
		Name:        DisplayName(u),
		Description: "",
		Address:     "",
	}
	created, err := s.vendors.Create(ctx, p)
	if err != nil {
		return err
	}
	s.record(u, userentity.RoleVendor, created)
	return nil
}

// record counts a finished create; created is false when a concurrent request won the insert.
func (s *Service) record(u *userentity.User, role userentity.Role, created bool) {
	outcome := metrics.ProvisionCreated
	if !created {
		outcome = metrics.ProvisionExists
	}
	metrics.ProfileProvisioning.WithLabelValues(string(role), outcome).Inc()
	s.logger.Debugw("profile provisioned", "username", u.Username, "role", role, "created", created)
}

// Organizer returns the organizer profile of a user.
func (s *Service) Organizer(ctx context.Context, userID int64) (*entity.OrganizerProfile, error) {
	p, err := s.organizers.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return p, nil
}

// Vendor returns the vendor profile of a user.
func (s *Service) Vendor(ctx context.Context, userID int64) (*entity.VendorProfile, error) {
	p, err := s.vendors.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return p, nil
}

// DisplayName is "first last" trimmed, or the username when both are empty.
func DisplayName(u *userentity.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}
