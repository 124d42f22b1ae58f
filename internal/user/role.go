package user

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kentalbores/IntProg-sub001/internal/metrics"
	"github.com/kentalbores/IntProg-sub001/internal/user/entity"
)

// RoleUpdateRequest is the body of POST /role. Role is either a JSON string or
// an array of strings.
type RoleUpdateRequest struct {
	Username string          `json:"username"`
	Role     json.RawMessage `json:"role"`
}

// RoleUpdateResult reports the roles after an update. Warnings lists profile
// provisioning failures; the role change itself is kept when they occur.
type RoleUpdateResult struct {
	Username string
	Roles    entity.RoleSet
	Warnings []string
}

// provisioned roles in the order their warnings are reported.
var provisionedRoles = []entity.Role{entity.RoleOrganizer, entity.RoleVendor}

// UpdateRole merges the requested roles into the user's stored roles and
// provisions a profile for every organizer or vendor role that was added.
func (s *UserService) UpdateRole(ctx context.Context, req RoleUpdateRequest) (*RoleUpdateResult, error) {
	res, err := s.updateRole(ctx, req)
	switch {
	case err == nil:
		metrics.RoleUpdates.WithLabelValues(metrics.OutcomeUpdated).Inc()
	case errors.Is(err, ErrInvalidRequest):
		metrics.RoleUpdates.WithLabelValues(metrics.OutcomeInvalid).Inc()
	case errors.Is(err, ErrUserNotFound):
		metrics.RoleUpdates.WithLabelValues(metrics.OutcomeNotFound).Inc()
	default:
		metrics.RoleUpdates.WithLabelValues(metrics.OutcomeStorageError).Inc()
	}
	return res, err
}

func (s *UserService) updateRole(ctx context.Context, req RoleUpdateRequest) (*RoleUpdateResult, error) {
	if strings.TrimSpace(req.Username) == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidRequest)
	}
	rr, err := entity.ParseRoleRequest(req.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	u, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: find user: %v", ErrStorage, err)
	}

	previous := u.StoredRoles()
	var updated entity.RoleSet
	if !rr.List && previous.List {
		updated, err = s.repo.AddRole(ctx, u.ID, rr.Roles[0])
	} else {
		updated = entity.MergeRoles(previous, rr)
		err = s.repo.SaveRoles(ctx, u.ID, updated)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: save roles: %v", ErrStorage, err)
	}
	u.Roles = updated
	u.RolesList = true

	s.logger.Infow("roles updated", "username", u.Username, "previous", previous.Roles.Strings(), "roles", updated.Strings())

	return &RoleUpdateResult{
		Username: u.Username,
		Roles:    updated,
		Warnings: s.provision(ctx, u, updated.Difference(previous.Roles)),
	}, nil
}

// provision runs the provisioner for each added role concurrently and turns
// failures into warnings. The roles are already written, so provisioning is
// detached from cancellation of the request.
func (s *UserService) provision(ctx context.Context, u *entity.User, added entity.RoleSet) []string {
	if s.provisioner == nil {
		return nil
	}
	ctx = context.WithoutCancel(ctx)
	failures := make([]error, len(provisionedRoles))
	var g errgroup.Group
	for i, role := range provisionedRoles {
		if !added.Contains(role) {
			continue
		}
		g.Go(func() error {
			failures[i] = s.provisioner.Provision(ctx, u, role)
			return nil
		})
	}
	_ = g.Wait()

	var warnings []string
	for i, err := range failures {
		if err == nil {
			continue
		}
		role := provisionedRoles[i]
		s.logger.Warnw("profile provisioning failed", "username", u.Username, "role", role, "err", err)
		warnings = append(warnings, fmt.Sprintf("failed to create %s profile: %v", role, err))
	}
	return warnings
}
