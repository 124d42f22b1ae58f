package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/kentalbores/IntProg-sub001/internal/user"
	userentity "github.com/kentalbores/IntProg-sub001/internal/user/entity"
)

// userStore holds a single user and applies role writes like repo.UserRepo.
type userStore struct {
	mu sync.Mutex
	u  userentity.User
}

func (s *userStore) Create(ctx context.Context, u *userentity.User) (int64, error) {
	return 0, errors.New("not supported")
}

func (s *userStore) GetByUsername(ctx context.Context, username string) (*userentity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.u.Username != username {
		return nil, sql.ErrNoRows
	}
	cp := s.u
	cp.Roles = append(userentity.RoleSet(nil), s.u.Roles...)
	return &cp, nil
}

func (s *userStore) GetByEmail(ctx context.Context, email string) (*userentity.User, error) {
	return nil, sql.ErrNoRows
}

func (s *userStore) SaveRoles(ctx context.Context, id int64, roles userentity.RoleSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.u.Roles = append(userentity.RoleSet(nil), roles...)
	s.u.RolesList = true
	return nil
}

func (s *userStore) AddRole(ctx context.Context, id int64, role userentity.Role) (userentity.RoleSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.u.Roles = s.u.Roles.Add(role)
	s.u.RolesList = true
	return append(userentity.RoleSet(nil), s.u.Roles...), nil
}

func newWorkflow(t *testing.T, username string) (*user.UserService, *userStore, *fakeOrganizers, *fakeVendors) {
	store := &userStore{u: userentity.User{
		ID:        77,
		Username:  username,
		Email:     username + "@example.com",
		Roles:     userentity.RoleSet{userentity.RoleGuest},
		RolesList: true,
	}}
	profiles, orgs, vendors := newTestService(t)
	svc := user.NewUserService(store, profiles, user.BcryptHasher{Cost: bcrypt.MinCost}, zaptest.NewLogger(t).Sugar())
	return svc, store, orgs, vendors
}

func TestRoleUpdateProvisionsProfilesOnce(t *testing.T) {
	svc, store, orgs, vendors := newWorkflow(t, "zed")
	req := user.RoleUpdateRequest{Username: "zed", Role: json.RawMessage(`["organizer","vendor"]`)}

	for i := 0; i < 2; i++ {
		res, err := svc.UpdateRole(context.Background(), req)
		require.NoError(t, err)
		assert.Empty(t, res.Warnings)
		assert.Equal(t, userentity.RoleSet{userentity.RoleOrganizer, userentity.RoleVendor}, res.Roles)
	}

	assert.Equal(t, userentity.RoleSet{userentity.RoleOrganizer, userentity.RoleVendor}, store.u.Roles)
	assert.Equal(t, 1, orgs.creates)
	assert.Equal(t, 1, vendors.creates)
	require.Contains(t, orgs.byUser, int64(77))
	require.Contains(t, vendors.byUser, int64(77))
	assert.Equal(t, "zed", orgs.byUser[77].Name)
	assert.Equal(t, "zed", vendors.byUser[77].Name)
}

func TestRoleUpdateKeepsRoleWhenProfileFails(t *testing.T) {
	svc, store, orgs, vendors := newWorkflow(t, "yul")
	orgs.createErr = errors.New("connection reset")

	res, err := svc.UpdateRole(context.Background(), user.RoleUpdateRequest{Username: "yul", Role: json.RawMessage(`"organizer"`)})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.True(t, strings.HasPrefix(res.Warnings[0], "failed to create organizer profile:"), res.Warnings[0])
	assert.Contains(t, res.Warnings[0], "connection reset")

	assert.Equal(t, userentity.RoleSet{userentity.RoleGuest, userentity.RoleOrganizer}, res.Roles)
	assert.Equal(t, userentity.RoleSet{userentity.RoleGuest, userentity.RoleOrganizer}, store.u.Roles)
	assert.Zero(t, orgs.creates)
	assert.Zero(t, vendors.creates)
}
