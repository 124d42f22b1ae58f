package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/kentalbores/IntProg-sub001/internal/user/entity"
	userrepo "github.com/kentalbores/IntProg-sub001/internal/user/repo"
)

// PasswordHasher defines minimal hashing interface (abstract so we can swap to argon2 later).
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(hash, pw string) bool
}

// BcryptHasher implementation.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) Hash(pw string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// UserStore is the persistence the service needs; *repo.UserRepo satisfies it.
// Lookups return sql.ErrNoRows for absent users.
type UserStore interface {
	Create(ctx context.Context, u *entity.User) (int64, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	SaveRoles(ctx context.Context, id int64, roles entity.RoleSet) error
	AddRole(ctx context.Context, id int64, role entity.Role) (entity.RoleSet, error)
}

// Provisioner creates the profile that belongs to a newly granted role.
type Provisioner interface {
	Provision(ctx context.Context, u *entity.User, role entity.Role) error
}

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrUserNotFound   = errors.New("user not found")
	ErrStorage        = errors.New("storage failure")
	ErrUserExists     = errors.New("user already exists")
	ErrBadCredentials = errors.New("invalid credentials")
)

const minPasswordLen = 6

// UserService orchestrates registration, authentication and role changes.
type UserService struct {
	repo        UserStore
	provisioner Provisioner
	hasher      PasswordHasher
	logger      *zap.SugaredLogger
}

func NewUserService(r UserStore, p Provisioner, hasher PasswordHasher, logger *zap.SugaredLogger) *UserService {
	if hasher == nil {
		hasher = BcryptHasher{Cost: 12}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &UserService{repo: r, provisioner: p, hasher: hasher, logger: logger}
}

// SignupInput is the data needed to register a user.
type SignupInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// SignupUser creates a guest user with a hashed password.
func (s *UserService) SignupUser(ctx context.Context, in SignupInput) (*entity.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" || email == "" {
		return nil, fmt.Errorf("%w: username and email are required", ErrInvalidRequest)
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email is not valid", ErrInvalidRequest)
	}
	if len(in.Password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidRequest, minPasswordLen)
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &entity.User{
		Username:         username,
		Email:            email,
		PasswordHash:     &hash,
		FirstName:        strings.TrimSpace(in.FirstName),
		LastName:         strings.TrimSpace(in.LastName),
		Roles:            entity.RoleSet{entity.RoleGuest},
		RolesList:        true,
		RegisteredEvents: entity.EventIDs{},
	}
	if _, err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, userrepo.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return u, nil
}

// AuthenticatePassword performs password authentication by email or username.
func (s *UserService) AuthenticatePassword(ctx context.Context, identifier, password string) (*entity.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, ErrBadCredentials
	}

	var u *entity.User
	var err error
	if strings.Contains(identifier, "@") {
		u, err = s.repo.GetByEmail(ctx, strings.ToLower(identifier))
	} else {
		u, err = s.repo.GetByUsername(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBadCredentials
		} // avoid user enumeration
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if u.PasswordHash == nil || *u.PasswordHash == "" {
		return nil, ErrBadCredentials
	}
	if !s.hasher.Verify(*u.PasswordHash, password) {
		return nil, ErrBadCredentials
	}
	return u, nil
}

// GetUser looks a user up by username.
func (s *UserService) GetUser(ctx context.Context, username string) (*entity.User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidRequest)
	}
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return u, nil
}
