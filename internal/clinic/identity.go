package clinic

import (
	"fmt"

	"clinic-go/internal/model"
)

// IdentityService handles credential verification and user creation.
type IdentityService struct {
	stores StoreProvider
	hasher PasswordHasher
	logger Logger
	clock  Clock
	idgen  IDGenerator
}

// NewIdentityService creates a new IdentityService with the provided dependencies.
func NewIdentityService(stores StoreProvider, hasher PasswordHasher, logger Logger, clock Clock, idgen IDGenerator) *IdentityService {
	return &IdentityService{
		stores: stores,
		hasher: hasher,
		logger: logger,
		clock:  clock,
		idgen:  idgen,
	}
}

// CreateUserParams holds the fields required to create a user.
type CreateUserParams struct {
	Email     string
	Password  string
	Role      string
	FirstName string
	LastName  string
}

// Authenticate verifies the credentials and returns the user record with
// the password hash stripped. Unknown email and wrong password both return
// ErrAuthFailed, so the caller cannot tell which case applied.
func (s *IdentityService) Authenticate(email, password string) (*model.User, error) {
	store, err := s.stores.Acquire()
	if err != nil {
		return nil, err
	}

	user, err := store.FindUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if user == nil {
		return nil, ErrAuthFailed
	}

	if !s.hasher.Verify(user.PasswordHash, password) {
		s.logger.Warn("authentication failed", "email", email)
		return nil, ErrAuthFailed
	}

	s.logger.Info("user authenticated", "user_id", user.ID)
	return stripHash(user), nil
}

// CreateUser validates the parameters, rejects duplicate emails, hashes the
// password and persists the new user. The returned record carries no hash.
func (s *IdentityService) CreateUser(p CreateUserParams) (*model.User, error) {
	checks := []struct{ field, value string }{
		{"email", p.Email},
		{"password", p.Password},
		{"role", p.Role},
		{"first_name", p.FirstName},
		{"last_name", p.LastName},
	}
	for _, c := range checks {
		if err := requireField(c.field, c.value); err != nil {
			return nil, err
		}
	}

	store, err := s.stores.Acquire()
	if err != nil {
		return nil, err
	}

	existing, err := store.FindUserByEmail(p.Email)
	if err != nil {
		return nil, fmt.Errorf("checking for existing email: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("email %s: %w", p.Email, ErrConflict)
	}

	hash, err := s.hasher.Hash(p.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{
		ID:           s.idgen.New(),
		Email:        p.Email,
		PasswordHash: hash,
		Role:         p.Role,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		CreatedAt:    s.clock.Now(),
	}
	if err := store.CreateUser(user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user created", "user_id", user.ID, "role", user.Role)
	return stripHash(user), nil
}

// ListUsers returns all users with password hashes stripped.
func (s *IdentityService) ListUsers() ([]*model.User, error) {
	store, err := s.stores.Acquire()
	if err != nil {
		return nil, err
	}

	users, err := store.ListUsers()
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	for i, u := range users {
		users[i] = stripHash(u)
	}
	return users, nil
}

// stripHash returns a copy of the user with the password hash cleared.
func stripHash(u *model.User) *model.User {
	out := *u
	out.PasswordHash = ""
	return &out
}
