package user

import (
	"context"
	"errors"

	"github.com/benmalka/gatherly/internal/auth"
	"github.com/benmalka/gatherly/pkg/middleware"
)

// Common errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyInUse  = errors.New("User already exists")
	ErrInvalidCredentials = errors.New("Invalid email or password")
)

// Service handles account business logic: registration, login and CRUD
type Service struct {
	repo       *Repository
	tokens     *auth.TokenService
	bcryptCost int
}

// NewService creates a new user service
func NewService(repo *Repository, tokens *auth.TokenService, bcryptCost int) *Service {
	return &Service{repo: repo, tokens: tokens, bcryptCost: bcryptCost}
}

// Register creates a new account with a hashed password. The email must
// be unused; roles default to the invite role when none are supplied.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*User, error) {
	existing, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyInUse
	}

	hash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	roles := req.Roles
	if len(roles) == 0 {
		roles = auth.DefaultRoles
	}

	return s.repo.Create(ctx, req.Name, req.Email, hash, roles)
}

// Login verifies the credentials and issues a signed token whose subject
// is the user ID and whose claims carry the stored email and roles.
// Unknown email and wrong password fail identically.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (string, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrInvalidCredentials
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	return s.tokens.Issue(user.ID, user.Email, user.Roles)
}

// GetByID retrieves a user by their ID
func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// List retrieves all users with pagination
func (s *Service) List(ctx context.Context, page, perPage int) ([]*User, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.List(ctx, perPage, offset)
}

// Update modifies an existing user's profile or role set
func (s *Service) Update(ctx context.Context, id int64, req *UpdateUserRequest) (*User, error) {
	if req.Email != nil {
		existing, err := s.repo.GetByEmail(ctx, *req.Email)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != id {
			return nil, ErrEmailAlreadyInUse
		}
	}

	user, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// Delete removes a user
func (s *Service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrUserNotFound
	}
	return nil
}

// FindIDByEmail resolves an email address to a user ID. Membership
// endpoints accept emails at the API boundary but store IDs.
func (s *Service) FindIDByEmail(ctx context.Context, email string) (int64, bool, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return 0, false, err
	}
	if user == nil {
		return 0, false, nil
	}
	return user.ID, true, nil
}

// LoadIdentity implements middleware.UserLoader: it resolves a token
// subject to the currently stored roles, so role changes take effect
// immediately on the store-backed auth path.
func (s *Service) LoadIdentity(ctx context.Context, userID int64) (*middleware.Identity, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	return &middleware.Identity{
		UserID: user.ID,
		Email:  user.Email,
		Roles:  user.Roles,
	}, nil
}
