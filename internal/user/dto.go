package user

import (
	"regexp"

	"github.com/benmalka/gatherly/internal/auth"
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// RegisterRequest represents the request body for registering a user
type RegisterRequest struct {
	Name     string   `json:"name" validate:"required"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required"`
	Roles    []string `json:"roles,omitempty"`
}

// Validate checks required fields, email format and password strength
func (r *RegisterRequest) Validate() []string {
	var errs []string
	if r.Name == "" {
		errs = append(errs, "name is required")
	}
	if r.Email == "" {
		errs = append(errs, "email is required")
	} else if !emailRe.MatchString(r.Email) {
		errs = append(errs, "invalid email format")
	}
	if r.Password == "" {
		errs = append(errs, "password is required")
	} else if ok, reasons := auth.DefaultPolicy.Validate(r.Password); !ok {
		errs = append(errs, reasons...)
	}
	return errs
}

// LoginRequest represents the request body for logging in
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserRequest represents the request body for updating a user.
// Nil fields are left unchanged; a non-nil roles slice replaces the set.
type UpdateUserRequest struct {
	Name  *string  `json:"name,omitempty"`
	Email *string  `json:"email,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// Validate checks the optional fields that are present
func (r *UpdateUserRequest) Validate() []string {
	var errs []string
	if r.Email != nil && !emailRe.MatchString(*r.Email) {
		errs = append(errs, "invalid email format")
	}
	if r.Name != nil && *r.Name == "" {
		errs = append(errs, "name cannot be empty")
	}
	return errs
}

// UserResponse represents the response for a single user
type UserResponse struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Roles     []string `json:"roles"`
	CreatedAt string   `json:"created_at"`
}

// TokenResponse is the body of a successful login
type TokenResponse struct {
	Token string `json:"token"`
}

// ToResponse converts a User model to a UserResponse DTO
func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Roles:     u.Roles,
		CreatedAt: u.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
