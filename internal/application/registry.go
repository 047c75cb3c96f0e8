package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/estate-marketplace/internal/domain"
	"github.com/oksasatya/estate-marketplace/internal/domain/entity"
	repo "github.com/oksasatya/estate-marketplace/internal/domain/repository"
	"github.com/oksasatya/estate-marketplace/pkg/helpers"
)

// NewUserInput carries registration data. Password is dropped once hashed.
type NewUserInput struct {
	Name     string
	Email    string
	Password string
}

// Registry owns durable user records and their credential secrets.
type Registry struct {
	Users      repo.UserRepository
	AdminEmail string
	Iterations int
	now        func() time.Time
}

func NewRegistry(users repo.UserRepository, adminEmail string, iterations int) *Registry {
	if iterations <= 0 {
		iterations = helpers.DefaultKDFIterations
	}
	return &Registry{Users: users, AdminEmail: adminEmail, Iterations: iterations, now: time.Now}
}

// RoleFor maps the reserved administrative email to admin and everyone else to user.
func (r *Registry) RoleFor(email string) entity.Role {
	if r.AdminEmail != "" && email == r.AdminEmail {
		return entity.RoleAdmin
	}
	return entity.RoleUser
}

// CreateUser registers a new account. Emails are matched exactly.
func (r *Registry) CreateUser(ctx context.Context, in NewUserInput) (*entity.User, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	existing, err := r.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateEmail
	}

	hash, salt, err := helpers.HashPassword(in.Password, r.Iterations)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	// hashing is slow; a caller that gave up meanwhile must not get an account
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := r.now().UTC()
	u := &entity.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: hash,
		PasswordSalt: salt,
		Role:         r.RoleFor(email),
		Plan:         entity.PlanNone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := r.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// VerifyUserPassword returns the user when password matches. An unknown email
// and a wrong password both return nil, nil.
func (r *Registry) VerifyUserPassword(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := r.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		// burn the same work so response time does not reveal registration
		_ = helpers.DerivePasswordKey(password, []byte(email), r.Iterations)
		return nil, nil
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, u.PasswordSalt, password) {
		return nil, nil
	}
	return u, nil
}

// GetUserByEmail returns nil, nil when no account uses email.
func (r *Registry) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, err := r.Users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *Registry) GetUserByID(ctx context.Context, id string) (*entity.User, error) {
	return r.Users.GetByID(ctx, id)
}
