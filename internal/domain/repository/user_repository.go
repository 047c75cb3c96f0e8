package repository

import (
	"context"

	"github.com/oksasatya/estate-marketplace/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
// Lookups return domain.ErrUserNotFound when no row matches; Create returns
// domain.ErrDuplicateEmail on an email conflict.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context, limit, offset int) ([]entity.User, error)

	// UpdateEntitlement writes plan, limit, counter and expiry in one statement
	// and returns the stored role. The role column is never written, so a
	// concurrent UpdateRole is not undone.
	UpdateEntitlement(ctx context.Context, u *entity.User) (entity.Role, error)
	// PromoteBuilder is UpdateEntitlement that also sets the role to builder in
	// the same statement. Admins keep their role.
	PromoteBuilder(ctx context.Context, u *entity.User) (entity.Role, error)
	// SetProjectsViewed moves the counter from -> to and reports false when
	// the stored counter no longer equals from.
	SetProjectsViewed(ctx context.Context, id string, from, to int) (bool, error)
	UpdateRole(ctx context.Context, id string, role entity.Role) error
}
