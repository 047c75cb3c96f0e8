// Package memory holds process-local repositories used when STORAGE_DRIVER=memory
// and by service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/oksasatya/estate-marketplace/internal/domain"
	"github.com/oksasatya/estate-marketplace/internal/domain/entity"
	repo "github.com/oksasatya/estate-marketplace/internal/domain/repository"
)

type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]entity.User
	byEmail map[string]string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{byID: map[string]entity.User{}, byEmail: map[string]string{}}
}

var _ repo.UserRepository = (*UserRepository)(nil)

// Create does not commit once ctx is done, so a caller that gave up waiting
// never finds the user created later.
func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := r.byEmail[u.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = u.CreatedAt
	}
	r.byID[u.ID] = u.Clone()
	r.byEmail[u.Email] = u.ID
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := u.Clone()
	return &out, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	id, ok := r.byEmail[email]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepository) List(_ context.Context, limit, offset int) ([]entity.User, error) {
	r.mu.RLock()
	all := make([]entity.User, 0, len(r.byID))
	for _, u := range r.byID {
		all = append(all, u.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].Email < all[j].Email
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})
	if offset >= len(all) {
		return []entity.User{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *UserRepository) UpdateEntitlement(_ context.Context, u *entity.User) (entity.Role, error) {
	return r.writeEntitlement(u, false)
}

func (r *UserRepository) PromoteBuilder(_ context.Context, u *entity.User) (entity.Role, error) {
	return r.writeEntitlement(u, true)
}

func (r *UserRepository) writeEntitlement(u *entity.User, promote bool) (entity.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[u.ID]
	if !ok {
		return "", domain.ErrUserNotFound
	}
	next := u.Clone()
	if promote && !entity.IsAdmin(cur.Role) {
		cur.Role = entity.RoleBuilder
	}
	cur.Plan = next.Plan
	cur.ProjectsLimit = next.ProjectsLimit
	cur.ProjectsViewed = next.ProjectsViewed
	cur.SubscriptionExpiry = next.SubscriptionExpiry
	cur.UpdatedAt = time.Now().UTC()
	r.byID[u.ID] = cur
	return cur.Role, nil
}

func (r *UserRepository) SetProjectsViewed(_ context.Context, id string, from, to int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[id]
	if !ok {
		return false, domain.ErrUserNotFound
	}
	if cur.ProjectsViewed != from {
		return false, nil
	}
	cur.ProjectsViewed = to
	cur.UpdatedAt = time.Now().UTC()
	r.byID[id] = cur
	return true, nil
}

func (r *UserRepository) UpdateRole(_ context.Context, id string, role entity.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	cur.Role = role
	cur.UpdatedAt = time.Now().UTC()
	r.byID[id] = cur
	return nil
}
