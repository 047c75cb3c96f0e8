package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/estate-marketplace/internal/domain"
	"github.com/oksasatya/estate-marketplace/internal/domain/entity"
	repo "github.com/oksasatya/estate-marketplace/internal/domain/repository"
)

// Profile is the signed-in user with computed entitlements.
type Profile struct {
	User                  entity.User
	Status                SubscriptionStatus
	CanAccessPremium      bool
	CanViewMoreProjects   bool
	RemainingViews        *int
	CanAccessBuilderPanel bool
	IsAdmin               bool
}

type UserService struct {
	Users  repo.UserRepository
	Engine *Engine
	Audit  repo.AuditRepository
	Logger *logrus.Logger
}

func NewUserService(users repo.UserRepository, engine *Engine, audit repo.AuditRepository, logger *logrus.Logger) *UserService {
	return &UserService{Users: users, Engine: engine, Audit: audit, Logger: logger}
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.ProfileOf(u), nil
}

// ProfileOf computes entitlements for an already loaded user.
func (s *UserService) ProfileOf(u *entity.User) *Profile {
	return &Profile{
		User:                  *u,
		Status:                s.Engine.Status(u),
		CanAccessPremium:      s.Engine.CanAccessPremiumFeatures(u),
		CanViewMoreProjects:   s.Engine.CanViewMoreProjects(u),
		RemainingViews:        s.Engine.RemainingViews(u),
		CanAccessBuilderPanel: entity.CanAccessBuilderDashboard(u.Role),
		IsAdmin:               entity.IsAdmin(u.Role),
	}
}

// ChangeRole sets the role of targetID. Admin only; admins cannot demote themselves.
func (s *UserService) ChangeRole(ctx context.Context, actor *entity.User, targetID, role string, meta RequestMeta) (*entity.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	r, ok := entity.ParseRole(role)
	if !ok {
		return nil, domain.ErrInvalidRole
	}
	if actor.ID == targetID && r != entity.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	target, err := s.Users.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	prev := target.Role
	if err := s.Users.UpdateRole(ctx, targetID, r); err != nil {
		return nil, err
	}
	target.Role = r
	recordAudit(ctx, s.Audit, s.Logger, repo.AuditEntry{
		UserID:    actor.ID,
		Email:     actor.Email,
		Action:    "role_change",
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		Metadata:  map[string]any{"target_id": targetID, "from": string(prev), "to": string(r)},
	})
	return target, nil
}

// ListUsers pages through accounts. Admin only.
func (s *UserService) ListUsers(ctx context.Context, actor *entity.User, limit, offset int) ([]entity.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.Users.List(ctx, limit, offset)
}
