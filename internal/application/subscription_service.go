package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/estate-marketplace/internal/domain"
	"github.com/oksasatya/estate-marketplace/internal/domain/entity"
	repo "github.com/oksasatya/estate-marketplace/internal/domain/repository"
)

// UnlockLedger remembers which listings a user has already paid a view for
// under the current subscription.
type UnlockLedger interface {
	Has(ctx context.Context, userID, listingID string) (bool, error)
	Add(ctx context.Context, userID, listingID string, until *time.Time) error
	Reset(ctx context.Context, userID string) error
}

// SubscriptionService applies engine transitions to stored users. Each
// operation reads the live record and writes the plan fields back in one
// statement. The role is never written from the read copy; the returned user
// carries the role stored at write time.
type SubscriptionService struct {
	Users    repo.UserRepository
	Engine   *Engine
	Unlocks  UnlockLedger
	Notifier Notifier
	Audit    repo.AuditRepository
	Logger   *logrus.Logger
}

func NewSubscriptionService(users repo.UserRepository, engine *Engine, unlocks UnlockLedger, notifier Notifier, audit repo.AuditRepository, logger *logrus.Logger) *SubscriptionService {
	return &SubscriptionService{Users: users, Engine: engine, Unlocks: unlocks, Notifier: notifier, Audit: audit, Logger: logger}
}

// Subscribe activates planID for the user. Unknown plans fail with
// domain.ErrInvalidPlan and nothing is written.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID, planID string, meta RequestMeta) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	next, err := s.Engine.SubscribeToPlan(planID, *u)
	if err != nil {
		return nil, err
	}
	if err := s.commit(ctx, &next, s.Users.UpdateEntitlement); err != nil {
		return nil, err
	}
	s.after(ctx, next, "subscribe", meta, map[string]any{"plan": next.Plan.String()})
	return &next, nil
}

// ActivateBuilder promotes the user to builder for another 30 days. Admins
// get the Builder plan and stay admins.
func (s *SubscriptionService) ActivateBuilder(ctx context.Context, userID string, meta RequestMeta) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	next := s.Engine.ActivateBuilderSubscription(*u)
	if err := s.commit(ctx, &next, s.Users.PromoteBuilder); err != nil {
		return nil, err
	}
	s.after(ctx, next, "activate_builder", meta, nil)
	return &next, nil
}

// CancelBuilder drops the builder plan. Only builders, admins, or holders of
// the Builder plan may cancel it.
func (s *SubscriptionService) CancelBuilder(ctx context.Context, userID string, meta RequestMeta) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !entity.CanAccessBuilderDashboard(u.Role) && u.Plan != entity.PlanBuilder {
		return nil, domain.ErrForbidden
	}
	next := s.Engine.CancelBuilderSubscription(*u)
	role, err := s.Users.UpdateEntitlement(ctx, &next)
	if err != nil {
		return nil, err
	}
	next.Role = role
	s.resetUnlocks(ctx, next.ID)
	recordAudit(ctx, s.Audit, s.Logger, repo.AuditEntry{
		UserID: next.ID, Email: next.Email, Action: "cancel_builder", IP: meta.IP, UserAgent: meta.UserAgent,
	})
	return &next, nil
}

type entitlementWrite func(ctx context.Context, u *entity.User) (entity.Role, error)

func (s *SubscriptionService) commit(ctx context.Context, next *entity.User, write entitlementWrite) error {
	role, err := write(ctx, next)
	if err != nil {
		return err
	}
	next.Role = role
	// a new plan starts with a fresh view allowance
	s.resetUnlocks(ctx, next.ID)
	return nil
}

func (s *SubscriptionService) after(ctx context.Context, u entity.User, action string, meta RequestMeta, md map[string]any) {
	recordAudit(ctx, s.Audit, s.Logger, repo.AuditEntry{
		UserID: u.ID, Email: u.Email, Action: action, IP: meta.IP, UserAgent: meta.UserAgent, Metadata: md,
	})
	if s.Notifier != nil {
		if err := s.Notifier.PlanActivated(ctx, u); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("enqueue plan email failed")
		}
	}
}

func (s *SubscriptionService) resetUnlocks(ctx context.Context, userID string) {
	if s.Unlocks == nil {
		return
	}
	if err := s.Unlocks.Reset(ctx, userID); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("reset unlocked listings failed")
	}
}
