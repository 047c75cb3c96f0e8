package application

import (
	"fmt"
	"time"

	"github.com/oksasatya/estate-marketplace/internal/domain"
	"github.com/oksasatya/estate-marketplace/internal/domain/entity"
)

// Engine decides feature access and computes plan/usage state transitions.
// Every mutating method takes a user by value and returns the replacement
// value; the input is never modified.
type Engine struct {
	now func() time.Time
}

// NewEngine returns an engine reading time from now (time.Now when nil).
func NewEngine(now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{now: now}
}

// SubscriptionStatus summarises the remaining subscription time.
type SubscriptionStatus struct {
	IsActive      bool       `json:"is_active"`
	DaysRemaining int        `json:"days_remaining"`
	ExpiryDate    *time.Time `json:"expiry_date"`
}

// SubscribeToPlan activates a catalog plan and resets the view counter.
func (e *Engine) SubscribeToPlan(planID string, u entity.User) (entity.User, error) {
	spec, ok := entity.LookupSubscribable(planID)
	if !ok {
		return u, fmt.Errorf("%w: %q", domain.ErrInvalidPlan, planID)
	}
	next := u.Clone()
	expiry := e.now().AddDate(0, 0, spec.DurationDays)
	next.Plan = spec.Plan
	next.ProjectsLimit = spec.ProjectsLimit
	next.ProjectsViewed = 0
	next.SubscriptionExpiry = &expiry
	return next, nil
}

// ActivateBuilderSubscription promotes u to builder. Calling it again only
// moves the expiry forward. An admin takes the Builder plan but keeps the
// admin role.
func (e *Engine) ActivateBuilderSubscription(u entity.User) entity.User {
	spec := entity.PlanBuilder.Spec()
	next := u.Clone()
	expiry := e.now().AddDate(0, 0, spec.DurationDays)
	if !entity.IsAdmin(u.Role) {
		next.Role = entity.RoleBuilder
	}
	next.Plan = entity.PlanBuilder
	next.ProjectsLimit = spec.ProjectsLimit
	next.ProjectsViewed = 0
	next.SubscriptionExpiry = &expiry
	return next
}

// CancelBuilderSubscription clears plan, limit, counter and expiry together.
// The role is left as is.
func (e *Engine) CancelBuilderSubscription(u entity.User) entity.User {
	next := u.Clone()
	next.Plan = entity.PlanNone
	next.ProjectsLimit = 0
	next.ProjectsViewed = 0
	next.SubscriptionExpiry = nil
	return next
}

// CanAccessPremiumFeatures never fails; missing data means no access.
func (e *Engine) CanAccessPremiumFeatures(u *entity.User) bool {
	if u == nil || u.Plan.IsNone() {
		return false
	}
	if u.SubscriptionExpiry != nil && !e.now().Before(*u.SubscriptionExpiry) {
		return false
	}
	return true
}

// CanViewMoreProjects reports whether one more project may be unlocked.
func (e *Engine) CanViewMoreProjects(u *entity.User) bool {
	if !e.CanAccessPremiumFeatures(u) {
		return false
	}
	if unlimited(u) {
		return true
	}
	return u.ProjectsViewed < u.ProjectsLimit
}

// RecordProjectView consumes one view. It does not clamp: callers must check
// CanViewMoreProjects first to keep ProjectsViewed <= ProjectsLimit.
func (e *Engine) RecordProjectView(u entity.User) entity.User {
	if unlimited(&u) || !e.CanAccessPremiumFeatures(&u) {
		return u
	}
	next := u.Clone()
	next.ProjectsViewed++
	return next
}

// Status rounds the remaining time up to whole days.
func (e *Engine) Status(u *entity.User) SubscriptionStatus {
	if u == nil || u.SubscriptionExpiry == nil {
		return SubscriptionStatus{}
	}
	exp := *u.SubscriptionExpiry
	days := daysUntil(e.now(), exp)
	return SubscriptionStatus{IsActive: days > 0, DaysRemaining: days, ExpiryDate: &exp}
}

// RemainingViews is nil for unlimited plans.
func (e *Engine) RemainingViews(u *entity.User) *int {
	if u == nil || unlimited(u) {
		return nil
	}
	n := 0
	if e.CanAccessPremiumFeatures(u) && u.ProjectsLimit > u.ProjectsViewed {
		n = u.ProjectsLimit - u.ProjectsViewed
	}
	return &n
}

func unlimited(u *entity.User) bool {
	return entity.IsBuilder(u.Role) || u.Plan == entity.PlanBuilder
}

func daysUntil(now, exp time.Time) int {
	const day = 24 * time.Hour
	d := exp.Sub(now)
	if d <= 0 {
		return 0
	}
	days := int(d / day)
	if d%day != 0 {
		days++
	}
	return days
}
