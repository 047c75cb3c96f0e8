package application

import (
	"context"
	"time"

	"github.com/oksasatya/estate-marketplace/internal/domain/entity"
	"github.com/oksasatya/estate-marketplace/pkg/mailer"
	mailtpl "github.com/oksasatya/estate-marketplace/pkg/mailer/templates"
)

// Notifier sends account notifications. Delivery is asynchronous and best effort.
type Notifier interface {
	Welcome(ctx context.Context, u entity.User) error
	PlanActivated(ctx context.Context, u entity.User) error
}

// Publisher puts a JSON job on the mail queue.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// MailNotifier turns notifications into email jobs for the mail worker.
type MailNotifier struct {
	Publisher Publisher
	Brand     mailtpl.Brand
	now       func() time.Time
}

func NewMailNotifier(p Publisher, brand mailtpl.Brand) *MailNotifier {
	return &MailNotifier{Publisher: p, Brand: brand, now: time.Now}
}

func (n *MailNotifier) Welcome(ctx context.Context, u entity.User) error {
	data := mailtpl.NewBaseEmailData(n.Brand, mailtpl.Welcome, u.Name, u.Email, u.Email,
		mailtpl.WithTime(n.now()))
	return n.publish(ctx, u.Email, data)
}

func (n *MailNotifier) PlanActivated(ctx context.Context, u entity.User) error {
	spec := u.Plan.Spec()
	opts := []mailtpl.Option{
		mailtpl.WithTime(n.now()),
		mailtpl.WithPlan(spec.Name, spec.ProjectsLimit, spec.Unlimited),
	}
	if u.SubscriptionExpiry != nil {
		opts = append(opts, mailtpl.WithExpiresAt(*u.SubscriptionExpiry))
	}
	data := mailtpl.NewBaseEmailData(n.Brand, mailtpl.PlanActivated, u.Name, u.Email, u.Email, opts...)
	return n.publish(ctx, u.Email, data)
}

func (n *MailNotifier) publish(ctx context.Context, to string, data mailtpl.EmailData) error {
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return n.Publisher.PublishJSON(c, mailer.EmailJob{
		To:       to,
		Template: mailtpl.Universal,
		Data:     mailtpl.ToMap(data),
	})
}
