package templates

import "time"

// Brand is the sender identity stamped on every email.
type Brand struct {
	AppName        string
	CompanyName    string
	CompanyAddress string
	LogoURL        string
	SupportURL     string
	PrivacyURL     string
	UnsubscribeURL string
	DashboardURL   string
}

type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

func WithExpiresAt(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.ExpiresAt = utc
		d.ExpiresAtText = utc.Format("02 January 2006")
	}
}

// WithPlan describes the subscription the email is about.
func WithPlan(name string, limit int, unlimited bool) Option {
	return func(d *EmailData) {
		d.PlanName = name
		d.ProjectsLimit = limit
		d.Unlimited = unlimited
	}
}

// NewBaseEmailData fills brand fields, then applies opts.
func NewBaseEmailData(b Brand, typ, name, email, recipient string, opts ...Option) EmailData {
	d := EmailData{
		Name:           name,
		Email:          email,
		RecipientEmail: recipient,
		Type:           typ,

		CompanyName:    b.CompanyName,
		CompanyAddress: b.CompanyAddress,
		AppName:        b.AppName,

		LogoURL:        b.LogoURL,
		SupportURL:     b.SupportURL,
		PrivacyURL:     b.PrivacyURL,
		UnsubscribeURL: b.UnsubscribeURL,
		DashboardURL:   b.DashboardURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}
