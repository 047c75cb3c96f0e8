package mailer

import (
	"context"
	"errors"
	"fmt"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

// Mailgun delivers rendered emails through the Mailgun HTTP API. The client is
// built once and shared by every Send.
type Mailgun struct {
	client  *mg.MailgunImpl
	Sender  string
	Timeout time.Duration
}

type MailgunOption func(*Mailgun)

// WithAPIBase points the client at another API host, such as the EU region
// (https://api.eu.mailgun.net/v3).
func WithAPIBase(url string) MailgunOption {
	return func(m *Mailgun) {
		if url != "" {
			m.client.SetAPIBase(url)
		}
	}
}

func NewMailgun(domain, apiKey, sender string, opts ...MailgunOption) *Mailgun {
	m := &Mailgun{client: mg.NewMailgun(domain, apiKey), Sender: sender, Timeout: 10 * time.Second}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Send sends one message. html is optional; text is always set as fallback.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) error {
	if to == "" {
		return errors.New("mailgun: empty recipient")
	}
	msg := m.client.NewMessage(m.Sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	c, cancel := context.WithTimeout(ctx, m.Timeout)
	defer cancel()
	if _, _, err := m.client.Send(c, msg); err != nil {
		return fmt.Errorf("mailgun send to %s: %w", to, err)
	}
	return nil
}
