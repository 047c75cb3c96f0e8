package repository

import "context"

// AuditEntry is one security-relevant event.
type AuditEntry struct {
	UserID    string
	Email     string
	Action    string
	IP        string
	UserAgent string
	Metadata  map[string]any
}

type AuditRepository interface {
	Record(ctx context.Context, e AuditEntry) error
}
