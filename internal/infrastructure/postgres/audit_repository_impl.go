package postgres

import (
	"context"
	"encoding/json"

	"github.com/oksasatya/estate-marketplace/internal/domain/repository"
)

type AuditRepository struct {
	db DB
}

func NewAuditRepository(db DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Record(ctx context.Context, e repository.AuditEntry) error {
	md := e.Metadata
	if md == nil {
		md = map[string]any{}
	}
	b, err := json.Marshal(md)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO audit_logs (user_id, email, action, ip, user_agent, metadata)
		VALUES (NULLIF($1, '')::uuid, $2, $3, $4, $5, $6)
	`, e.UserID, e.Email, e.Action, e.IP, e.UserAgent, b)
	return err
}

var _ repository.AuditRepository = (*AuditRepository)(nil)
