package memory

import (
	"context"
	"sync"

	repo "github.com/oksasatya/estate-marketplace/internal/domain/repository"
)

type AuditRepository struct {
	mu      sync.Mutex
	entries []repo.AuditEntry
}

func NewAuditRepository() *AuditRepository { return &AuditRepository{} }

func (r *AuditRepository) Record(_ context.Context, e repo.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return nil
}

// Actions lists recorded actions in order.
func (r *AuditRepository) Actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

func (r *AuditRepository) Entries() []repo.AuditEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]repo.AuditEntry(nil), r.entries...)
}
