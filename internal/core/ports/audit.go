package ports

import (
	"context"

	"github.com/klinik-sejahtera/clinic-portal/internal/core/domain"
)

// AuditRecorder accepts session lifecycle events for the audit trail.
// Recording is best-effort; implementations must never block the session
// operations that emit events.
type AuditRecorder interface {
	Record(event domain.AuditEvent)
}

// AuditRepository persists audit events.
type AuditRepository interface {
	Insert(ctx context.Context, event domain.AuditEvent) error
}

// NoOpAudit drops every event.
type NoOpAudit struct{}

func (NoOpAudit) Record(domain.AuditEvent) {}
