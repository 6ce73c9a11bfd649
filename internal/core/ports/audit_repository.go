package ports

import (
	"context"

	"github.com/sportsfed/console-gateway/internal/core/domain"
)

// AuditRepository persists session audit events.
type AuditRepository interface {
	Insert(ctx context.Context, event domain.AuditEvent) error
}

// AuditRecorder accepts audit events for asynchronous persistence. Record
// must not block the caller; audit failures never affect session operations.
type AuditRecorder interface {
	Record(event domain.AuditEvent)
}
