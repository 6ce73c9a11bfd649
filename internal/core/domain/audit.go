package domain

import "time"

// AuditAction labels a recorded session event.
type AuditAction string

const (
	AuditLogin        AuditAction = "login"
	AuditLoginDenied  AuditAction = "login_denied"
	AuditLoginFailed  AuditAction = "login_failed"
	AuditLogout       AuditAction = "logout"
	AuditInvalidation AuditAction = "invalidation"
)

// AuditEvent is one entry in the session audit trail. Actor is the operator
// email when known; Detail carries the denial or invalidation reason.
type AuditEvent struct {
	Actor     string
	Action    AuditAction
	Detail    string
	Timestamp time.Time
}
