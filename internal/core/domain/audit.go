package domain

import "time"

// AuditAction identifies a session lifecycle event worth recording.
type AuditAction string

const (
	AuditLogin          AuditAction = "login"
	AuditRegister       AuditAction = "register"
	AuditLogout         AuditAction = "logout"
	AuditRevalidated    AuditAction = "revalidated"
	AuditSessionRevoked AuditAction = "session_revoked"
)

// AuditEvent records a single session lifecycle action for the audit trail.
type AuditEvent struct {
	Timestamp time.Time   `json:"timestamp"`
	Action    AuditAction `json:"action"`
	SessionID string      `json:"session_id"`
	Username  string      `json:"username,omitempty"`
	Role      Role        `json:"role,omitempty"`
	Success   bool        `json:"success"`
	Error     string      `json:"error,omitempty"`
}
