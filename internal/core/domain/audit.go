package domain

import "time"

const (
	AuditRegister      = "REGISTER"
	AuditEmailVerified = "EMAIL_VERIFIED"
	AuditProfileUpdate = "PROFILE_UPDATE"
	AuditAdminRegister = "ADMIN_REGISTER"
)

// AuditEntry records a security-relevant change made to a user account.
type AuditEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
