package domain

import "time"

// Role scopes what a reporting API caller may read.
type Role string

const (
	RoleReporter Role = "REPORTER"
	RoleAdmin    Role = "ADMIN"
)

// Token represents issued reporting API token metadata.
type Token struct {
	SubjectID string
	Role      Role
	ExpiresAt time.Time
	IssuedAt  time.Time
}
