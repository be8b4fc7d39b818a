package entity

import "time"

// Valid roles for User.
const (
	RoleStaff    = "staff"    // creates and edits own drafts
	RoleApprover = "approver" // may approve or reject submitted documents
	RoleAdmin    = "admin"    // approver capability plus user management
)

// CanApprove reports whether a role carries the approval capability.
func CanApprove(role string) bool {
	return role == RoleApprover || role == RoleAdmin
}

// User represents an employee account in the system.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, never plaintext past registration
	Name         string
	NIP          string // civil servant ID number (Nomor Induk Pegawai)
	Position     string
	Role         string // staff, approver, admin
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
