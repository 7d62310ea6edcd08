package domain

import "time"

// StaffRole enumerates panel roles.
type StaffRole string

const (
	StaffRoleAdmin     StaffRole = "ADMIN"
	StaffRoleModerator StaffRole = "MODERATOR"
)

// StaffMember is a panel account allowed to issue punishments.
type StaffMember struct {
	ID           string
	Username     string
	PasswordHash string
	Role         StaffRole
	CreatedAt    time.Time
}
