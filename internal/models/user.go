package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRole is the privilege level of an account.
type UserRole string

const (
	RoleUser       UserRole = "USER"
	RoleAdmin      UserRole = "ADMIN"
	RoleSuperAdmin UserRole = "SUPER_ADMIN"
)

// ValidRole reports whether s is one of the known roles.
func ValidRole(s string) bool {
	switch UserRole(s) {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// CanModerate reports whether the role may approve, reject and delete posts
// and manage user accounts. ADMIN and SUPER_ADMIN are equivalent here.
func (r UserRole) CanModerate() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

type User struct {
	ID    uuid.UUID `json:"id" bson:"_id"`
	Email string    `json:"email" bson:"email"`
	// PasswordSecret is compared by exact match and shown to super admins.
	// Inherited behavior; there is no hashing in this system.
	PasswordSecret string    `json:"-" bson:"passwordSecret"`
	Name           string    `json:"name" bson:"name"`
	Role           UserRole  `json:"role" bson:"role"`
	IsDeleted      bool      `json:"isDeleted" bson:"isDeleted"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
}
