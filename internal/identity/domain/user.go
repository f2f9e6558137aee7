// Package domain defines the identity models surrounding the OAuth2 core:
// users, their credentials, and their permission sets.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is an authenticated principal. Passwords are stored as a hash plus the
// salt and algorithm they were produced with, so records hashed under an older
// algorithm verify and are transparently upgraded to the current default.
type User struct {
	ID                uuid.UUID
	Email             string // Unique, used for local password login
	DisplayName       string
	PasswordHash      string
	PasswordSalt      string // Empty for self-describing algorithms (argon2id)
	PasswordAlgorithm string
	Permissions       []string // Hierarchical permission names, e.g. "admin.users"
	CreatedAt         time.Time
}

// HasPermission reports whether the user holds the single required permission.
// Permissions are hierarchical: holding "admin" grants "admin.users.read" and
// every other permission below the "admin." prefix.
func (u *User) HasPermission(required string) bool {
	if required == "" {
		return false
	}
	for _, granted := range u.Permissions {
		if granted == required || strings.HasPrefix(required, granted+".") {
			return true
		}
	}
	return false
}

// HasPermissions reports whether the user holds every required permission.
// An empty requirement set is always satisfied.
func (u *User) HasPermissions(required []string) bool {
	for _, permission := range required {
		if !u.HasPermission(permission) {
			return false
		}
	}
	return true
}

// CreateUserInput contains the parameters for registering a new user.
// The password is hashed before persistence; the plaintext is never stored.
type CreateUserInput struct {
	Email       string
	DisplayName string
	Password    string
	Permissions []string
}
