package dto

import (
	"time"

	identityDomain "github.com/tyratox/lazuli-auth/internal/identity/domain"
)

// UserResponse is the public representation of a user. Password material is
// never serialized.
type UserResponse struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	DisplayName string   `json:"display_name"`
	Permissions []string `json:"permissions"`
	CreatedAt   string   `json:"created_at"`
}

// MapUserToResponse converts a user domain model to its response representation.
func MapUserToResponse(user *identityDomain.User) UserResponse {
	return UserResponse{
		ID:          user.ID.String(),
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Permissions: user.Permissions,
		CreatedAt:   user.CreatedAt.Format(time.RFC3339),
	}
}
