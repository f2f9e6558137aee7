// Package dto provides data transfer objects for the identity endpoints.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/tyratox/lazuli-auth/internal/validation"
)

// LoginRequest carries a local password login. Scope is optional; when set it
// is a space-delimited list of scope names to attach to the issued token.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Scope    string `json:"scope"`
}

// Validate checks the login request fields. Password strength is not checked
// here; a login must accept whatever was valid at registration time.
func (r *LoginRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email,
			validation.Required,
			customValidation.NotBlank,
		),
		validation.Field(&r.Password,
			validation.Required,
		),
		validation.Field(&r.Scope,
			customValidation.ScopeList,
		),
	)
}

// RegisterRequest carries a new user registration.
type RegisterRequest struct {
	Email       string   `json:"email"`
	DisplayName string   `json:"display_name"`
	Password    string   `json:"password"`
	Permissions []string `json:"permissions"`
}

// Validate checks the registration request fields. Email normalization and
// password strength rules are enforced by the use case.
func (r *RegisterRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email,
			validation.Required,
			customValidation.NotBlank,
		),
		validation.Field(&r.DisplayName,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.Password,
			validation.Required,
		),
		validation.Field(&r.Permissions,
			validation.Each(customValidation.PermissionName),
		),
	)
}
