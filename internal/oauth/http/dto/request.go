// Package dto provides data transfer objects for the OAuth2 protocol endpoints.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/tyratox/lazuli-auth/internal/validation"
)

// AuthorizeRequest carries the query parameters of the authorization endpoint.
type AuthorizeRequest struct {
	ResponseType string `form:"response_type"`
	ClientID     string `form:"client_id"`
	RedirectURI  string `form:"redirect_uri"`
	Scope        string `form:"scope"`
	State        string `form:"state"`
}

// Validate checks the authorization request parameters. Only the
// authorization-code flow is supported, so response_type must be "code".
func (r *AuthorizeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ResponseType,
			validation.Required,
			validation.In("code").Error("must be code"),
		),
		validation.Field(&r.ClientID,
			validation.Required,
			customValidation.NotBlank,
		),
		validation.Field(&r.RedirectURI,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 500),
		),
		validation.Field(&r.Scope,
			validation.Required,
			customValidation.NotBlank,
			customValidation.ScopeList,
		),
	)
}

// DecisionRequest carries the outcome of the consent screen round-trip.
type DecisionRequest struct {
	TransactionID string `json:"transaction_id"`
	Approved      bool   `json:"approved"`
	State         string `json:"state"`
}

// Validate checks the decision request.
func (r *DecisionRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.TransactionID,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}

// TokenRequest carries the form parameters of the token endpoint.
type TokenRequest struct {
	GrantType    string `form:"grant_type"`
	Code         string `form:"code"`
	RedirectURI  string `form:"redirect_uri"`
	ClientID     string `form:"client_id"`
	ClientSecret string `form:"client_secret"`
}

// Validate checks the token request parameters.
func (r *TokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.GrantType,
			validation.Required,
			validation.In("authorization_code").Error("must be authorization_code"),
		),
		validation.Field(&r.Code,
			validation.Required,
			customValidation.NotBlank,
		),
		validation.Field(&r.RedirectURI,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 500),
		),
		validation.Field(&r.ClientID,
			validation.Required,
			customValidation.NotBlank,
		),
		validation.Field(&r.ClientSecret,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}
