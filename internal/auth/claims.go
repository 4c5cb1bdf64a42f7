package auth

import "github.com/golang-jwt/jwt/v5"

// Claims is the token shape issued by the identity provider. The subject is
// the team member id; Role is the member's CRM role.
type Claims struct {
	jwt.RegisteredClaims

	Email string `json:"email,omitempty"`
	Role  string `json:"user_role"`
}
