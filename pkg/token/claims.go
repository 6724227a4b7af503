package token

// Intent enumerates the purposes a workflow token can be issued for.
// The intent is part of the signed payload and must match at verification
// time; a token issued for one purpose is useless for any other.
type Intent string

const (
	IntentEmailConfirmation Intent = "email-confirmation"
	IntentPasswordReset     Intent = "password-reset"
)

// Valid reports whether the intent is one of the enumerated values.
func (i Intent) Valid() bool {
	switch i {
	case IntentEmailConfirmation, IntentPasswordReset:
		return true
	}
	return false
}

// Claims is the signed payload of a workflow token. The contact email is
// carried for payload completeness only and must not be trusted for
// authorization decisions; the subject is the single source of identity.
type Claims struct {
	ID        string `json:"jti"`
	Subject   string `json:"sub"`
	Email     string `json:"email"`
	Intent    Intent `json:"intent"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}
