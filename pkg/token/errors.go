package token

import "errors"

var (
	ErrMissingSigningKey       = errors.New("token: missing signing key")
	ErrMissingClaims           = errors.New("token: missing claims")
	ErrMissingSubject          = errors.New("token: missing subject")
	ErrMissingEmail            = errors.New("token: missing email")
	ErrUnknownIntent           = errors.New("token: unknown intent")
	ErrInvalidTTL              = errors.New("token: ttl must be positive")
	ErrInvalidToken            = errors.New("token: invalid token")
	ErrInvalidSignature        = errors.New("token: invalid signature")
	ErrUnexpectedSigningMethod = errors.New("token: unexpected signing method")
	ErrExpiredToken            = errors.New("token: token is expired")
	ErrInvalidSecretLength     = errors.New("token: secret length must be positive")
)
