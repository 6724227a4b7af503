package auth

import "errors"

// Account errors.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrUnauthorized       = errors.New("unauthorized")
)

// Token errors.
var (
	ErrTokenInvalid     = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token expired")
	ErrWrongTokenIntent = errors.New("token issued for a different purpose")
	ErrTokenAlreadyUsed = errors.New("token already used")
)
