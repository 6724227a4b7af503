package auth

import (
	"time"

	"github.com/google/uuid"
)

// sessionIntent marks session tokens so workflow tokens can never pass as
// sessions and vice versa; the token service rejects it as a workflow
// intent, and VerifySession requires it.
const sessionIntent = "session"

type sessionClaims struct {
	ID        string `json:"jti"`
	Subject   string `json:"sub"`
	Intent    string `json:"intent"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// Session is a minted bearer credential with its expiry.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

func (s *Service) issueSession(userID uuid.UUID) (Session, error) {
	now := s.tokens.Now().UTC()
	expiresAt := now.Add(s.cfg.SessionTTL)
	signed, err := s.tokens.Sign(sessionClaims{
		ID:        uuid.NewString(),
		Subject:   userID.String(),
		Intent:    sessionIntent,
		IssuedAt:  now.Unix(),
		ExpiresAt: expiresAt.Unix(),
	})
	if err != nil {
		return Session{}, err
	}
	return Session{Token: signed, ExpiresAt: expiresAt}, nil
}

// VerifySession validates a session token and returns the user ID it was
// issued for.
func (s *Service) VerifySession(tokenString string) (uuid.UUID, error) {
	var claims sessionClaims
	if err := s.tokens.Parse(tokenString, &claims); err != nil {
		return uuid.Nil, ErrTokenInvalid
	}
	if claims.Intent != sessionIntent {
		return uuid.Nil, ErrWrongTokenIntent
	}
	if claims.ExpiresAt > 0 && s.tokens.Now().Unix() > claims.ExpiresAt {
		return uuid.Nil, ErrTokenExpired
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrTokenInvalid
	}
	return userID, nil
}
