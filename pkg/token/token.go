package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Header constants pinned for every token this service produces.
const (
	headerType      = "JWT"
	headerAlgorithm = "HS256"
)

type header struct {
	Type      string `json:"typ"`
	Algorithm string `json:"alg"`
}

// Service signs and verifies compact tokens using HMAC-SHA256.
// The signing key is kept in memory only and should be at least 32 bytes.
type Service struct {
	signingKey []byte
	now        func() time.Time
}

// Option configures a Service during construction.
type Option func(*Service)

// WithClock overrides the wall clock used for issuance and expiry checks.
// Intended for tests; production services use time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a token service with the provided signing key.
func New(signingKey []byte, opts ...Option) (*Service, error) {
	if len(signingKey) == 0 {
		return nil, ErrMissingSigningKey
	}

	s := &Service{
		signingKey: signingKey,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewFromString creates a token service from a string signing key.
// Convenience wrapper around New() for string-based configuration.
func NewFromString(signingKey string, opts ...Option) (*Service, error) {
	if signingKey == "" {
		return nil, ErrMissingSigningKey
	}
	return New([]byte(signingKey), opts...)
}

// Now returns the service's current time. Callers that make decisions
// relative to token expiry (e.g. remaining-lifetime computations) must use
// this clock so their view agrees with Verify.
func (s *Service) Now() time.Time {
	return s.now()
}

// Issue mints a signed workflow token proving that the holder was, at issuance
// time, authorized to act as subject for the given intent. The expiry is
// computed as now + ttl. Issuance is a pure CPU-bound signing operation with
// no side effects.
func (s *Service) Issue(subject, email string, intent Intent, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", ErrMissingSubject
	}
	if email == "" {
		return "", ErrMissingEmail
	}
	if !intent.Valid() {
		return "", ErrUnknownIntent
	}
	if ttl <= 0 {
		return "", ErrInvalidTTL
	}

	now := s.now()
	claims := Claims{
		ID:        uuid.NewString(),
		Subject:   subject,
		Email:     email,
		Intent:    intent,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	}

	return s.Sign(claims)
}

// Verify validates a workflow token and returns its claims unchanged from
// issuance. It fails with ErrInvalidToken (or a more specific signature error)
// when the token is malformed or the signature does not validate, and with
// ErrExpiredToken once the wall clock passes the expiry timestamp.
//
// Verification is deterministic and side-effect-free; it consults no store.
// Callers must re-validate business state (e.g. that the subject still
// resolves to a user) independently.
func (s *Service) Verify(tokenString string) (Claims, error) {
	var claims Claims
	if err := s.Parse(tokenString, &claims); err != nil {
		return Claims{}, err
	}

	if !claims.Intent.Valid() {
		return Claims{}, ErrUnknownIntent
	}
	if claims.ExpiresAt > 0 && s.now().Unix() > claims.ExpiresAt {
		return Claims{}, ErrExpiredToken
	}

	return claims, nil
}

// Sign creates a signed token from any JSON-serializable claims structure.
// The result is three dot-separated base64url segments: header, claims
// payload, signature.
func (s *Service) Sign(claims any) (string, error) {
	if claims == nil {
		return "", ErrMissingClaims
	}

	headerJSON, err := json.Marshal(header{
		Type:      headerType,
		Algorithm: headerAlgorithm,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal header: %w", err)
	}

	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("failed to marshal claims: %w", err)
	}

	payload := base64URLEncode(headerJSON) + "." + base64URLEncode(claimsJSON)
	return payload + "." + s.sign(payload), nil
}

// Parse verifies a token's signature and unmarshals its claims into the
// provided structure. It checks structure, signature, and algorithm only;
// temporal claims are the caller's responsibility (Verify handles them for
// workflow tokens).
func (s *Service) Parse(tokenString string, claims any) error {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return ErrInvalidToken
	}

	// Verify signature before decoding anything attacker-controlled.
	payload := parts[0] + "." + parts[1]
	expected := s.sign(payload)
	if subtle.ConstantTimeCompare([]byte(parts[2]), []byte(expected)) != 1 {
		return ErrInvalidSignature
	}

	headerJSON, err := base64URLDecode(parts[0])
	if err != nil {
		return fmt.Errorf("%w: undecodable header", ErrInvalidToken)
	}

	var hdr header
	if err := json.Unmarshal(headerJSON, &hdr); err != nil {
		return fmt.Errorf("%w: malformed header", ErrInvalidToken)
	}

	// Reject tokens using unexpected algorithms to prevent algorithm
	// confusion attacks.
	if hdr.Algorithm != headerAlgorithm {
		return ErrUnexpectedSigningMethod
	}

	claimsJSON, err := base64URLDecode(parts[1])
	if err != nil {
		return fmt.Errorf("%w: undecodable claims", ErrInvalidToken)
	}

	if err := json.Unmarshal(claimsJSON, claims); err != nil {
		return fmt.Errorf("%w: malformed claims", ErrInvalidToken)
	}

	return nil
}

// sign creates a base64url-encoded HMAC-SHA256 signature for the payload.
func (s *Service) sign(payload string) string {
	h := hmac.New(sha256.New, s.signingKey)
	h.Write([]byte(payload))
	return base64URLEncode(h.Sum(nil))
}

func base64URLEncode(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

func base64URLDecode(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(s)
}
