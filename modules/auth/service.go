package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/memberboard/pkg/email"
	"github.com/dmitrymomot/memberboard/pkg/logger"
	"github.com/dmitrymomot/memberboard/pkg/replay"
	"github.com/dmitrymomot/memberboard/pkg/token"
	"github.com/dmitrymomot/memberboard/pkg/validator"
)

// Storage defines the persistence operations the auth service needs.
type Storage interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	SetEmailConfirmed(ctx context.Context, id uuid.UUID) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash []byte) error
}

// Service orchestrates account workflows: registration, email confirmation,
// login and password reset.
type Service struct {
	cfg              Config
	storage          Storage
	tokens           *token.Service
	guard            replay.Guard
	mailer           email.EmailSender
	emailCfg         email.Config
	log              *slog.Logger
	bcryptCost       int
	passwordStrength validator.PasswordStrengthConfig
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		s.log = log
	}
}

// WithBcryptCost overrides the bcrypt cost for password hashing.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.bcryptCost = cost
	}
}

// WithPasswordStrength overrides the password strength requirements.
func WithPasswordStrength(cfg validator.PasswordStrengthConfig) Option {
	return func(s *Service) {
		s.passwordStrength = cfg
	}
}

// NewService creates the auth service. The replay guard protects password
// reset tokens from being used twice; pass a replay.MemoryGuard for
// single-instance deployments or a replay.RedisGuard when running more
// than one replica.
func NewService(
	cfg Config,
	storage Storage,
	tokens *token.Service,
	guard replay.Guard,
	mailer email.EmailSender,
	emailCfg email.Config,
	opts ...Option,
) *Service {
	s := &Service{
		cfg:              cfg,
		storage:          storage,
		tokens:           tokens,
		guard:            guard,
		mailer:           mailer,
		emailCfg:         emailCfg,
		log:              slog.New(slog.NewTextHandler(io.Discard, nil)),
		bcryptCost:       bcrypt.DefaultCost,
		passwordStrength: validator.DefaultPasswordStrength(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an unconfirmed account and emails a confirmation link.
// The display name is optional. A mail delivery failure does not fail the
// registration; the member can request a fresh link via ResendConfirmation.
func (s *Service) Register(ctx context.Context, emailAddr, password, name string) (*User, error) {
	emailAddr = normalizeEmail(emailAddr)
	name = strings.TrimSpace(name)

	if err := validator.Apply(
		validator.Required("email", emailAddr),
		validator.ValidEmail("email", emailAddr),
		validator.StrongPassword("password", password, s.passwordStrength),
		validator.MaxLen("name", name, maxNameLen),
	); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &User{
		ID:           uuid.New(),
		Email:        emailAddr,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.storage.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.sendConfirmationEmail(ctx, user)

	return user, nil
}

// ConfirmEmail validates a confirmation token and marks the account
// confirmed. Confirming an already-confirmed account succeeds, so a member
// clicking the link twice sees the same result both times.
func (s *Service) ConfirmEmail(ctx context.Context, tokenString string) (*User, error) {
	claims, err := s.verifyWorkflowToken(tokenString, token.IntentEmailConfirmation)
	if err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	user, err := s.storage.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.EmailConfirmed {
		return user, nil
	}

	if err := s.storage.SetEmailConfirmed(ctx, user.ID); err != nil {
		return nil, err
	}
	user.EmailConfirmed = true

	s.log.InfoContext(ctx, "email confirmed", logger.UserID(user.ID.String()))

	return user, nil
}

// ResendConfirmation issues a fresh confirmation link for an unconfirmed
// account. It reveals nothing about account existence: unknown addresses and
// already-confirmed accounts return success without sending anything.
func (s *Service) ResendConfirmation(ctx context.Context, emailAddr string) error {
	emailAddr = normalizeEmail(emailAddr)

	user, err := s.storage.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil
		}
		return err
	}
	if user.EmailConfirmed {
		return nil
	}

	s.sendConfirmationEmail(ctx, user)

	return nil
}

// Login verifies credentials and returns the user with a signed session.
// Unknown addresses and wrong passwords fail identically.
func (s *Service) Login(ctx context.Context, emailAddr, password string) (*User, Session, error) {
	emailAddr = normalizeEmail(emailAddr)

	user, err := s.storage.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, Session{}, ErrInvalidCredentials
		}
		return nil, Session{}, err
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, Session{}, ErrInvalidCredentials
	}

	if !user.EmailConfirmed {
		return nil, Session{}, ErrEmailNotConfirmed
	}

	session, err := s.issueSession(user.ID)
	if err != nil {
		return nil, Session{}, fmt.Errorf("failed to issue session: %w", err)
	}

	s.log.InfoContext(ctx, "user logged in", logger.UserID(user.ID.String()))

	return user, session, nil
}

// RequestPasswordReset emails a reset link to the given address. Like
// ResendConfirmation it is enumeration-safe: the outcome is identical
// whether or not the address belongs to an account.
func (s *Service) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	emailAddr = normalizeEmail(emailAddr)

	user, err := s.storage.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil
		}
		return err
	}

	resetToken, err := s.tokens.Issue(user.ID.String(), user.Email, token.IntentPasswordReset, s.cfg.ResetTTL)
	if err != nil {
		return fmt.Errorf("failed to issue reset token: %w", err)
	}

	params, err := email.NewPasswordResetEmail(s.emailCfg, s.cfg.AppName, user.Email, s.actionURL("/reset-password", resetToken), s.cfg.ResetTTL)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to build reset email", logger.Error(err), logger.UserID(user.ID.String()))
		return nil
	}
	if err := s.mailer.SendEmail(ctx, params); err != nil {
		s.log.ErrorContext(ctx, "failed to send reset email", logger.Error(err), logger.UserID(user.ID.String()))
	}

	return nil
}

// CompletePasswordReset validates a reset token and sets a new password.
// Each reset token works exactly once.
func (s *Service) CompletePasswordReset(ctx context.Context, tokenString, newPassword string) (*User, error) {
	claims, err := s.verifyWorkflowToken(tokenString, token.IntentPasswordReset)
	if err != nil {
		return nil, err
	}

	if err := validator.Apply(
		validator.StrongPassword("password", newPassword, s.passwordStrength),
	); err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	user, err := s.storage.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Remaining lifetime must come from the token service's clock so this
	// agrees with Verify above.
	remaining := time.Unix(claims.ExpiresAt, 0).Sub(s.tokens.Now())
	if remaining <= 0 {
		return nil, ErrTokenExpired
	}
	if err := s.guard.Consume(ctx, claims.ID, remaining); err != nil {
		if errors.Is(err, replay.ErrAlreadyUsed) {
			return nil, ErrTokenAlreadyUsed
		}
		return nil, fmt.Errorf("replay guard failure: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.storage.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		// The credential was not changed, so the token must stay usable
		// for a retry. Un-burn it.
		if rerr := s.guard.Release(ctx, claims.ID); rerr != nil {
			s.log.ErrorContext(ctx, "failed to release reset token", logger.Error(rerr), logger.UserID(user.ID.String()))
		}
		return nil, err
	}
	user.PasswordHash = hash

	s.log.InfoContext(ctx, "password reset completed", logger.UserID(user.ID.String()))

	return user, nil
}

// verifyWorkflowToken verifies the signature and expiry, then checks the
// token was issued for the expected purpose. Intent mismatch is reported
// distinctly so a reset link pasted into the confirmation endpoint gets a
// meaningful error rather than a generic rejection.
func (s *Service) verifyWorkflowToken(tokenString string, want token.Intent) (token.Claims, error) {
	claims, err := s.tokens.Verify(tokenString)
	if err != nil {
		if errors.Is(err, token.ErrExpiredToken) {
			return token.Claims{}, ErrTokenExpired
		}
		return token.Claims{}, ErrTokenInvalid
	}
	if claims.Intent != want {
		return token.Claims{}, ErrWrongTokenIntent
	}
	return claims, nil
}

func (s *Service) sendConfirmationEmail(ctx context.Context, user *User) {
	confirmToken, err := s.tokens.Issue(user.ID.String(), user.Email, token.IntentEmailConfirmation, s.cfg.ConfirmationTTL)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to issue confirmation token", logger.Error(err), logger.UserID(user.ID.String()))
		return
	}

	params, err := email.NewConfirmationEmail(s.emailCfg, s.cfg.AppName, user.Email, s.actionURL("/confirm-email", confirmToken), s.cfg.ConfirmationTTL)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to build confirmation email", logger.Error(err), logger.UserID(user.ID.String()))
		return
	}

	if err := s.mailer.SendEmail(ctx, params); err != nil {
		s.log.ErrorContext(ctx, "failed to send confirmation email", logger.Error(err), logger.UserID(user.ID.String()))
	}
}

func (s *Service) actionURL(path, tokenString string) string {
	return strings.TrimSuffix(s.cfg.BaseURL, "/") + path + "?token=" + url.QueryEscape(tokenString)
}

func normalizeEmail(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}
