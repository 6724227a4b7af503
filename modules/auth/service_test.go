package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/memberboard/pkg/email"
	"github.com/dmitrymomot/memberboard/pkg/replay"
	"github.com/dmitrymomot/memberboard/pkg/token"
	"github.com/dmitrymomot/memberboard/pkg/validator"
)

const (
	testSigningKey = "test-signing-key-0123456789abcdef"
	testPassword   = "correct-horse-9"
)

func newTestService(t *testing.T, storage *MockStorage, mailer *MockMailer) *Service {
	t.Helper()

	tokens, err := token.NewFromString(testSigningKey)
	require.NoError(t, err)

	cfg := Config{
		AppName:         "Memberboard",
		BaseURL:         "http://localhost:8080",
		TokenSecret:     testSigningKey,
		ConfirmationTTL: 24 * time.Hour,
		ResetTTL:        time.Hour,
		SessionTTL:      168 * time.Hour,
	}
	emailCfg := email.Config{
		SenderEmail:  "no-reply@example.com",
		SupportEmail: "support@example.com",
	}

	return NewService(cfg, storage, tokens, replay.NewMemoryGuard(), mailer, emailCfg,
		WithBcryptCost(bcrypt.MinCost),
	)
}

func testUser(t *testing.T, confirmed bool) *User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	return &User{
		ID:             uuid.New(),
		Email:          "member@example.com",
		PasswordHash:   hash,
		EmailConfirmed: confirmed,
	}
}

func TestRegister(t *testing.T) {
	t.Parallel()

	t.Run("creates unconfirmed user and sends confirmation", func(t *testing.T) {
		t.Parallel()

		storage := new(MockStorage)
		mailer := new(MockMailer)
		svc := newTestService(t, storage, mailer)

		storage.On("CreateUser", mock.Anything, mock.AnythingOfType("*auth.User")).Return(nil)
		mailer.On("SendEmail", mock.Anything, mock.AnythingOfType("email.SendEmailParams")).Return(nil)

		user, err := svc.Register(context.Background(), "  Member@Example.COM ", testPassword, "  Alice  ")
		require.NoError(t, err)

		assert.Equal(t, "member@example.com", user.Email)
		assert.Equal(t, "Alice", user.Name)
		assert.False(t, user.EmailConfirmed)
		assert.NoError(t, bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(testPassword)))
		storage.AssertExpectations(t)
		mailer.AssertExpectations(t)
	})

	t.Run("mail failure does not fail registration", func(t *testing.T) {
		t.Parallel()

		storage := new(MockStorage)
		mailer := new(MockMailer)
		svc := newTestService(t, storage, mailer)

		storage.On("CreateUser", mock.Anything, mock.Anything).Return(nil)
		mailer.On("SendEmail", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

		_, err := svc.Register(context.Background(), "member@example.com", testPassword, "")
		require.NoError(t, err)
	})

	t.Run("invalid email", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(t, new(MockStorage), new(MockMailer))

		_, err := svc.Register(context.Background(), "not-an-email", testPassword, "")
		assert.True(t, validator.IsValidationError(err))
	})

	t.Run("weak password", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(t, new(MockStorage), new(MockMailer))

		_, err := svc.Register(context.Background(), "member@example.com", "short", "")
		assert.True(t, validator.IsValidationError(err))
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()

		storage := new(MockStorage)
		svc := newTestService(t, storage, new(MockMailer))

		storage.On("CreateUser", mock.Anything, mock.Anything).Return(ErrEmailAlreadyExists)

		_, err := svc.Register(context.Background(), "member@example.com", testPassword, "")
		assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	})
}

func TestConfirmEmail(t *testing.T) {
	t.Parallel()

	issueToken := func(t *testing.T, svc *Service, userID uuid.UUID, intent token.Intent) string {
		t.Helper()
		tokens, err := token.NewFromString(testSigningKey)
		require.NoError(t, err)
		str, err := tokens.Issue(userID.String(), "member@example.com", intent, svc.cfg.ConfirmationTTL)
		require.NoError(t, err)
		return str
	}

	t.Run("confirms the account", func(t *testing.T) {
		t.Parallel()

		storage := new(MockStorage)
		svc := newTestService(t, storage, new(MockMailer))
		user := testUser(t, false)

		storage.On("GetUserByID", mock.Anything, user.ID).Return(user, nil)
		storage.On("SetEmailConfirmed", mock.Anything, user.ID).Return(nil)

		got, err := svc.ConfirmEmail(context.Background(), issueToken(t, svc, user.ID, token.IntentEmailConfirmation))
		require.NoError(t, err)
		assert.True(t, got.EmailConfirmed)
		storage.AssertExpectations(t)
	})

	t.Run("already confirmed is a success", func(t *testing.T) {
		t.Parallel()

		storage := new(MockStorage)
		svc := newTestService(t, storage, new(MockMailer))
		user := testUser(t, true)

		storage.On("GetUserByID", mock.Anything, user.ID).Return(user, nil)

		got, err := svc.ConfirmEmail(context.Background(), issueToken(t, svc, user.ID, token.IntentEmailConfirmation))
		require.NoError(t, err)
		assert.True(t, got.EmailConfirmed)
		storage.AssertNotCalled(t, "SetEmailConfirmed", mock.Anything, mock.Anything)
	})

	t.Run("reset token is rejected", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(t, new(MockStorage), new(MockMailer))
		user := testUser(t, false)

		_, err := svc.ConfirmEmail(context.Background(), issueToken(t, svc, user.ID, token.IntentPasswordReset))
		assert.ErrorIs(t, err, ErrWrongTokenIntent)
	})

	t.Run("garbage token", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(t, new(MockStorage), new(MockMailer))

		_, err := svc.ConfirmEmail(context.Background(), "not.a.token")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("unknown subject", func(t *testing.T) {
		t.Parallel()

		storage := new(MockStorage)
		svc := newTestService(t, storage, new(MockMailer))
		userID := uuid.New()

		storage.On("GetUserByID", mock.Anything, userID).Return(nil, ErrUserNotFound)

		_, err := svc.ConfirmEmail(context.Background(), issueToken(t, svc, userID, token.IntentEmailConfirmation))
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestResendConfirmation(t *testing.T) {
	t.Parallel()

	t.Run("unknown email succeeds silently", func(t *testing.T) {
		t.Parallel()

		storage := new(MockStorage)
		mailer := new(MockMailer)
		svc := newTestService(t, storage, mailer)

		storage.On("GetUserByEmail", mock.Anything, "ghost@example.com").Return(nil, ErrUserNotFound)

		require.NoError(t, svc.ResendConfirmation(context.Background(), "ghost@example.com"))
		mailer.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything)
	})

	t.Run("confirmed account gets no email", func(t *testing.T) {
		t.Parallel()

		storage := new(MockStorage)
		mailer := new(MockMailer)
		svc := newTestService(t, storage, mailer)
		user := testUser(t, true)

		storage.On("GetUserByEmail", mock.Anything, user.Email).Return(user, nil)

		require.NoError(t, svc.ResendConfirmation(context.Background(), user.Email))
		mailer.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything)
	})

	t.Run("unconfirmed account gets a fresh link", func(t *testing.T) {
		t.Parallel()

		storage := new(MockStorage)
		mailer := new(MockMailer)
		svc := newTestService(t, storage, mailer)
		user := testUser(t, false)

		storage.On("GetUserByEmail", mock.Anything, user.Email).Return(user, nil)
		mailer.On("SendEmail", mock.Anything, mock.Anything).Return(nil)

		require.NoError(t, svc.ResendConfirmation(context.Background(), user.Email))
		mailer.AssertExpectations(t)
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("returns verifiable session", func(t *testing.T) {
		t.Parallel()

		storage := new(MockStorage)
		svc := newTestService(t, storage, new(MockMailer))
		user := testUser(t, true)

		storage.On("GetUserByEmail", mock.Anything, user.Email).Return(user, nil)

		got, session, err := svc.Login(context.Background(), user.Email, testPassword)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)

		userID, err := svc.VerifySession(session.Token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, userID)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()

		storage := new(MockStorage)
		svc := newTestService(t, storage, new(MockMailer))
		user := testUser(t, true)

		storage.On("GetUserByEmail", mock.Anything, user.Email).Return(user, nil)

		_, _, err := svc.Login(context.Background(), user.Email, "wrong-password-1")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email fails the same way", func(t *testing.T) {
		t.Parallel()

		storage := new(MockStorage)
		svc := newTestService(t, storage, new(MockMailer))

		storage.On("GetUserByEmail", mock.Anything, "ghost@example.com").Return(nil, ErrUserNotFound)

		_, _, err := svc.Login(context.Background(), "ghost@example.com", testPassword)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unconfirmed account cannot log in", func(t *testing.T) {
		t.Parallel()

		storage := new(MockStorage)
		svc := newTestService(t, storage, new(MockMailer))
		user := testUser(t, false)

		storage.On("GetUserByEmail", mock.Anything, user.Email).Return(user, nil)

		_, _, err := svc.Login(context.Background(), user.Email, testPassword)
		assert.ErrorIs(t, err, ErrEmailNotConfirmed)
	})
}

func TestRequestPasswordReset(t *testing.T) {
	t.Parallel()

	t.Run("unknown email succeeds silently", func(t *testing.T) {
		t.Parallel()

		storage := new(MockStorage)
		mailer := new(MockMailer)
		svc := newTestService(t, storage, mailer)

		storage.On("GetUserByEmail", mock.Anything, "ghost@example.com").Return(nil, ErrUserNotFound)

		require.NoError(t, svc.RequestPasswordReset(context.Background(), "ghost@example.com"))
		mailer.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything)
	})

	t.Run("known email gets a reset link", func(t *testing.T) {
		t.Parallel()

		storage := new(MockStorage)
		mailer := new(MockMailer)
		svc := newTestService(t, storage, mailer)
		user := testUser(t, true)

		storage.On("GetUserByEmail", mock.Anything, user.Email).Return(user, nil)
		mailer.On("SendEmail", mock.Anything, mock.Anything).Return(nil)

		require.NoError(t, svc.RequestPasswordReset(context.Background(), user.Email))
		mailer.AssertExpectations(t)
	})

	t.Run("mail failure is suppressed", func(t *testing.T) {
		t.Parallel()

		storage := new(MockStorage)
		mailer := new(MockMailer)
		svc := newTestService(t, storage, mailer)
		user := testUser(t, true)

		storage.On("GetUserByEmail", mock.Anything, user.Email).Return(user, nil)
		mailer.On("SendEmail", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

		require.NoError(t, svc.RequestPasswordReset(context.Background(), user.Email))
	})
}

func TestCompletePasswordReset(t *testing.T) {
	t.Parallel()

	issueResetToken := func(t *testing.T, svc *Service, userID uuid.UUID) string {
		t.Helper()
		str, err := svc.tokens.Issue(userID.String(), "member@example.com", token.IntentPasswordReset, svc.cfg.ResetTTL)
		require.NoError(t, err)
		return str
	}

	t.Run("sets new password", func(t *testing.T) {
		t.Parallel()

		storage := new(MockStorage)
		svc := newTestService(t, storage, new(MockMailer))
		user := testUser(t, true)
		newPassword := "brand-new-pass-7"

		storage.On("GetUserByID", mock.Anything, user.ID).Return(user, nil)
		storage.On("UpdatePasswordHash", mock.Anything, user.ID, mock.AnythingOfType("[]uint8")).Return(nil)

		got, err := svc.CompletePasswordReset(context.Background(), issueResetToken(t, svc, user.ID), newPassword)
		require.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword(got.PasswordHash, []byte(newPassword)))
		storage.AssertExpectations(t)
	})

	t.Run("token works exactly once", func(t *testing.T) {
		t.Parallel()

		storage := new(MockStorage)
		svc := newTestService(t, storage, new(MockMailer))
		user := testUser(t, true)

		storage.On("GetUserByID", mock.Anything, user.ID).Return(user, nil)
		storage.On("UpdatePasswordHash", mock.Anything, user.ID, mock.Anything).Return(nil)

		resetToken := issueResetToken(t, svc, user.ID)

		_, err := svc.CompletePasswordReset(context.Background(), resetToken, "brand-new-pass-7")
		require.NoError(t, err)

		_, err = svc.CompletePasswordReset(context.Background(), resetToken, "another-pass-42")
		assert.ErrorIs(t, err, ErrTokenAlreadyUsed)
	})

	t.Run("token survives a failed credential write", func(t *testing.T) {
		t.Parallel()

		storage := new(MockStorage)
		svc := newTestService(t, storage, new(MockMailer))
		user := testUser(t, true)

		storage.On("GetUserByID", mock.Anything, user.ID).Return(user, nil)
		storage.On("UpdatePasswordHash", mock.Anything, user.ID, mock.Anything).Return(errors.New("store down")).Once()
		storage.On("UpdatePasswordHash", mock.Anything, user.ID, mock.Anything).Return(nil).Once()

		resetToken := issueResetToken(t, svc, user.ID)

		_, err := svc.CompletePasswordReset(context.Background(), resetToken, "brand-new-pass-7")
		require.Error(t, err)

		// The failed attempt must not burn the token.
		_, err = svc.CompletePasswordReset(context.Background(), resetToken, "brand-new-pass-7")
		require.NoError(t, err)
		storage.AssertExpectations(t)
	})

	t.Run("guard ttl follows the token clock", func(t *testing.T) {
		t.Parallel()

		// A token service running on a shifted clock: tokens it issues are
		// already past expiry by the wall clock, but valid by its own.
		past := time.Now().Add(-2 * time.Hour)
		tokens, err := token.NewFromString(testSigningKey, token.WithClock(func() time.Time { return past }))
		require.NoError(t, err)

		storage := new(MockStorage)
		svc := NewService(Config{
			AppName:         "Memberboard",
			BaseURL:         "http://localhost:8080",
			TokenSecret:     testSigningKey,
			ConfirmationTTL: 24 * time.Hour,
			ResetTTL:        time.Hour,
			SessionTTL:      168 * time.Hour,
		}, storage, tokens, replay.NewMemoryGuard(), new(MockMailer), email.Config{
			SenderEmail:  "no-reply@example.com",
			SupportEmail: "support@example.com",
		}, WithBcryptCost(bcrypt.MinCost))
		user := testUser(t, true)

		storage.On("GetUserByID", mock.Anything, user.ID).Return(user, nil)
		storage.On("UpdatePasswordHash", mock.Anything, user.ID, mock.Anything).Return(nil)

		resetToken, err := tokens.Issue(user.ID.String(), user.Email, token.IntentPasswordReset, time.Hour)
		require.NoError(t, err)

		_, err = svc.CompletePasswordReset(context.Background(), resetToken, "brand-new-pass-7")
		require.NoError(t, err)
	})

	t.Run("confirmation token is rejected", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(t, new(MockStorage), new(MockMailer))
		user := testUser(t, true)

		confirmToken, err := svc.tokens.Issue(user.ID.String(), user.Email, token.IntentEmailConfirmation, svc.cfg.ConfirmationTTL)
		require.NoError(t, err)

		_, err = svc.CompletePasswordReset(context.Background(), confirmToken, "brand-new-pass-7")
		assert.ErrorIs(t, err, ErrWrongTokenIntent)
	})

	t.Run("weak replacement password", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(t, new(MockStorage), new(MockMailer))
		user := testUser(t, true)

		_, err := svc.CompletePasswordReset(context.Background(), issueResetToken(t, svc, user.ID), "weak")
		assert.True(t, validator.IsValidationError(err))
	})
}

func TestVerifySession(t *testing.T) {
	t.Parallel()

	t.Run("workflow token is not a session", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(t, new(MockStorage), new(MockMailer))

		confirmToken, err := svc.tokens.Issue(uuid.NewString(), "member@example.com", token.IntentEmailConfirmation, svc.cfg.ConfirmationTTL)
		require.NoError(t, err)

		_, err = svc.VerifySession(confirmToken)
		assert.ErrorIs(t, err, ErrWrongTokenIntent)
	})

	t.Run("garbage token", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(t, new(MockStorage), new(MockMailer))

		_, err := svc.VerifySession("nope")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}
