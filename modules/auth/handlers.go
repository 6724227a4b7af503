package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrymomot/memberboard/handler"
	"github.com/dmitrymomot/memberboard/pkg/binder"
	"github.com/dmitrymomot/memberboard/pkg/validator"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type confirmEmailRequest struct {
	Token string `json:"token" query:"token"`
}

type resendConfirmationRequest struct {
	Email string `json:"email"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

type completePasswordResetRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   string `json:"expires_at"`
}

func (s *Service) handleRegister(r *http.Request, req registerRequest) handler.Response {
	if _, err := s.Register(r.Context(), req.Email, req.Password, req.Name); err != nil {
		return errorResponse(err)
	}
	return handler.MessageWithStatus(http.StatusCreated, "registered, check your inbox for a confirmation link")
}

func (s *Service) handleConfirmEmail(r *http.Request, req confirmEmailRequest) handler.Response {
	if req.Token == "" {
		return handler.Error(http.StatusBadRequest, "token is required")
	}
	if _, err := s.ConfirmEmail(r.Context(), req.Token); err != nil {
		return errorResponse(err)
	}
	return handler.Message("email confirmed")
}

func (s *Service) handleResendConfirmation(r *http.Request, req resendConfirmationRequest) handler.Response {
	if err := s.ResendConfirmation(r.Context(), req.Email); err != nil {
		return errorResponse(err)
	}
	return handler.Message("if the account exists, a confirmation email has been sent")
}

func (s *Service) handleLogin(r *http.Request, req loginRequest) handler.Response {
	_, session, err := s.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		return errorResponse(err)
	}
	return handler.JSON(loginResponse{
		AccessToken: session.Token,
		ExpiresAt:   session.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

func (s *Service) handleRequestPasswordReset(r *http.Request, req passwordResetRequest) handler.Response {
	if err := s.RequestPasswordReset(r.Context(), req.Email); err != nil {
		return errorResponse(err)
	}
	return handler.Message("if the account exists, a password reset email has been sent")
}

func (s *Service) handleCompletePasswordReset(r *http.Request, req completePasswordResetRequest) handler.Response {
	if req.Token == "" {
		return handler.Error(http.StatusBadRequest, "token is required")
	}
	if _, err := s.CompletePasswordReset(r.Context(), req.Token, req.NewPassword); err != nil {
		return errorResponse(err)
	}
	return handler.Message("password has been reset")
}

// errorResponse maps auth domain errors to HTTP responses.
func errorResponse(err error) handler.Response {
	switch {
	case validator.IsValidationError(err):
		return handler.DefaultErrorHandler(err)
	case errors.Is(err, ErrTokenInvalid),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrWrongTokenIntent),
		errors.Is(err, ErrTokenAlreadyUsed):
		return handler.Error(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrUserNotFound):
		return handler.Error(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrEmailNotConfirmed),
		errors.Is(err, ErrUnauthorized):
		return handler.Error(http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrEmailAlreadyExists):
		return handler.Error(http.StatusConflict, err.Error())
	case errors.Is(err, binder.ErrFailedToParseJSON),
		errors.Is(err, binder.ErrFailedToParseQuery),
		errors.Is(err, binder.ErrMissingContentType),
		errors.Is(err, binder.ErrUnsupportedMediaType):
		return handler.DefaultErrorHandler(err)
	}
	return handler.Error(http.StatusInternalServerError, "internal error")
}
