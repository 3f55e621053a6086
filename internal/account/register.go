package account

import (
	"context"
	"fmt"
	"strings"

	"github.com/marquee-dev/marquee/internal/client"
	"github.com/marquee-dev/marquee/internal/session"
	"github.com/marquee-dev/marquee/internal/validation"
)

// RegisterRequest is the sign-up form.
type RegisterRequest struct {
	Username        string `json:"username" validate:"required,min=3,max=32"`
	FirstName       string `json:"firstName" validate:"required,max=64"`
	LastName        string `json:"lastName" validate:"required,max=64"`
	Email           string `json:"email" validate:"required,email"`
	Age             int    `json:"age" validate:"gte=13,lte=130"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
}

// Register creates the account and logs in with the same credentials.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (session.Session, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := validation.Struct(req); err != nil {
		return session.Session{}, err
	}

	_, err := s.api.CreateUser(ctx, client.CreateUserRequest{
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Age:       req.Age,
		Password:  req.Password,
	})
	if err != nil {
		return session.Session{}, fmt.Errorf("registration failed: %w", err)
	}

	s.logger.Info().Str("username", req.Username).Msg("Account created")
	return s.Login(ctx, req.Username, req.Password)
}

type forgotPasswordForm struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordForm struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// ForgotPassword asks the backend to mail a reset token. The answer is the
// same whether or not the address is registered.
func (s *Service) ForgotPassword(ctx context.Context, email string) (string, error) {
	form := forgotPasswordForm{Email: strings.TrimSpace(email)}
	if err := validation.Struct(form); err != nil {
		return "", err
	}
	resp, err := s.api.ForgotPassword(ctx, form.Email)
	if err != nil {
		return "", fmt.Errorf("password reset request failed: %w", err)
	}
	return resp.Message, nil
}

// ResetPassword sets a new password with a mailed reset token.
func (s *Service) ResetPassword(ctx context.Context, resetToken, newPassword string) (string, error) {
	form := resetPasswordForm{Token: strings.TrimSpace(resetToken), Password: newPassword}
	if err := validation.Struct(form); err != nil {
		return "", err
	}
	resp, err := s.api.ResetPassword(ctx, form.Token, form.Password)
	if err != nil {
		return "", fmt.Errorf("password reset failed: %w", err)
	}
	return resp.Message, nil
}
