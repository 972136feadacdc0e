package services

import (
	"context"
	"log/slog"

	"finance/internal/core"
)

const (
	placeholderToken    = "fake-jwt-token"
	placeholderUserID   = "1"
	placeholderUserName = "Test User"
)

// AuthService is a login stub. Any non-empty credentials succeed.
type AuthService struct{}

// NewAuthService returns the login stub.
func NewAuthService() *AuthService {
	return &AuthService{}
}

// Login checks that both credentials are present and returns a fixed token
// with a placeholder profile echoing the email.
func (a *AuthService) Login(ctx context.Context, c core.Credentials) (core.LoginResult, error) {
	if err := c.Validate(); err != nil {
		return core.LoginResult{}, err
	}

	slog.DebugContext(ctx, "Login accepted", "email", c.Email)
	return core.LoginResult{
		Token: placeholderToken,
		User: core.User{
			ID:    placeholderUserID,
			Email: c.Email,
			Name:  placeholderUserName,
		},
	}, nil
}
