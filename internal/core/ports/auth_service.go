package ports

import (
	"context"
	"time"

	"github.com/sunflower/sunflower-api/internal/core/domain"
)

// RegisterInput is the DTO passed from the transport layer to AuthService.Register.
type RegisterInput struct {
	Email       string
	Username    string
	Password    string
	FullName    string
	VisaStatus  string
	Education   string
	Nationality string
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	AccessToken string
	TokenType   string
	ExpiresIn   time.Duration
	// Message is advisory only; an unverified user still receives a token.
	Message string
	User    *domain.User
}

// AuthService orchestrates registration, login and email verification.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	VerifyEmail(ctx context.Context, user *domain.User, token string) (string, error)
	ResendVerification(ctx context.Context, user *domain.User) (string, error)
	UpdateProfile(ctx context.Context, user *domain.User, update domain.ProfileUpdate) (*domain.User, error)
}

// AdminAuthService handles superuser accounts.
type AdminAuthService interface {
	RegisterAdmin(ctx context.Context, input RegisterInput) (*domain.User, error)
	LoginAdmin(ctx context.Context, email, password string) (*LoginResult, error)
}
