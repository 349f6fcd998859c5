package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sunflower/sunflower-api/internal/core/domain"
	"github.com/sunflower/sunflower-api/internal/core/ports"
	"github.com/sunflower/sunflower-api/internal/pkg/metrics"
)

// AdminAuthService manages superuser accounts. Admins are created verified
// and can only log in through LoginAdmin.
type AdminAuthService struct {
	users         *AuthService
	signupEnabled bool
}

func NewAdminAuthService(users *AuthService, signupEnabled bool) *AdminAuthService {
	return &AdminAuthService{users: users, signupEnabled: signupEnabled}
}

var _ ports.AdminAuthService = (*AdminAuthService)(nil)

func (s *AdminAuthService) RegisterAdmin(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	if !s.signupEnabled {
		return nil, domain.ErrSignupDisabled
	}

	email, username, err := normalizeRegistration(in)
	if err != nil {
		return nil, err
	}

	hash, err := s.users.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register admin: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.users.repo.Create(ctx, &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		FullName:     in.FullName,
		PasswordHash: hash,
		IsActive:     true,
		IsVerified:   true,
		IsSuperuser:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			metrics.RegistrationsTotal.WithLabelValues("admin", "conflict").Inc()
			return nil, err
		}
		metrics.RegistrationsTotal.WithLabelValues("admin", "error").Inc()
		return nil, fmt.Errorf("register admin: %w", err)
	}
	metrics.RegistrationsTotal.WithLabelValues("admin", "created").Inc()

	recordAudit(ctx, s.users.audit, s.users.log, created.ID, domain.AuditAdminRegister, "")
	s.users.log.Info().Str("user_id", created.ID).Msg("admin registered")
	return created, nil
}

// LoginAdmin authenticates superusers only. Regular accounts get the same
// error as a wrong password.
func (s *AdminAuthService) LoginAdmin(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	user, err := s.users.checkCredentials(ctx, email, password)
	if err == nil && !user.IsSuperuser {
		err = domain.ErrInvalidCredentials
	}
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("admin", "invalid_credentials").Inc()
		}
		return nil, err
	}

	token, err := s.users.tokens.IssueAccess(user.ID)
	if err != nil {
		return nil, fmt.Errorf("login admin: %w", err)
	}
	metrics.LoginsTotal.WithLabelValues("admin", "success").Inc()

	return &ports.LoginResult{
		AccessToken: token,
		TokenType:   tokenTypeBearer,
		ExpiresIn:   s.users.tokens.AccessTTL(),
		Message:     msgLoggedIn,
		User:        user,
	}, nil
}
