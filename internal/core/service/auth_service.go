package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sunflower/sunflower-api/internal/core/domain"
	"github.com/sunflower/sunflower-api/internal/core/ports"
	"github.com/sunflower/sunflower-api/internal/pkg/metrics"
)

const (
	tokenTypeBearer = "bearer"

	// bcrypt rejects passwords longer than this many bytes.
	maxPasswordBytes = 72

	msgLoggedIn           = "Logged in successfully"
	msgVerifyToContinue   = "Please verify your email to access the product."
	msgEmailVerified      = "Email verified successfully"
	msgAlreadyVerified    = "Email already verified"
	msgVerificationResent = "Verification email resent successfully."
)

// AuthService implements registration, login and the email verification
// state machine (unverified → verified, never back).
type AuthService struct {
	repo        ports.UserRepository
	audit       ports.AuditRepository
	hasher      ports.PasswordHasher
	tokens      ports.TokenIssuer
	notifier    ports.Notifier
	frontendURL string
	log         zerolog.Logger

	// dummyHash is checked against when the email is unknown so both login
	// failure paths cost one bcrypt comparison.
	dummyHash string
}

func NewAuthService(
	repo ports.UserRepository,
	audit ports.AuditRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	notifier ports.Notifier,
	frontendURL string,
	log zerolog.Logger,
) (*AuthService, error) {
	dummy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("auth service: dummy hash: %w", err)
	}
	return &AuthService{
		repo:        repo,
		audit:       audit,
		hasher:      hasher,
		tokens:      tokens,
		notifier:    notifier,
		frontendURL: frontendURL,
		log:         log,
		dummyHash:   dummy,
	}, nil
}

var _ ports.AuthService = (*AuthService)(nil)

// Register creates an unverified user and queues the verification email.
// Everything fallible runs before the insert, so a failed registration
// never leaves a user behind.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	email, username, err := normalizeRegistration(in)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("user", "error").Inc()
		return nil, fmt.Errorf("register: %w", err)
	}

	token, err := s.tokens.IssueEmailVerification(email)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("user", "error").Inc()
		return nil, fmt.Errorf("register: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		FullName:     in.FullName,
		VisaStatus:   in.VisaStatus,
		Education:    in.Education,
		Nationality:  in.Nationality,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			metrics.RegistrationsTotal.WithLabelValues("user", "conflict").Inc()
			return nil, err
		}
		metrics.RegistrationsTotal.WithLabelValues("user", "error").Inc()
		return nil, fmt.Errorf("register: %w", err)
	}
	metrics.RegistrationsTotal.WithLabelValues("user", "created").Inc()

	s.sendVerification(ctx, created.Email, token)
	recordAudit(ctx, s.audit, s.log, created.ID, domain.AuditRegister, "")

	s.log.Info().Str("user_id", created.ID).Msg("user registered")
	return created, nil
}

// Login checks credentials and issues an access token. An unknown email and a
// wrong password produce the same error. Unverified users still get a token;
// the message tells them to verify.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	user, err := s.checkCredentials(ctx, email, password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("user", "invalid_credentials").Inc()
		}
		return nil, err
	}

	token, err := s.tokens.IssueAccess(user.ID)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	msg := msgLoggedIn
	result := "success"
	if !user.IsVerified {
		msg = msgVerifyToContinue
		result = "unverified"
	}
	metrics.LoginsTotal.WithLabelValues("user", result).Inc()

	return &ports.LoginResult{
		AccessToken: token,
		TokenType:   tokenTypeBearer,
		ExpiresIn:   s.tokens.AccessTTL(),
		Message:     msg,
		User:        user,
	}, nil
}

func (s *AuthService) checkCredentials(ctx context.Context, email, password string) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) || !user.IsActive {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// VerifyEmail applies a verification token to user. It is idempotent: an
// already verified user gets a success message and no state change. A bad
// token and a token issued for another address fail identically.
func (s *AuthService) VerifyEmail(ctx context.Context, user *domain.User, token string) (string, error) {
	if !user.VerificationStatus().CanTransitionTo(domain.StatusVerified) {
		metrics.EmailVerificationsTotal.WithLabelValues("already_verified").Inc()
		return msgAlreadyVerified, nil
	}

	email, err := s.tokens.VerifyEmailVerification(token)
	if err != nil || email != normalizeEmail(user.Email) {
		metrics.EmailVerificationsTotal.WithLabelValues("invalid_token").Inc()
		return "", domain.ErrInvalidToken
	}

	changed, err := s.repo.MarkVerified(ctx, user.ID)
	if err != nil {
		return "", fmt.Errorf("verify email: %w", err)
	}
	user.IsVerified = true

	if changed {
		recordAudit(ctx, s.audit, s.log, user.ID, domain.AuditEmailVerified, "")
		s.log.Info().Str("user_id", user.ID).Msg("email verified")
	}
	metrics.EmailVerificationsTotal.WithLabelValues("verified").Inc()
	return msgEmailVerified, nil
}

// ResendVerification issues a fresh verification token and queues the email.
// Throttling is the route's concern, not this method's.
func (s *AuthService) ResendVerification(ctx context.Context, user *domain.User) (string, error) {
	if user.VerificationStatus() == domain.StatusVerified {
		return "", domain.ErrAlreadyVerified
	}

	token, err := s.tokens.IssueEmailVerification(normalizeEmail(user.Email))
	if err != nil {
		return "", fmt.Errorf("resend verification: %w", err)
	}
	s.sendVerification(ctx, user.Email, token)

	return msgVerificationResent, nil
}

// UpdateProfile changes the user's optional profile fields and records the
// change in the audit log.
func (s *AuthService) UpdateProfile(ctx context.Context, user *domain.User, update domain.ProfileUpdate) (*domain.User, error) {
	if update.IsEmpty() {
		return user, nil
	}

	updated, err := s.repo.UpdateProfile(ctx, user.ID, update)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	recordAudit(ctx, s.audit, s.log, user.ID, domain.AuditProfileUpdate, changedFields(update))
	return updated, nil
}

func (s *AuthService) sendVerification(ctx context.Context, to, token string) {
	link := verificationLink(s.frontendURL, token)
	if err := s.notifier.SendVerificationEmail(ctx, to, link); err != nil {
		s.log.Warn().Err(err).Msg("verification email not queued")
	}
}

// verificationLink builds the frontend URL a user follows to verify their email.
func verificationLink(frontendURL, token string) string {
	return strings.TrimRight(frontendURL, "/") + "/verify-email?token=" + url.QueryEscape(token)
}

func changedFields(u domain.ProfileUpdate) string {
	var fields []string
	if u.FullName != nil {
		fields = append(fields, "full_name")
	}
	if u.VisaStatus != nil {
		fields = append(fields, "visa_status")
	}
	if u.Education != nil {
		fields = append(fields, "education")
	}
	if u.Nationality != nil {
		fields = append(fields, "nationality")
	}
	return "updated: " + strings.Join(fields, ", ")
}

// recordAudit writes an audit entry; failures are logged and swallowed.
func recordAudit(ctx context.Context, audit ports.AuditRepository, log zerolog.Logger, userID, action, details string) {
	if audit == nil {
		return
	}
	err := audit.Insert(ctx, &domain.AuditEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Action:    action,
		Details:   details,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Str("action", action).Msg("failed to write audit entry")
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// normalizeRegistration returns the normalized email and username, or
// ErrInvalidInput when a required field is blank or the password is longer
// than bcrypt accepts.
func normalizeRegistration(in ports.RegisterInput) (string, string, error) {
	email := normalizeEmail(in.Email)
	username := strings.TrimSpace(in.Username)
	if email == "" || username == "" || in.Password == "" {
		return "", "", domain.ErrInvalidInput
	}
	if len(in.Password) > maxPasswordBytes {
		return "", "", domain.ErrInvalidInput
	}
	return email, username, nil
}
