package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sunflower/sunflower-api/internal/core/domain"
)

// ContextKeyUser is the echo context key holding the authenticated *domain.User.
const ContextKeyUser = "user"

// AccessVerifier resolves an access token to its subject (the user id).
type AccessVerifier interface {
	VerifyAccess(token string) (string, error)
}

// UserFinder loads principals by id.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// Gate turns a bearer token into an authenticated principal.
type Gate struct {
	tokens AccessVerifier
	users  UserFinder
}

func NewGate(tokens AccessVerifier, users UserFinder) *Gate {
	return &Gate{tokens: tokens, users: users}
}

// Authenticate resolves the request's bearer token to a user. Every
// client-side failure is domain.ErrUnauthenticated; store failures are
// returned wrapped so they surface as internal errors.
func (g *Gate) Authenticate(r *http.Request) (*domain.User, error) {
	token, ok := bearerToken(r.Header.Get(echo.HeaderAuthorization))
	if !ok {
		return nil, domain.ErrUnauthenticated
	}

	userID, err := g.tokens.VerifyAccess(token)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}

	user, err := g.users.FindByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if !user.IsActive {
		return nil, domain.ErrUnauthenticated
	}
	return user, nil
}

// RequireAuth authenticates the request and stores the user under ContextKeyUser.
func (g *Gate) RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := g.Authenticate(c.Request())
			if err != nil {
				return err
			}
			c.Set(ContextKeyUser, user)
			return next(c)
		}
	}
}

// UserFrom returns the user stored by RequireAuth.
func UserFrom(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(ContextKeyUser).(*domain.User)
	return user, ok && user != nil
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
