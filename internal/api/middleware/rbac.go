package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/sunflower/sunflower-api/internal/core/domain"
)

// RequireVerified rejects principals that have not verified their email.
// Must run after RequireAuth.
func RequireVerified() echo.MiddlewareFunc {
	return requireUser(func(u *domain.User) error {
		if !u.IsVerified {
			return domain.ErrUnverified
		}
		return nil
	})
}

// RequireSuperuser restricts a route to admin accounts.
func RequireSuperuser() echo.MiddlewareFunc {
	return requireUser(func(u *domain.User) error {
		if !u.IsSuperuser {
			return domain.ErrForbidden
		}
		return nil
	})
}

func requireUser(check func(*domain.User) error) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := UserFrom(c)
			if !ok {
				return domain.ErrUnauthenticated
			}
			if err := check(user); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// RequireUnverified short-circuits actions that only make sense before
// verification, so verified callers never reach the rate limiter.
func RequireUnverified() echo.MiddlewareFunc {
	return requireUser(func(u *domain.User) error {
		if u.IsVerified {
			return domain.ErrAlreadyVerified
		}
		return nil
	})
}
