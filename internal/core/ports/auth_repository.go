package ports

import (
	"context"

	"github.com/sunflower/sunflower-api/internal/core/domain"
)

// UserRepository defines principal persistence used by the auth subsystem.
type UserRepository interface {
	// Create inserts a new user. A duplicate email or username yields domain.ErrUserExists.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// MarkVerified flips is_verified from false to true in a single atomic
	// update. It reports whether this call performed the transition.
	MarkVerified(ctx context.Context, id string) (bool, error)
	UpdateProfile(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.User, error)
}

// AuditRepository stores account audit entries.
type AuditRepository interface {
	Insert(ctx context.Context, entry *domain.AuditEntry) error
}
