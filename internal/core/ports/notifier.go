package ports

import "context"

// Notifier delivers verification emails. Callers treat delivery as
// fire-and-forget: errors are logged, never surfaced to the end user.
type Notifier interface {
	SendVerificationEmail(ctx context.Context, to, verificationLink string) error
}
