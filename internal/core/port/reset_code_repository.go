package port

import (
	"context"
	"time"

	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/core/domain"
)

// ResetCodeRepository persists password recovery codes.
type ResetCodeRepository interface {
	// Issue atomically invalidates the user's prior unused codes and
	// stores the new one, keeping at most one live code per user.
	Issue(ctx context.Context, code domain.PasswordResetCode) error
	// GetValid returns the unused row matching user and code, or
	// repository.ErrNotFound. Expiry is checked by the caller.
	GetValid(ctx context.Context, userID, code string) (*domain.PasswordResetCode, error)
	// Consume flips used to true for the row, guarded on it still being
	// unused. Returns repository.ErrNotFound when another caller won.
	Consume(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
