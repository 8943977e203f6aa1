package port

import (
	"context"
	"time"

	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/core/domain"
)

// UserRepository persists marketplace accounts.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdatePasswordHash(ctx context.Context, id, passwordHash string, changedAt time.Time) error
}
