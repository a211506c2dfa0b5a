package ports

import (
	"context"

	"github.com/sunbooking/booking-system/internal/core/domain"
)

// AuthRepository is the credential store. Lookups return
// domain.ErrUserNotFound when no user matches.
type AuthRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
