package ports

import (
	"context"

	"github.com/sunbooking/booking-system/internal/core/domain"
)

// RegisterInput carries the fields of an API registration.
type RegisterInput struct {
	Name      string
	Email     string
	Password  string
	Phone     string
	SourceKey string
}

type AuthService interface {
	// Authenticate checks credentials without touching the attempt tracker.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	// Login is the throttled API login; it returns a bearer token on success.
	Login(ctx context.Context, sourceKey, email, password string) (string, *domain.User, error)
}
