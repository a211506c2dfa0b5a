package ports

import (
	"context"

	"github.com/sunbooking/booking-system/internal/core/domain"
)

// LoginEventRepository persists login audit records.
type LoginEventRepository interface {
	InsertLoginEvent(ctx context.Context, event *domain.LoginEvent) error
}

// LoginAuditor accepts login events without blocking the caller.
type LoginAuditor interface {
	Enqueue(event domain.LoginEvent)
}
