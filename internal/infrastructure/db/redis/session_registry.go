package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sunbooking/booking-system/internal/core/ports"
)

// revokeSessionScript deletes the registry key only while it still names the
// session being revoked, so a stale logout cannot evict a newer login.
const revokeSessionScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// touchSessionScript extends the registry key only for the session it names.
const touchSessionScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`

var (
	revokeSessionLua = redis.NewScript(revokeSessionScript)
	touchSessionLua  = redis.NewScript(touchSessionScript)
)

// SessionRegistry keeps one live admin session per account.
// Key format: session:user:<user_id> -> <session_id>
type SessionRegistry struct {
	client *redis.Client
}

var _ ports.SessionRegistry = (*SessionRegistry)(nil)

func NewSessionRegistry(client *redis.Client) *SessionRegistry {
	return &SessionRegistry{client: client}
}

// Register makes sessionID the account's current session. Any earlier session
// stops being current and is treated as expired on its next request.
func (r *SessionRegistry) Register(ctx context.Context, userID, sessionID string, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.key(userID), sessionID, ttl).Err(); err != nil {
		return fmt.Errorf("register session: %w", err)
	}
	return nil
}

// IsCurrent reports whether sessionID is still the account's live session.
func (r *SessionRegistry) IsCurrent(ctx context.Context, userID, sessionID string) (bool, error) {
	current, err := r.client.Get(ctx, r.key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("session lookup: %w", err)
	}
	return current == sessionID, nil
}

// Touch slides the expiry of a still-current session.
func (r *SessionRegistry) Touch(ctx context.Context, userID, sessionID string, ttl time.Duration) error {
	err := touchSessionLua.Run(ctx, r.client, []string{r.key(userID)}, sessionID, ttl.Milliseconds()).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

func (r *SessionRegistry) Revoke(ctx context.Context, userID, sessionID string) error {
	if err := revokeSessionLua.Run(ctx, r.client, []string{r.key(userID)}, sessionID).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (r *SessionRegistry) key(userID string) string {
	return "session:user:" + userID
}
