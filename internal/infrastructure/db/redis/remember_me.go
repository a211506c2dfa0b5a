package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sunbooking/booking-system/internal/core/domain"
	"github.com/sunbooking/booking-system/internal/core/ports"
)

// RememberMeStore persists remember-me series as Redis hashes.
// Key format: remember:<series> -> {user_id, token_hash, last_used}
type RememberMeStore struct {
	client *redis.Client
}

var _ ports.RememberMeStore = (*RememberMeStore)(nil)

func NewRememberMeStore(client *redis.Client) *RememberMeStore {
	return &RememberMeStore{client: client}
}

// Save writes the token and (re)sets its expiry in one transaction.
func (s *RememberMeStore) Save(ctx context.Context, token ports.RememberMeToken, ttl time.Duration) error {
	key := s.key(token.Series)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			"user_id", token.UserID,
			"token_hash", token.TokenHash,
			"last_used", token.LastUsed.Unix(),
		)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save remember-me: %w", err)
	}
	return nil
}

// Find loads a series. A missing or expired series yields
// domain.ErrRememberMeNotFound.
func (s *RememberMeStore) Find(ctx context.Context, series string) (*ports.RememberMeToken, error) {
	fields, err := s.client.HGetAll(ctx, s.key(series)).Result()
	if err != nil {
		return nil, fmt.Errorf("find remember-me: %w", err)
	}
	if len(fields) == 0 || fields["user_id"] == "" {
		return nil, domain.ErrRememberMeNotFound
	}

	lastUsed, _ := strconv.ParseInt(fields["last_used"], 10, 64)
	return &ports.RememberMeToken{
		Series:    series,
		UserID:    fields["user_id"],
		TokenHash: fields["token_hash"],
		LastUsed:  time.Unix(lastUsed, 0).UTC(),
	}, nil
}

func (s *RememberMeStore) Delete(ctx context.Context, series string) error {
	return s.client.Del(ctx, s.key(series)).Err()
}

func (s *RememberMeStore) key(series string) string {
	return "remember:" + series
}
