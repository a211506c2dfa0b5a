package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sunbooking/booking-system/internal/core/domain"
	"github.com/sunbooking/booking-system/internal/core/ports"
)

// AuthService implements credential checks, registration and the throttled
// API login.
type AuthService struct {
	repo     ports.AuthRepository
	tokens   ports.TokenService
	attempts ports.LoginAttemptTracker
	audit    ports.LoginAuditor
	hasher   PasswordHasher
	log      zerolog.Logger
	now      func() time.Time
}

var _ ports.AuthService = (*AuthService)(nil)

// NewAuthService wires the service. audit may be nil.
func NewAuthService(
	repo ports.AuthRepository,
	tokens ports.TokenService,
	attempts ports.LoginAttemptTracker,
	audit ports.LoginAuditor,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		repo:     repo,
		tokens:   tokens,
		attempts: attempts,
		audit:    audit,
		log:      log,
		now:      time.Now,
	}
}

// Authenticate resolves email to an active user whose password matches.
// Unknown emails and wrong passwords both yield ErrInvalidCredentials; an
// inactive account with the right password yields ErrAccountInactive.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		s.hasher.burn(password)
		s.log.Debug().Str("email", email).Msg("login for unknown email")
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if !s.hasher.Verify(user.PasswordHash, password) {
		s.log.Debug().Str("email", email).Msg("password mismatch")
		return nil, domain.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, domain.ErrAccountInactive
	}
	return user, nil
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	if in.SourceKey != "" && s.attempts.IsBlocked(in.SourceKey) {
		return nil, &domain.RateLimitError{RemainingMinutes: s.attempts.RemainingLockoutMinutes(in.SourceKey)}
	}

	email := domain.NormalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if name == "" || email == "" || in.Password == "" {
		return nil, domain.ErrInvalidInput
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		s.recordFailure(in.SourceKey)
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := s.now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Name:         name,
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: hash,
		Role:         domain.RoleUser,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			s.recordFailure(in.SourceKey)
			return nil, err
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Str("email", created.Email).Msg("user registered")
	return created, nil
}

// Login authenticates an API client. A blocked source fails fast with a
// *domain.RateLimitError before any credential lookup.
func (s *AuthService) Login(ctx context.Context, sourceKey, email, password string) (string, *domain.User, error) {
	email = domain.NormalizeEmail(email)

	if s.attempts.IsBlocked(sourceKey) {
		minutes := s.attempts.RemainingLockoutMinutes(sourceKey)
		s.log.Warn().Str("ip", sourceKey).Int("remaining_minutes", minutes).Msg("api login blocked")
		s.record(email, sourceKey, domain.OutcomeBlocked, "rate_limited")
		return "", nil, &domain.RateLimitError{RemainingMinutes: minutes}
	}

	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) || errors.Is(err, domain.ErrAccountInactive) {
			s.attempts.RecordFailure(sourceKey)
			s.log.Warn().Err(err).Str("ip", sourceKey).Str("email", email).Msg("api login failed")
			s.record(email, sourceKey, domain.OutcomeFailure, err.Error())
		}
		return "", nil, err
	}

	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("login: %w", err)
	}

	s.attempts.Reset(sourceKey)
	s.record(email, sourceKey, domain.OutcomeSuccess, "")
	s.log.Info().Str("ip", sourceKey).Str("email", user.Email).Msg("api login succeeded")
	return token, user, nil
}

// EnsureAdmin creates an active ADMIN account for email unless one already
// exists. It reports whether an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return false, domain.ErrInvalidInput
	}

	_, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return false, fmt.Errorf("bootstrap admin: hash password: %w", err)
	}
	now := s.now().UTC()
	if _, err := s.repo.Create(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}); err != nil {
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}
	s.log.Info().Str("email", email).Msg("bootstrap admin created")
	return true, nil
}

func (s *AuthService) recordFailure(sourceKey string) {
	if sourceKey != "" {
		s.attempts.RecordFailure(sourceKey)
	}
}

func (s *AuthService) record(email, sourceKey string, outcome domain.LoginOutcome, reason string) {
	if s.audit == nil {
		return
	}
	s.audit.Enqueue(domain.LoginEvent{
		Flow:      domain.FlowToken,
		Email:     email,
		SourceKey: sourceKey,
		Outcome:   outcome,
		Reason:    reason,
		Timestamp: s.now().UTC(),
	})
}
