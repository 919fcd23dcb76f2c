package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"funding-platform/internal/core/domain"
	"funding-platform/internal/core/ports"
	"funding-platform/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// IdentityServiceImpl implements ports.IdentityService.
type IdentityServiceImpl struct {
	userRepo    ports.UserRepository
	balanceRepo ports.BalanceRepository
	log         zerolog.Logger
}

// NewIdentityService creates a new IdentityServiceImpl.
func NewIdentityService(userRepo ports.UserRepository, balanceRepo ports.BalanceRepository, log zerolog.Logger) *IdentityServiceImpl {
	return &IdentityServiceImpl{
		userRepo:    userRepo,
		balanceRepo: balanceRepo,
		log:         log,
	}
}

// EnsureUser returns the user mapped to telegramID, creating the user and its
// zero balance on first contact. A unique-violation on create means another
// request won the first-contact race; the row is re-fetched instead of
// failing. Fails only on store unavailability.
func (s *IdentityServiceImpl) EnsureUser(ctx context.Context, telegramID string) (*domain.User, error) {
	user, err := s.userRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lookup user: %w", err))
	}

	if user == nil {
		user, err = s.createUser(ctx, telegramID)
		if err != nil {
			return nil, err
		}
	}

	// The balance row is created exactly once per user; the unique constraint
	// makes this idempotent even if a previous first contact crashed between
	// the two inserts.
	if err := s.ensureBalance(ctx, user.ID); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *IdentityServiceImpl) createUser(ctx context.Context, telegramID string) (*domain.User, error) {
	user := &domain.User{
		ID:         uuid.New(),
		TelegramID: telegramID,
		Role:       domain.RoleUser,
		CreatedAt:  time.Now().UTC(),
	}

	err := s.userRepo.Create(ctx, user)
	if err == nil {
		s.log.Info().Str("telegram_id", telegramID).Str("user_id", user.ID.String()).Msg("user registered")
		return user, nil
	}
	if !errors.Is(err, ports.ErrUniqueViolation) {
		return nil, apperror.InternalError(fmt.Errorf("create user: %w", err))
	}

	// Concurrent first contact: the other request created the row.
	existing, err := s.userRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("refetch user after conflict: %w", err))
	}
	if existing == nil {
		return nil, apperror.InternalError(fmt.Errorf("user vanished after unique conflict: %s", telegramID))
	}
	return existing, nil
}

func (s *IdentityServiceImpl) ensureBalance(ctx context.Context, userID uuid.UUID) error {
	err := s.balanceRepo.Create(ctx, &domain.Balance{
		UserID:    userID,
		Amount:    decimal.Zero,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil && !errors.Is(err, ports.ErrUniqueViolation) {
		return apperror.InternalError(fmt.Errorf("create balance: %w", err))
	}
	return nil
}
