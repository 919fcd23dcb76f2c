package postgres

import (
	"context"
	"errors"
	"fmt"

	"funding-platform/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserRepo implements ports.UserRepository.
type UserRepo struct {
	pool Pool
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(pool Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// Create inserts a new user. The unique index on telegram_id decides
// first-contact races; losers get ports.ErrUniqueViolation.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (id, telegram_id, role, created_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.pool.Exec(ctx, query, u.ID, u.TelegramID, u.Role, u.CreatedAt)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID fetches a user by its UUID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT id, telegram_id, role, created_at FROM users WHERE id = $1`

	u := &domain.User{}
	err := r.pool.QueryRow(ctx, query, id).Scan(&u.ID, &u.TelegramID, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

// GetByTelegramID fetches a user by its external identity.
func (r *UserRepo) GetByTelegramID(ctx context.Context, telegramID string) (*domain.User, error) {
	query := `SELECT id, telegram_id, role, created_at FROM users WHERE telegram_id = $1`

	u := &domain.User{}
	err := r.pool.QueryRow(ctx, query, telegramID).Scan(&u.ID, &u.TelegramID, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by telegram id: %w", err)
	}
	return u, nil
}
