package postgres

import (
	"context"
	"errors"
	"fmt"

	"funding-platform/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// BalanceRepo implements ports.BalanceRepository.
type BalanceRepo struct {
	pool Pool
}

// NewBalanceRepo creates a new BalanceRepo.
func NewBalanceRepo(pool Pool) *BalanceRepo {
	return &BalanceRepo{pool: pool}
}

// Create inserts a balance row, one per user.
func (r *BalanceRepo) Create(ctx context.Context, b *domain.Balance) error {
	query := `INSERT INTO balances (user_id, amount, updated_at)
		VALUES ($1, $2, $3)`

	_, err := r.pool.Exec(ctx, query, b.UserID, b.Amount, b.UpdatedAt)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("insert balance: %w", err)
	}
	return nil
}

// GetByUserID fetches a user's balance.
func (r *BalanceRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Balance, error) {
	query := `SELECT user_id, amount, updated_at FROM balances WHERE user_id = $1`

	b := &domain.Balance{}
	err := r.pool.QueryRow(ctx, query, userID).Scan(&b.UserID, &b.Amount, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get balance by user id: %w", err)
	}
	return b, nil
}

// DebitIfSufficient decrements the balance only when it covers the amount.
// The sufficiency check rides in the UPDATE's WHERE clause, so two
// concurrent debits can never drive the balance negative: the row lock
// serialises them and the loser's predicate re-evaluates against the
// already-decremented value.
func (r *BalanceRepo) DebitIfSufficient(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, bool, error) {
	query := `UPDATE balances
		SET amount = amount - $2, updated_at = NOW()
		WHERE user_id = $1 AND amount >= $2
		RETURNING amount`

	var newAmount decimal.Decimal
	err := r.pool.QueryRow(ctx, query, userID, amount).Scan(&newAmount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// No matching row: balance missing or insufficient.
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, fmt.Errorf("debit balance: %w", err)
	}
	return newAmount, true, nil
}

// Credit increments the balance and returns the new amount.
func (r *BalanceRepo) Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	query := `UPDATE balances
		SET amount = amount + $2, updated_at = NOW()
		WHERE user_id = $1
		RETURNING amount`

	var newAmount decimal.Decimal
	err := r.pool.QueryRow(ctx, query, userID, amount).Scan(&newAmount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("credit balance: no balance row for user %s", userID)
		}
		return decimal.Zero, fmt.Errorf("credit balance: %w", err)
	}
	return newAmount, nil
}
