package ports

import (
	"context"
	"errors"

	"funding-platform/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrUniqueViolation is returned by Create methods when the store rejects a
// row due to a unique constraint. Callers rely on it for concurrency control:
// first-contact user races and duplicate participation reservations.
var ErrUniqueViolation = errors.New("unique constraint violation")

// UserRepository defines persistence operations for users.
type UserRepository interface {
	// Create inserts a new user. Returns ErrUniqueViolation if the
	// telegram_id is already taken by a concurrent first contact.
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByTelegramID(ctx context.Context, telegramID string) (*domain.User, error)
}

// BalanceRepository defines persistence operations for user balances.
// The store enforces no non-negativity constraint; DebitIfSufficient is the
// single primitive that keeps balances from going negative under contention.
type BalanceRepository interface {
	// Create inserts a zero-or-more balance row. Returns ErrUniqueViolation
	// if the user already has one.
	Create(ctx context.Context, balance *domain.Balance) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Balance, error)
	// DebitIfSufficient atomically decrements the balance by amount only if
	// the current amount covers it, verified as part of the same write.
	// Returns the new balance and true on success, false if rejected.
	DebitIfSufficient(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, bool, error)
	// Credit atomically increments the balance and returns the new amount.
	Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error)
}

// LotRepository defines read-only access to externally owned lots.
type LotRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Lot, error)
	// ListActive returns active lots, newest first, capped at limit.
	ListActive(ctx context.Context, limit int) ([]domain.Lot, error)
}

// DonationRepository defines persistence operations for donations.
// Donations are immutable once created.
type DonationRepository interface {
	Create(ctx context.Context, donation *domain.Donation) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Donation, error)
}

// ParticipationRepository defines persistence operations for participations.
type ParticipationRepository interface {
	// Create inserts a reserved participation. Returns ErrUniqueViolation if
	// the (lot_id, user_id) pair already holds a reservation.
	Create(ctx context.Context, participation *domain.Participation) error
	// Cancel flips a reservation to cancelled; used only by saga compensation.
	Cancel(ctx context.Context, id uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Participation, error)
	// SumReservedByLot aggregates the reserved amounts of one lot.
	SumReservedByLot(ctx context.Context, lotID uuid.UUID) (decimal.Decimal, error)
}

// LedgerRepository appends immutable audit records. No update or delete
// operations exist by design of the ledger.
type LedgerRepository interface {
	Create(ctx context.Context, entry *domain.LedgerEntry) error
}
