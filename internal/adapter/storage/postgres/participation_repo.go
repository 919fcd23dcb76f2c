package postgres

import (
	"context"
	"fmt"

	"funding-platform/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ParticipationRepo implements ports.ParticipationRepository.
type ParticipationRepo struct {
	pool Pool
}

// NewParticipationRepo creates a new ParticipationRepo.
func NewParticipationRepo(pool Pool) *ParticipationRepo {
	return &ParticipationRepo{pool: pool}
}

// Create inserts a reserved participation. The partial unique index on
// (lot_id, user_id) for reserved rows is the only duplicate guard; races
// surface as ports.ErrUniqueViolation.
func (r *ParticipationRepo) Create(ctx context.Context, p *domain.Participation) error {
	query := `INSERT INTO participations (id, lot_id, user_id, amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query, p.ID, p.LotID, p.UserID, p.Amount, p.Status, p.CreatedAt)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("insert participation: %w", err)
	}
	return nil
}

// Cancel flips a reservation to cancelled.
func (r *ParticipationRepo) Cancel(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE participations SET status = 'cancelled' WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("cancel participation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("participation not found: %s", id)
	}
	return nil
}

// ListByUser returns the user's participations, newest first.
func (r *ParticipationRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Participation, error) {
	query := `SELECT id, lot_id, user_id, amount, status, created_at
		FROM participations WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list participations: %w", err)
	}
	defer rows.Close()

	var participations []domain.Participation
	for rows.Next() {
		var p domain.Participation
		if err := rows.Scan(&p.ID, &p.LotID, &p.UserID, &p.Amount, &p.Status, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan participation: %w", err)
		}
		participations = append(participations, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participations: %w", err)
	}
	return participations, nil
}

// SumReservedByLot aggregates the reserved amounts of one lot.
func (r *ParticipationRepo) SumReservedByLot(ctx context.Context, lotID uuid.UUID) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM participations
		WHERE lot_id = $1 AND status = 'reserved'`

	var sum decimal.Decimal
	if err := r.pool.QueryRow(ctx, query, lotID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum reserved participations: %w", err)
	}
	return sum, nil
}
