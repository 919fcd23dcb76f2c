package postgres

import (
	"context"
	"errors"
	"fmt"

	"funding-platform/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// LotRepo implements ports.LotRepository. Lots are owned by an external
// system; this repo only reads them.
type LotRepo struct {
	pool Pool
}

// NewLotRepo creates a new LotRepo.
func NewLotRepo(pool Pool) *LotRepo {
	return &LotRepo{pool: pool}
}

const lotColumns = `id, creator_id, title, status, goal_amount, price_per_participation, currency, ends_at, created_at`

// GetByID fetches a lot by its UUID.
func (r *LotRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE id = $1`

	l := &domain.Lot{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&l.ID, &l.CreatorID, &l.Title, &l.Status, &l.GoalAmount,
		&l.PricePerParticipation, &l.Currency, &l.EndsAt, &l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot by id: %w", err)
	}
	return l, nil
}

// ListActive returns active lots, newest first.
func (r *LotRepo) ListActive(ctx context.Context, limit int) ([]domain.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots
		WHERE status = 'active'
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list active lots: %w", err)
	}
	defer rows.Close()

	var lots []domain.Lot
	for rows.Next() {
		var l domain.Lot
		if err := rows.Scan(
			&l.ID, &l.CreatorID, &l.Title, &l.Status, &l.GoalAmount,
			&l.PricePerParticipation, &l.Currency, &l.EndsAt, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		lots = append(lots, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lots: %w", err)
	}
	return lots, nil
}
