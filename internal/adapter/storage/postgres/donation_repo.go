package postgres

import (
	"context"
	"fmt"

	"funding-platform/internal/core/domain"

	"github.com/google/uuid"
)

// DonationRepo implements ports.DonationRepository. Donation rows are
// append-only; there is no update path.
type DonationRepo struct {
	pool Pool
}

// NewDonationRepo creates a new DonationRepo.
func NewDonationRepo(pool Pool) *DonationRepo {
	return &DonationRepo{pool: pool}
}

// Create inserts a confirmed donation.
func (r *DonationRepo) Create(ctx context.Context, d *domain.Donation) error {
	query := `INSERT INTO donations (id, lot_id, user_id, amount, platform_fee, seller_amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		d.ID, d.LotID, d.UserID, d.Amount, d.PlatformFee, d.SellerAmount, d.Status, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert donation: %w", err)
	}
	return nil
}

// ListByUser returns the user's donations, newest first.
func (r *DonationRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Donation, error) {
	query := `SELECT id, lot_id, user_id, amount, platform_fee, seller_amount, status, created_at
		FROM donations WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	defer rows.Close()

	var donations []domain.Donation
	for rows.Next() {
		var d domain.Donation
		if err := rows.Scan(
			&d.ID, &d.LotID, &d.UserID, &d.Amount, &d.PlatformFee,
			&d.SellerAmount, &d.Status, &d.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan donation: %w", err)
		}
		donations = append(donations, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate donations: %w", err)
	}
	return donations, nil
}
