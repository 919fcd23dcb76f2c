package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"funding-platform/internal/core/domain"
)

// LedgerRepo implements ports.LedgerRepository. Entries are append-only;
// the repo deliberately has no update or delete methods.
type LedgerRepo struct {
	pool Pool
}

// NewLedgerRepo creates a new LedgerRepo.
func NewLedgerRepo(pool Pool) *LedgerRepo {
	return &LedgerRepo{pool: pool}
}

// Create appends one ledger entry. Meta is stored as JSONB.
func (r *LedgerRepo) Create(ctx context.Context, e *domain.LedgerEntry) error {
	var meta []byte
	if len(e.Meta) > 0 {
		var err error
		meta, err = json.Marshal(e.Meta)
		if err != nil {
			return fmt.Errorf("marshal ledger meta: %w", err)
		}
	}

	query := `INSERT INTO ledger_entries (id, actor_user_id, counterparty_user_id, lot_id, type, amount, status, meta, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		e.ID, e.ActorUserID, e.CounterpartyUserID, e.LotID,
		e.Type, e.Amount, e.Status, meta, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}
