package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ParticipationStatus represents the lifecycle state of a participation slot.
type ParticipationStatus string

const (
	ParticipationStatusReserved ParticipationStatus = "reserved"
	// ParticipationStatusCancelled marks reservations undone by saga
	// compensation after a failed debit or ledger write.
	ParticipationStatusCancelled ParticipationStatus = "cancelled"
)

// Participation is a reserved, paid slot in a lot, unique per (lot, user).
// The store's unique constraint on (lot_id, user_id) is the sole guard
// against duplicate reservations under concurrency.
type Participation struct {
	ID        uuid.UUID           `json:"id"`
	LotID     uuid.UUID           `json:"lot_id"`
	UserID    uuid.UUID           `json:"user_id"`
	Amount    decimal.Decimal     `json:"amount"`
	Status    ParticipationStatus `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
}
