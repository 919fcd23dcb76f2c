package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerType represents the kind of value movement being recorded.
type LedgerType string

const (
	LedgerTypeDonation          LedgerType = "donation"
	LedgerTypePlatformFee       LedgerType = "platform_fee"
	LedgerTypeParticipationLock LedgerType = "participation_lock"
	LedgerTypeAdminAdjustment   LedgerType = "admin_adjustment"
)

// LedgerStatus represents the recorded state of a ledger entry.
type LedgerStatus string

const (
	LedgerStatusConfirmed LedgerStatus = "confirmed"
)

// LedgerEntry is an append-only, immutable audit record of a value movement.
type LedgerEntry struct {
	ID                 uuid.UUID         `json:"id"`
	ActorUserID        uuid.UUID         `json:"actor_user_id"`
	CounterpartyUserID *uuid.UUID        `json:"counterparty_user_id,omitempty"`
	LotID              *uuid.UUID        `json:"lot_id,omitempty"`
	Type               LedgerType        `json:"type"`
	Amount             decimal.Decimal   `json:"amount"`
	Status             LedgerStatus      `json:"status"`
	Meta               map[string]string `json:"meta,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
}
