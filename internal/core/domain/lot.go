package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LotStatus represents the lifecycle state of a campaign lot.
type LotStatus string

const (
	LotStatusActive    LotStatus = "active"
	LotStatusCompleted LotStatus = "completed"
	LotStatusCancelled LotStatus = "cancelled"
)

// Lot is a campaign accepting donations and/or paid participation slots.
// Lots are owned by an external system and are read-only here.
type Lot struct {
	ID                    uuid.UUID       `json:"id"`
	CreatorID             uuid.UUID       `json:"creator_id"`
	Title                 string          `json:"title"`
	Status                LotStatus       `json:"status"`
	GoalAmount            decimal.Decimal `json:"goal_amount"`
	PricePerParticipation decimal.Decimal `json:"price_per_participation"`
	Currency              string          `json:"currency"`
	EndsAt                *time.Time      `json:"ends_at,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
}

// IsActive returns true if the lot accepts donations and participations.
func (l *Lot) IsActive() bool {
	return l.Status == LotStatusActive
}

// LotView is the public feed projection of a lot with its funding progress.
// Collected sums reserved participations only; donor-level totals stay private.
type LotView struct {
	Lot
	Collected decimal.Decimal `json:"collected"`
	Progress  float64         `json:"progress"`
}
