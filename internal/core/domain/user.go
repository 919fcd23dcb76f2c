package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Role represents a user's platform role.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a platform account mapped from a relayed external identity.
// Users are created on first contact and never deleted.
type User struct {
	ID         uuid.UUID `json:"id"`
	TelegramID string    `json:"telegram_id"`
	Role       Role      `json:"role"`
	CreatedAt  time.Time `json:"created_at"`
}

// Balance holds a user's internal token balance, 1:1 with User.
// Amount is a non-negative 2-decimal currency value; non-negativity is
// enforced by the engine's conditional debit, never assumed from the store.
type Balance struct {
	UserID    uuid.UUID       `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	UpdatedAt time.Time       `json:"updated_at"`
}
