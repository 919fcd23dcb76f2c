package ports

import (
	"context"
	"time"

	"funding-platform/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Identity is the canonical external identity extracted from a verified
// initData payload.
type Identity struct {
	TelegramID string
}

// InitDataVerifier validates a signed identity payload relayed by the
// messaging platform. Pure and stateless.
type InitDataVerifier interface {
	// Verify authenticates the payload and extracts the user identity.
	// Every failure mode returns the same undifferentiated access-denied
	// error.
	Verify(initData string) (Identity, error)
}

// IdentityService maps external identities to internal users, creating the
// user and its zero balance on first contact. Idempotent under races.
type IdentityService interface {
	EnsureUser(ctx context.Context, telegramID string) (*domain.User, error)
}

// TransactionService orchestrates the multi-step balance operations as sagas:
// each forward step has a declared compensation, executed in reverse order on
// partial failure.
type TransactionService interface {
	// Donate debits the actor's balance by amount and records the donation
	// with its fee split. Returns the new balance.
	Donate(ctx context.Context, actor *domain.User, lotID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error)
	// Participate reserves a paid slot in the lot at its participation price.
	// Returns the new balance.
	Participate(ctx context.Context, actor *domain.User, lotID uuid.UUID) (decimal.Decimal, error)
	// AdminTopup credits the target user's balance. Actor must be in the
	// static admin allow-list. Returns the target's new balance.
	AdminTopup(ctx context.Context, actor *domain.User, targetTelegramID string, amount decimal.Decimal) (decimal.Decimal, error)
	// IsAdmin reports whether the identity is in the admin allow-list.
	IsAdmin(telegramID string) bool
	ListDonations(ctx context.Context, userID uuid.UUID) ([]domain.Donation, error)
	ListParticipations(ctx context.Context, userID uuid.UUID) ([]domain.Participation, error)
}

// LotsFeedService projects the public feed of active lots with their
// funding progress.
type LotsFeedService interface {
	ActiveLots(ctx context.Context, limit int) ([]domain.LotView, error)
}

// RelayMessage is the inbound chat message shape delivered by the upstream
// relay transport.
type RelayMessage struct {
	Chat struct {
		ID int64 `json:"id"`
	} `json:"chat"`
	From struct {
		ID int64 `json:"id"`
	} `json:"from"`
	Text string `json:"text"`
}

// RelayUpdate wraps a relay delivery. Message may be nil for non-message
// updates, which are ignored.
type RelayUpdate struct {
	Message *RelayMessage `json:"message"`
}

// BotService interprets relayed chat commands. Errors are internal only; the
// transport always acknowledges delivery to stop at-least-once redelivery.
type BotService interface {
	HandleUpdate(ctx context.Context, update RelayUpdate) error
}

// Button is one inline keyboard button. WebAppURL opens the mini app,
// URL opens a plain link; exactly one should be set.
type Button struct {
	Text      string
	URL       string
	WebAppURL string
}

// Notifier is the outbound capability of the messaging relay.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string, keyboard [][]Button) error
}

// CooldownStore throttles duplicate high-frequency command bursts per
// identity. Entries expire on their own; the structure is bounded.
type CooldownStore interface {
	// Touch records a hit for the identity. Returns true if this is the first
	// hit inside the window (the command should be processed), false if the
	// identity is cooling down.
	Touch(ctx context.Context, identity string, window time.Duration) (bool, error)
}
