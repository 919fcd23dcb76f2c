package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"funding-platform/internal/core/domain"
	"funding-platform/internal/core/ports"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- In-Memory User Repo ---

type inMemoryUserRepo struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*domain.User
}

func newInMemoryUserRepo() *inMemoryUserRepo {
	return &inMemoryUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *inMemoryUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.TelegramID == u.TelegramID {
			return ports.ErrUniqueViolation
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *inMemoryUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *inMemoryUserRepo) GetByTelegramID(ctx context.Context, telegramID string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.TelegramID == telegramID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// --- In-Memory Balance Repo ---

type inMemoryBalanceRepo struct {
	mu       sync.Mutex
	balances map[uuid.UUID]*domain.Balance
}

func newInMemoryBalanceRepo() *inMemoryBalanceRepo {
	return &inMemoryBalanceRepo{balances: make(map[uuid.UUID]*domain.Balance)}
}

func (r *inMemoryBalanceRepo) Create(ctx context.Context, b *domain.Balance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.balances[b.UserID]; ok {
		return ports.ErrUniqueViolation
	}
	cp := *b
	r.balances[b.UserID] = &cp
	return nil
}

func (r *inMemoryBalanceRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Balance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.balances[userID]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *inMemoryBalanceRepo) DebitIfSufficient(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.balances[userID]
	if !ok || b.Amount.LessThan(amount) {
		return decimal.Zero, false, nil
	}
	b.Amount = b.Amount.Sub(amount)
	b.UpdatedAt = time.Now().UTC()
	return b.Amount, true, nil
}

func (r *inMemoryBalanceRepo) Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.balances[userID]
	if !ok {
		return decimal.Zero, fmt.Errorf("no balance row for user %s", userID)
	}
	b.Amount = b.Amount.Add(amount)
	b.UpdatedAt = time.Now().UTC()
	return b.Amount, nil
}

// --- In-Memory Lot Repo ---

type inMemoryLotRepo struct {
	mu   sync.RWMutex
	lots map[uuid.UUID]*domain.Lot
}

func newInMemoryLotRepo() *inMemoryLotRepo {
	return &inMemoryLotRepo{lots: make(map[uuid.UUID]*domain.Lot)}
}

func (r *inMemoryLotRepo) seed(lot *domain.Lot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *lot
	r.lots[lot.ID] = &cp
}

func (r *inMemoryLotRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.lots[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (r *inMemoryLotRepo) ListActive(ctx context.Context, limit int) ([]domain.Lot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var lots []domain.Lot
	for _, l := range r.lots {
		if l.Status == domain.LotStatusActive {
			lots = append(lots, *l)
		}
	}
	sort.Slice(lots, func(i, j int) bool { return lots[i].CreatedAt.After(lots[j].CreatedAt) })
	if len(lots) > limit {
		lots = lots[:limit]
	}
	return lots, nil
}

// --- In-Memory Donation Repo ---

type inMemoryDonationRepo struct {
	mu        sync.RWMutex
	donations []domain.Donation
}

func newInMemoryDonationRepo() *inMemoryDonationRepo {
	return &inMemoryDonationRepo{}
}

func (r *inMemoryDonationRepo) Create(ctx context.Context, d *domain.Donation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.donations = append(r.donations, *d)
	return nil
}

func (r *inMemoryDonationRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Donation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Donation
	for _, d := range r.donations {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

// --- In-Memory Participation Repo ---

type inMemoryParticipationRepo struct {
	mu             sync.Mutex
	participations map[uuid.UUID]*domain.Participation
}

func newInMemoryParticipationRepo() *inMemoryParticipationRepo {
	return &inMemoryParticipationRepo{participations: make(map[uuid.UUID]*domain.Participation)}
}

func (r *inMemoryParticipationRepo) Create(ctx context.Context, p *domain.Participation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.participations {
		if existing.LotID == p.LotID && existing.UserID == p.UserID &&
			existing.Status == domain.ParticipationStatusReserved {
			return ports.ErrUniqueViolation
		}
	}
	cp := *p
	r.participations[p.ID] = &cp
	return nil
}

func (r *inMemoryParticipationRepo) Cancel(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participations[id]
	if !ok {
		return fmt.Errorf("participation not found: %s", id)
	}
	p.Status = domain.ParticipationStatusCancelled
	return nil
}

func (r *inMemoryParticipationRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Participation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Participation
	for _, p := range r.participations {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *inMemoryParticipationRepo) SumReservedByLot(ctx context.Context, lotID uuid.UUID) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := decimal.Zero
	for _, p := range r.participations {
		if p.LotID == lotID && p.Status == domain.ParticipationStatusReserved {
			sum = sum.Add(p.Amount)
		}
	}
	return sum, nil
}

// --- In-Memory Ledger Repo ---

type inMemoryLedgerRepo struct {
	mu      sync.Mutex
	entries []domain.LedgerEntry
}

func newInMemoryLedgerRepo() *inMemoryLedgerRepo {
	return &inMemoryLedgerRepo{}
}

func (r *inMemoryLedgerRepo) Create(ctx context.Context, e *domain.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *e)
	return nil
}

func (r *inMemoryLedgerRepo) byType(t domain.LedgerType) []domain.LedgerEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.LedgerEntry
	for _, e := range r.entries {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
