package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"funding-platform/internal/core/domain"
	"funding-platform/internal/core/ports"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// In-memory repository fakes shared by the service tests. They mirror the
// store contract, including unique-violation signaling and the atomic
// conditional decrement, and allow error injection per operation.

// --- users ---

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User

	createErr error
	getErr    error
	// beforeCreate runs inside Create before the uniqueness check; used to
	// stage first-contact races.
	beforeCreate func()
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	if r.beforeCreate != nil {
		r.beforeCreate()
	}
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

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByTelegramID(ctx context.Context, telegramID string) (*domain.User, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.TelegramID == telegramID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// --- balances ---

type fakeBalanceRepo struct {
	mu       sync.Mutex
	balances map[uuid.UUID]decimal.Decimal

	createErr error
	debitErr  error
	creditErr error
	// creditErrOnce fails the next Credit call only; used to exercise
	// compensation failures.
	creditErrOnce error
}

func newFakeBalanceRepo() *fakeBalanceRepo {
	return &fakeBalanceRepo{balances: make(map[uuid.UUID]decimal.Decimal)}
}

func (r *fakeBalanceRepo) set(userID uuid.UUID, amount string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances[userID] = decimal.RequireFromString(amount)
}

func (r *fakeBalanceRepo) get(userID uuid.UUID) decimal.Decimal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.balances[userID]
}

func (r *fakeBalanceRepo) Create(ctx context.Context, b *domain.Balance) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.balances[b.UserID]; ok {
		return ports.ErrUniqueViolation
	}
	r.balances[b.UserID] = b.Amount
	return nil
}

func (r *fakeBalanceRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Balance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	amount, ok := r.balances[userID]
	if !ok {
		return nil, nil
	}
	return &domain.Balance{UserID: userID, Amount: amount, UpdatedAt: time.Now().UTC()}, nil
}

func (r *fakeBalanceRepo) DebitIfSufficient(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, bool, error) {
	if r.debitErr != nil {
		return decimal.Zero, false, r.debitErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.balances[userID]
	if !ok || current.LessThan(amount) {
		return decimal.Zero, false, nil
	}
	next := domain.RoundMoney(current.Sub(amount))
	r.balances[userID] = next
	return next, true, nil
}

func (r *fakeBalanceRepo) Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	if r.creditErrOnce != nil {
		err := r.creditErrOnce
		r.creditErrOnce = nil
		return decimal.Zero, err
	}
	if r.creditErr != nil {
		return decimal.Zero, r.creditErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	next := domain.RoundMoney(r.balances[userID].Add(amount))
	r.balances[userID] = next
	return next, nil
}

// --- lots ---

type fakeLotRepo struct {
	mu   sync.Mutex
	lots map[uuid.UUID]*domain.Lot
}

func newFakeLotRepo() *fakeLotRepo {
	return &fakeLotRepo{lots: make(map[uuid.UUID]*domain.Lot)}
}

func (r *fakeLotRepo) add(lot *domain.Lot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lots[lot.ID] = lot
}

func (r *fakeLotRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lot, ok := r.lots[id]
	if !ok {
		return nil, nil
	}
	cp := *lot
	return &cp, nil
}

func (r *fakeLotRepo) ListActive(ctx context.Context, limit int) ([]domain.Lot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Lot
	for _, lot := range r.lots {
		if lot.Status == domain.LotStatusActive {
			out = append(out, *lot)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- donations ---

type fakeDonationRepo struct {
	mu        sync.Mutex
	donations []domain.Donation

	createErr error
}

func newFakeDonationRepo() *fakeDonationRepo {
	return &fakeDonationRepo{}
}

func (r *fakeDonationRepo) Create(ctx context.Context, d *domain.Donation) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.donations = append(r.donations, *d)
	return nil
}

func (r *fakeDonationRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Donation
	for _, d := range r.donations {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

// --- participations ---

type fakeParticipationRepo struct {
	mu             sync.Mutex
	participations map[uuid.UUID]*domain.Participation

	createErr error
	cancelErr error
}

func newFakeParticipationRepo() *fakeParticipationRepo {
	return &fakeParticipationRepo{participations: make(map[uuid.UUID]*domain.Participation)}
}

func (r *fakeParticipationRepo) Create(ctx context.Context, p *domain.Participation) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.participations {
		if existing.LotID == p.LotID && existing.UserID == p.UserID {
			return ports.ErrUniqueViolation
		}
	}
	cp := *p
	r.participations[p.ID] = &cp
	return nil
}

func (r *fakeParticipationRepo) Cancel(ctx context.Context, id uuid.UUID) error {
	if r.cancelErr != nil {
		return r.cancelErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.participations[id]; ok {
		p.Status = domain.ParticipationStatusCancelled
	}
	return nil
}

func (r *fakeParticipationRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Participation, error) {
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

func (r *fakeParticipationRepo) SumReservedByLot(ctx context.Context, lotID uuid.UUID) (decimal.Decimal, error) {
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

func (r *fakeParticipationRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.participations)
}

func (r *fakeParticipationRepo) reservedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.participations {
		if p.Status == domain.ParticipationStatusReserved {
			n++
		}
	}
	return n
}

// --- ledger ---

type fakeLedgerRepo struct {
	mu      sync.Mutex
	entries []domain.LedgerEntry

	createErr error
	// failOnType fails only writes of the given entry type.
	failOnType domain.LedgerType
	failErr    error
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{}
}

func (r *fakeLedgerRepo) Create(ctx context.Context, e *domain.LedgerEntry) error {
	if r.createErr != nil {
		return r.createErr
	}
	if r.failOnType != "" && e.Type == r.failOnType {
		return r.failErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *e)
	return nil
}

func (r *fakeLedgerRepo) byType(t domain.LedgerType) []domain.LedgerEntry {
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
