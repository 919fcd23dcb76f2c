package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"funding-platform/internal/core/domain"
	"funding-platform/internal/core/ports"
	"funding-platform/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var minDonation = decimal.NewFromInt(1)

// TransactionServiceImpl implements ports.TransactionService.
// It is stateless: the store's rows are the only state. The backing store
// offers no multi-row atomicity, so every multi-step operation is a saga:
// each forward step declares a compensating action, executed in reverse
// order on partial failure. A failed compensation is surfaced as a distinct
// critical fault, never as an ordinary dependency error.
type TransactionServiceImpl struct {
	userRepo          ports.UserRepository
	balanceRepo       ports.BalanceRepository
	lotRepo           ports.LotRepository
	donationRepo      ports.DonationRepository
	participationRepo ports.ParticipationRepository
	ledgerRepo        ports.LedgerRepository
	feeRate           decimal.Decimal
	admins            map[string]struct{}
	log               zerolog.Logger
}

// NewTransactionService creates a new TransactionServiceImpl. admins is the
// static admin allow-list, loaded once at startup and immutable thereafter.
func NewTransactionService(
	userRepo ports.UserRepository,
	balanceRepo ports.BalanceRepository,
	lotRepo ports.LotRepository,
	donationRepo ports.DonationRepository,
	participationRepo ports.ParticipationRepository,
	ledgerRepo ports.LedgerRepository,
	feeRate decimal.Decimal,
	admins map[string]struct{},
	log zerolog.Logger,
) *TransactionServiceImpl {
	return &TransactionServiceImpl{
		userRepo:          userRepo,
		balanceRepo:       balanceRepo,
		lotRepo:           lotRepo,
		donationRepo:      donationRepo,
		participationRepo: participationRepo,
		ledgerRepo:        ledgerRepo,
		feeRate:           feeRate,
		admins:            admins,
		log:               log,
	}
}

// Donate debits the actor's balance by the full amount and records the
// donation with its fee split. Steps after the debit are compensated by a
// credit restoring the pre-debit balance.
func (s *TransactionServiceImpl) Donate(ctx context.Context, actor *domain.User, lotID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.LessThan(minDonation) {
		return decimal.Zero, apperror.ErrAmountMinOne()
	}
	amount = domain.RoundMoney(amount)

	lot, err := s.lotRepo.GetByID(ctx, lotID)
	if err != nil {
		return decimal.Zero, apperror.InternalError(fmt.Errorf("get lot: %w", err))
	}
	if lot == nil {
		return decimal.Zero, apperror.ErrLotNotFound()
	}
	if !lot.IsActive() {
		return decimal.Zero, apperror.ErrLotNotActive()
	}

	fee, sellerAmount := domain.SplitDonation(amount, s.feeRate)

	// Step 1: conditional debit. The sufficiency check and the decrement are
	// one write, so concurrent donates cannot drive the balance negative.
	newBalance, ok, err := s.balanceRepo.DebitIfSufficient(ctx, actor.ID, amount)
	if err != nil {
		return decimal.Zero, apperror.ErrBalanceUpdateFailed(fmt.Errorf("debit: %w", err))
	}
	if !ok {
		return decimal.Zero, apperror.ErrInsufficientBalance()
	}

	now := time.Now().UTC()
	donation := &domain.Donation{
		ID:           uuid.New(),
		LotID:        lot.ID,
		UserID:       actor.ID,
		Amount:       amount,
		PlatformFee:  fee,
		SellerAmount: sellerAmount,
		Status:       domain.DonationStatusConfirmed,
		CreatedAt:    now,
	}

	// Step 2: donation row.
	if err := s.donationRepo.Create(ctx, donation); err != nil {
		return decimal.Zero, s.compensateDebit(ctx, actor.ID, amount,
			apperror.ErrDonationInsertFailed(fmt.Errorf("insert donation: %w", err)))
	}

	// Step 3: donation ledger entry crediting the lot creator.
	donationEntry := &domain.LedgerEntry{
		ID:                 uuid.New(),
		ActorUserID:        actor.ID,
		CounterpartyUserID: &lot.CreatorID,
		LotID:              &lot.ID,
		Type:               domain.LedgerTypeDonation,
		Amount:             sellerAmount,
		Status:             domain.LedgerStatusConfirmed,
		Meta:               map[string]string{"donation_id": donation.ID.String()},
		CreatedAt:          now,
	}
	if err := s.ledgerRepo.Create(ctx, donationEntry); err != nil {
		return decimal.Zero, s.compensateDebit(ctx, actor.ID, amount,
			apperror.ErrLedgerWriteFailed(fmt.Errorf("donation entry: %w", err)))
	}

	// Step 4: platform fee ledger entry, only when a fee was retained.
	if fee.IsPositive() {
		feeEntry := &domain.LedgerEntry{
			ID:          uuid.New(),
			ActorUserID: actor.ID,
			LotID:       &lot.ID,
			Type:        domain.LedgerTypePlatformFee,
			Amount:      fee,
			Status:      domain.LedgerStatusConfirmed,
			Meta:        map[string]string{"donation_id": donation.ID.String()},
			CreatedAt:   now,
		}
		if err := s.ledgerRepo.Create(ctx, feeEntry); err != nil {
			return decimal.Zero, s.compensateDebit(ctx, actor.ID, amount,
				apperror.ErrLedgerWriteFailed(fmt.Errorf("platform fee entry: %w", err)))
		}
	}

	s.log.Info().
		Str("user_id", actor.ID.String()).
		Str("lot_id", lot.ID.String()).
		Str("amount", amount.String()).
		Str("fee", fee.String()).
		Msg("donation processed")

	return newBalance, nil
}

// Participate reserves a paid slot in the lot. The store's unique constraint
// on (lot_id, user_id) is the sole reservation guard; the debit happens only
// after the reservation holds, and a failed debit or ledger write cancels the
// reservation so it never exists without its matching debit.
func (s *TransactionServiceImpl) Participate(ctx context.Context, actor *domain.User, lotID uuid.UUID) (decimal.Decimal, error) {
	lot, err := s.lotRepo.GetByID(ctx, lotID)
	if err != nil {
		return decimal.Zero, apperror.InternalError(fmt.Errorf("get lot: %w", err))
	}
	if lot == nil {
		return decimal.Zero, apperror.ErrLotNotFound()
	}
	if !lot.IsActive() {
		return decimal.Zero, apperror.ErrLotNotActive()
	}

	price := domain.RoundMoney(lot.PricePerParticipation)
	if !price.IsPositive() {
		return decimal.Zero, apperror.ErrLotPriceInvalid()
	}

	now := time.Now().UTC()
	participation := &domain.Participation{
		ID:        uuid.New(),
		LotID:     lot.ID,
		UserID:    actor.ID,
		Amount:    price,
		Status:    domain.ParticipationStatusReserved,
		CreatedAt: now,
	}

	// Step 1: reservation. A unique violation is a domain outcome, not a
	// fault; it must never crash or retry.
	if err := s.participationRepo.Create(ctx, participation); err != nil {
		if errors.Is(err, ports.ErrUniqueViolation) {
			return decimal.Zero, apperror.ErrAlreadyParticipated()
		}
		return decimal.Zero, apperror.ErrParticipationInsertFailed(fmt.Errorf("insert participation: %w", err))
	}

	// Step 2: debit, only after the reservation holds.
	newBalance, ok, err := s.balanceRepo.DebitIfSufficient(ctx, actor.ID, price)
	if err != nil {
		return decimal.Zero, s.compensateReservation(ctx, participation.ID,
			apperror.ErrBalanceUpdateFailed(fmt.Errorf("debit: %w", err)))
	}
	if !ok {
		return decimal.Zero, s.compensateReservation(ctx, participation.ID, apperror.ErrInsufficientBalance())
	}

	// Step 3: lock entry. On failure compensate in reverse order: credit the
	// debit back first, then cancel the reservation.
	lockEntry := &domain.LedgerEntry{
		ID:          uuid.New(),
		ActorUserID: actor.ID,
		LotID:       &lot.ID,
		Type:        domain.LedgerTypeParticipationLock,
		Amount:      price,
		Status:      domain.LedgerStatusConfirmed,
		Meta:        map[string]string{"participation_id": participation.ID.String()},
		CreatedAt:   now,
	}
	if err := s.ledgerRepo.Create(ctx, lockEntry); err != nil {
		cause := apperror.ErrLedgerWriteFailed(fmt.Errorf("participation lock entry: %w", err))
		if _, creditErr := s.balanceRepo.Credit(ctx, actor.ID, price); creditErr != nil {
			return decimal.Zero, s.compensationFault(actor.ID, price, cause, creditErr)
		}
		return decimal.Zero, s.compensateReservation(ctx, participation.ID, cause)
	}

	s.log.Info().
		Str("user_id", actor.ID.String()).
		Str("lot_id", lot.ID.String()).
		Str("price", price.String()).
		Msg("participation reserved")

	return newBalance, nil
}

// AdminTopup credits the target user's balance. The adjustment ledger entry
// is written only after the credit succeeded — an adjustment that did not
// happen must never be recorded.
func (s *TransactionServiceImpl) AdminTopup(ctx context.Context, actor *domain.User, targetTelegramID string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !s.IsAdmin(actor.TelegramID) {
		return decimal.Zero, apperror.ErrAdminOnly()
	}
	if !amount.IsPositive() {
		return decimal.Zero, apperror.ErrAmountInvalid()
	}
	amount = domain.RoundMoney(amount)

	target, err := s.userRepo.GetByTelegramID(ctx, targetTelegramID)
	if err != nil {
		return decimal.Zero, apperror.InternalError(fmt.Errorf("get target user: %w", err))
	}
	if target == nil {
		return decimal.Zero, apperror.ErrTargetNotFound()
	}

	newBalance, err := s.balanceRepo.Credit(ctx, target.ID, amount)
	if err != nil {
		return decimal.Zero, apperror.ErrBalanceUpdateFailed(fmt.Errorf("credit target: %w", err))
	}

	entry := &domain.LedgerEntry{
		ID:                 uuid.New(),
		ActorUserID:        actor.ID,
		CounterpartyUserID: &target.ID,
		Type:               domain.LedgerTypeAdminAdjustment,
		Amount:             amount,
		Status:             domain.LedgerStatusConfirmed,
		Meta:               map[string]string{"target_telegram_id": targetTelegramID},
		CreatedAt:          time.Now().UTC(),
	}
	if err := s.ledgerRepo.Create(ctx, entry); err != nil {
		// The credit already happened and must not be undone; the missing
		// audit record is an operational incident.
		s.log.Error().
			Err(err).
			Str("target_user_id", target.ID.String()).
			Str("amount", amount.String()).
			Msg("admin adjustment applied but ledger entry failed")
		return decimal.Zero, apperror.ErrLedgerWriteFailed(fmt.Errorf("admin adjustment entry: %w", err))
	}

	s.log.Info().
		Str("admin_telegram_id", actor.TelegramID).
		Str("target_user_id", target.ID.String()).
		Str("amount", amount.String()).
		Msg("admin topup processed")

	return newBalance, nil
}

// IsAdmin reports whether the identity is in the admin allow-list. The list
// is loaded once at startup, so no locking is needed.
func (s *TransactionServiceImpl) IsAdmin(telegramID string) bool {
	_, ok := s.admins[telegramID]
	return ok
}

// ListDonations returns the user's donation history, newest first.
func (s *TransactionServiceImpl) ListDonations(ctx context.Context, userID uuid.UUID) ([]domain.Donation, error) {
	donations, err := s.donationRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list donations: %w", err))
	}
	return donations, nil
}

// ListParticipations returns the user's participation history, newest first.
func (s *TransactionServiceImpl) ListParticipations(ctx context.Context, userID uuid.UUID) ([]domain.Participation, error) {
	participations, err := s.participationRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list participations: %w", err))
	}
	return participations, nil
}

// compensateDebit restores the pre-debit balance after a step following a
// successful debit failed. If the compensating credit itself fails the
// un-recovered short is escalated as a critical fault.
func (s *TransactionServiceImpl) compensateDebit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, cause *apperror.AppError) error {
	if _, err := s.balanceRepo.Credit(ctx, userID, amount); err != nil {
		return s.compensationFault(userID, amount, cause, err)
	}
	s.log.Warn().
		Str("user_id", userID.String()).
		Str("amount", amount.String()).
		Str("cause", cause.Code).
		Msg("debit compensated after partial failure")
	return cause
}

// compensateReservation cancels a participation reservation after a later
// step failed.
func (s *TransactionServiceImpl) compensateReservation(ctx context.Context, participationID uuid.UUID, cause *apperror.AppError) error {
	if err := s.participationRepo.Cancel(ctx, participationID); err != nil {
		s.log.Error().
			Err(err).
			Str("participation_id", participationID.String()).
			Str("cause", cause.Code).
			Msg("CRITICAL: reservation cancel failed, orphaned reservation")
		return apperror.ErrCompensationFailed(fmt.Errorf("cancel reservation after %s: %w", cause.Code, err))
	}
	s.log.Warn().
		Str("participation_id", participationID.String()).
		Str("cause", cause.Code).
		Msg("reservation cancelled after partial failure")
	return cause
}

func (s *TransactionServiceImpl) compensationFault(userID uuid.UUID, amount decimal.Decimal, cause *apperror.AppError, compErr error) error {
	s.log.Error().
		Err(compErr).
		Str("user_id", userID.String()).
		Str("amount", amount.String()).
		Str("cause", cause.Code).
		Msg("CRITICAL: compensation failed, balance short not recovered")
	return apperror.ErrCompensationFailed(fmt.Errorf("compensating %s: %w", cause.Code, compErr))
}
