package postgres

import (
	"context"
	"testing"
	"time"

	"funding-platform/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	counterparty := uuid.New()
	lotID := uuid.New()
	e := &domain.LedgerEntry{
		ID:                 uuid.New(),
		ActorUserID:        uuid.New(),
		CounterpartyUserID: &counterparty,
		LotID:              &lotID,
		Type:               domain.LedgerTypeDonation,
		Amount:             decimal.RequireFromString("9.90"),
		Status:             domain.LedgerStatusConfirmed,
		Meta:               map[string]string{"donation_id": uuid.NewString()},
		CreatedAt:          time.Now().UTC().Truncate(time.Microsecond),
	}

	mock.ExpectExec("INSERT INTO ledger_entries").
		WithArgs(e.ID, e.ActorUserID, e.CounterpartyUserID, e.LotID,
			e.Type, e.Amount, e.Status, pgxmock.AnyArg(), e.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), e)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_Create_NilMeta(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	e := &domain.LedgerEntry{
		ID:          uuid.New(),
		ActorUserID: uuid.New(),
		Type:        domain.LedgerTypeAdminAdjustment,
		Amount:      decimal.RequireFromString("50"),
		Status:      domain.LedgerStatusConfirmed,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}

	mock.ExpectExec("INSERT INTO ledger_entries").
		WithArgs(e.ID, e.ActorUserID, e.CounterpartyUserID, e.LotID,
			e.Type, e.Amount, e.Status, pgxmock.AnyArg(), e.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), e)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
