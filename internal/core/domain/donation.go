package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DonationStatus represents the lifecycle state of a donation.
type DonationStatus string

const (
	DonationStatusConfirmed DonationStatus = "confirmed"
)

// Donation is an immutable record of a balance-funded donation to a lot.
// Invariant: Amount == PlatformFee + SellerAmount.
type Donation struct {
	ID           uuid.UUID       `json:"id"`
	LotID        uuid.UUID       `json:"lot_id"`
	UserID       uuid.UUID       `json:"user_id"`
	Amount       decimal.Decimal `json:"amount"`
	PlatformFee  decimal.Decimal `json:"platform_fee"`
	SellerAmount decimal.Decimal `json:"seller_amount"`
	Status       DonationStatus  `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
}

// SplitDonation divides amount into platform fee and seller amount using the
// given fee rate. Both parts are rounded independently so that
// fee + sellerAmount == amount holds exactly.
func SplitDonation(amount decimal.Decimal, feeRate decimal.Decimal) (fee, sellerAmount decimal.Decimal) {
	fee = RoundMoney(amount.Mul(feeRate))
	sellerAmount = RoundMoney(amount.Sub(fee))
	return fee, sellerAmount
}
