package dto

import (
	"time"

	"funding-platform/internal/core/domain"
)

// AuthRequest is the minimal authenticated request body. Every mini-app
// endpoint authenticates per request through the initData payload; there is
// no session.
type AuthRequest struct {
	InitData string `json:"initData" binding:"required"`
}

// DonateRequest is the request body for a balance-funded donation.
// Amount is a decimal string to keep money out of floats on the wire.
type DonateRequest struct {
	InitData string `json:"initData" binding:"required"`
	LotID    string `json:"lot_id" binding:"required,uuid"`
	Amount   string `json:"amount" binding:"required,money"`
}

// ParticipateRequest is the request body for reserving a paid slot.
type ParticipateRequest struct {
	InitData string `json:"initData" binding:"required"`
	LotID    string `json:"lot_id" binding:"required,uuid"`
}

// TopupRequest is the request body for an admin balance credit.
type TopupRequest struct {
	InitData         string `json:"initData" binding:"required"`
	TargetTelegramID string `json:"target_telegram_id" binding:"required,telegram_id"`
	Amount           string `json:"amount" binding:"required,money"`
}

// UserResponse is the profile object nested in MeResponse.
type UserResponse struct {
	ID         string `json:"id"`
	TelegramID string `json:"telegram_id"`
	Role       string `json:"role"`
	CreatedAt  string `json:"created_at"`
}

// MeResponse is the body returned by POST /api/me. IsAdmin tells the
// mini-app whether to render the admin surface.
type MeResponse struct {
	User    UserResponse `json:"user"`
	Balance string       `json:"balance"`
	IsAdmin bool         `json:"isAdmin"`
}

// MutationResponse is the response for operations that move a balance.
type MutationResponse struct {
	OK         bool   `json:"ok"`
	NewBalance string `json:"newBalance"`
}

// LotResponse is one public feed item.
type LotResponse struct {
	ID                    string  `json:"id"`
	Title                 string  `json:"title"`
	Status                string  `json:"status"`
	GoalAmount            string  `json:"goal_amount"`
	PricePerParticipation string  `json:"price_per_participation"`
	Currency              string  `json:"currency"`
	Collected             string  `json:"collected"`
	Progress              float64 `json:"progress"`
	EndsAt                *string `json:"ends_at,omitempty"`
	CreatedAt             string  `json:"created_at"`
}

// LotListResponse wraps the public feed.
type LotListResponse struct {
	Lots []LotResponse `json:"lots"`
}

// DonationResponse is one item of the actor's donation history.
type DonationResponse struct {
	ID           string `json:"id"`
	LotID        string `json:"lot_id"`
	Amount       string `json:"amount"`
	PlatformFee  string `json:"platform_fee"`
	SellerAmount string `json:"seller_amount"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
}

// DonationListResponse wraps the actor's donation history.
type DonationListResponse struct {
	Donations []DonationResponse `json:"donations"`
}

// ParticipationResponse is one item of the actor's participation history.
type ParticipationResponse struct {
	ID        string `json:"id"`
	LotID     string `json:"lot_id"`
	Amount    string `json:"amount"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// ParticipationListResponse wraps the actor's participation history.
type ParticipationListResponse struct {
	Participations []ParticipationResponse `json:"participations"`
}

// FromUser builds a UserResponse.
func FromUser(u *domain.User) UserResponse {
	return UserResponse{
		ID:         u.ID.String(),
		TelegramID: u.TelegramID,
		Role:       string(u.Role),
		CreatedAt:  u.CreatedAt.Format(time.RFC3339),
	}
}

// FromLotView builds a LotResponse from the feed projection.
func FromLotView(v domain.LotView) LotResponse {
	resp := LotResponse{
		ID:                    v.ID.String(),
		Title:                 v.Title,
		Status:                string(v.Status),
		GoalAmount:            v.GoalAmount.String(),
		PricePerParticipation: v.PricePerParticipation.String(),
		Currency:              v.Currency,
		Collected:             v.Collected.String(),
		Progress:              v.Progress,
		CreatedAt:             v.CreatedAt.Format(time.RFC3339),
	}
	if v.EndsAt != nil {
		ends := v.EndsAt.Format(time.RFC3339)
		resp.EndsAt = &ends
	}
	return resp
}

// FromDonation builds a DonationResponse.
func FromDonation(d domain.Donation) DonationResponse {
	return DonationResponse{
		ID:           d.ID.String(),
		LotID:        d.LotID.String(),
		Amount:       d.Amount.String(),
		PlatformFee:  d.PlatformFee.String(),
		SellerAmount: d.SellerAmount.String(),
		Status:       string(d.Status),
		CreatedAt:    d.CreatedAt.Format(time.RFC3339),
	}
}

// FromParticipation builds a ParticipationResponse.
func FromParticipation(p domain.Participation) ParticipationResponse {
	return ParticipationResponse{
		ID:        p.ID.String(),
		LotID:     p.LotID.String(),
		Amount:    p.Amount.String(),
		Status:    string(p.Status),
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}
