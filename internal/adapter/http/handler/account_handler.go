package handler

import (
	"funding-platform/internal/adapter/http/dto"
	"funding-platform/internal/adapter/http/middleware"
	"funding-platform/internal/core/ports"
	"funding-platform/pkg/apperror"
	"funding-platform/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// AccountHandler handles the authenticated profile and history endpoints.
type AccountHandler struct {
	txSvc       ports.TransactionService
	balanceRepo ports.BalanceRepository
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(txSvc ports.TransactionService, balanceRepo ports.BalanceRepository) *AccountHandler {
	return &AccountHandler{txSvc: txSvc, balanceRepo: balanceRepo}
}

// Me handles POST /api/me. The user row already exists by the time the
// handler runs: auth middleware creates it on first contact.
func (h *AccountHandler) Me(c *gin.Context) {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrAccessDeniedUser())
		return
	}

	amount := decimal.Zero
	balance, err := h.balanceRepo.GetByUserID(c.Request.Context(), user.ID)
	if err != nil {
		response.Error(c, apperror.InternalError(err))
		return
	}
	if balance != nil {
		amount = balance.Amount
	}

	response.OK(c, dto.MeResponse{
		User:    dto.FromUser(user),
		Balance: amount.String(),
		IsAdmin: h.txSvc.IsAdmin(user.TelegramID),
	})
}

// Donations handles POST /api/me/donations.
func (h *AccountHandler) Donations(c *gin.Context) {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrAccessDeniedUser())
		return
	}

	donations, err := h.txSvc.ListDonations(c.Request.Context(), user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.DonationResponse, 0, len(donations))
	for _, d := range donations {
		items = append(items, dto.FromDonation(d))
	}
	response.OK(c, dto.DonationListResponse{Donations: items})
}

// Participations handles POST /api/me/participations.
func (h *AccountHandler) Participations(c *gin.Context) {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrAccessDeniedUser())
		return
	}

	participations, err := h.txSvc.ListParticipations(c.Request.Context(), user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.ParticipationResponse, 0, len(participations))
	for _, p := range participations {
		items = append(items, dto.FromParticipation(p))
	}
	response.OK(c, dto.ParticipationListResponse{Participations: items})
}
