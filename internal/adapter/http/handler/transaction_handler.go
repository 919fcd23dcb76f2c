package handler

import (
	"funding-platform/internal/adapter/http/dto"
	"funding-platform/internal/adapter/http/middleware"
	"funding-platform/internal/core/ports"
	"funding-platform/pkg/apperror"
	"funding-platform/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionHandler handles the balance-moving endpoints.
type TransactionHandler struct {
	txSvc ports.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(txSvc ports.TransactionService) *TransactionHandler {
	return &TransactionHandler{txSvc: txSvc}
}

// Donate handles POST /api/donate.
func (h *TransactionHandler) Donate(c *gin.Context) {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrAccessDeniedUser())
		return
	}

	var req dto.DonateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	lotID, err := uuid.Parse(req.LotID)
	if err != nil {
		response.Error(c, apperror.Validation("lot_id must be a UUID"))
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		response.Error(c, apperror.ErrAmountInvalid())
		return
	}

	newBalance, err := h.txSvc.Donate(c.Request.Context(), user, lotID, amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.MutationResponse{OK: true, NewBalance: newBalance.String()})
}

// Participate handles POST /api/participate.
func (h *TransactionHandler) Participate(c *gin.Context) {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrAccessDeniedUser())
		return
	}

	var req dto.ParticipateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	lotID, err := uuid.Parse(req.LotID)
	if err != nil {
		response.Error(c, apperror.Validation("lot_id must be a UUID"))
		return
	}

	newBalance, err := h.txSvc.Participate(c.Request.Context(), user, lotID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.MutationResponse{OK: true, NewBalance: newBalance.String()})
}

// AdminTopup handles POST /api/admin/topup. The allow-list check lives in
// the service so it cannot be bypassed by new transports.
func (h *TransactionHandler) AdminTopup(c *gin.Context) {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrAccessDeniedUser())
		return
	}

	var req dto.TopupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		response.Error(c, apperror.ErrAmountInvalid())
		return
	}

	newBalance, err := h.txSvc.AdminTopup(c.Request.Context(), user, req.TargetTelegramID, amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.MutationResponse{OK: true, NewBalance: newBalance.String()})
}
