package handler

import (
	"strconv"

	"funding-platform/internal/adapter/http/dto"
	"funding-platform/internal/core/ports"
	"funding-platform/pkg/response"

	"github.com/gin-gonic/gin"
)

// LotsHandler handles the public feed endpoints.
type LotsHandler struct {
	feedSvc ports.LotsFeedService
}

// NewLotsHandler creates a new LotsHandler.
func NewLotsHandler(feedSvc ports.LotsFeedService) *LotsHandler {
	return &LotsHandler{feedSvc: feedSvc}
}

// ListActive handles GET /api/lots. Unauthenticated: the feed carries no
// donor-level data.
func (h *LotsHandler) ListActive(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	views, err := h.feedSvc.ActiveLots(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.LotResponse, 0, len(views))
	for _, v := range views {
		items = append(items, dto.FromLotView(v))
	}

	response.OK(c, dto.LotListResponse{Lots: items})
}
