package service

import (
	"context"
	"fmt"

	"funding-platform/internal/core/domain"
	"funding-platform/internal/core/ports"
	"funding-platform/pkg/apperror"

	"github.com/rs/zerolog"
)

// maxFeedLimit caps the public feed page size. One aggregation query per lot
// is acceptable at this cap; this is the natural caching point under load.
const maxFeedLimit = 50

// LotsFeedServiceImpl implements ports.LotsFeedService. Read-only projection
// over the store; depends on nothing else.
type LotsFeedServiceImpl struct {
	lotRepo           ports.LotRepository
	participationRepo ports.ParticipationRepository
	log               zerolog.Logger
}

// NewLotsFeedService creates a new LotsFeedServiceImpl.
func NewLotsFeedService(lotRepo ports.LotRepository, participationRepo ports.ParticipationRepository, log zerolog.Logger) *LotsFeedServiceImpl {
	return &LotsFeedServiceImpl{
		lotRepo:           lotRepo,
		participationRepo: participationRepo,
		log:               log,
	}
}

// ActiveLots returns active lots, newest first, with their collected amount
// and progress. Collected sums reserved participations only — donations are
// deliberately excluded so donor-level totals never leak into the public
// feed.
func (s *LotsFeedServiceImpl) ActiveLots(ctx context.Context, limit int) ([]domain.LotView, error) {
	if limit <= 0 || limit > maxFeedLimit {
		limit = maxFeedLimit
	}

	lots, err := s.lotRepo.ListActive(ctx, limit)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list active lots: %w", err))
	}

	views := make([]domain.LotView, 0, len(lots))
	for _, lot := range lots {
		collected, err := s.participationRepo.SumReservedByLot(ctx, lot.ID)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("sum reserved for lot %s: %w", lot.ID, err))
		}

		progress := 0.0
		if lot.GoalAmount.IsPositive() {
			progress = collected.Div(lot.GoalAmount).InexactFloat64()
			if progress > 1 {
				progress = 1
			}
		}

		views = append(views, domain.LotView{
			Lot:       lot,
			Collected: collected,
			Progress:  progress,
		})
	}

	return views, nil
}
