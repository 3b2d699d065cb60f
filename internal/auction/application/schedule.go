package application

import (
	"context"
	"fmt"
	"time"

	"github.com/auctionroom/auctionroom/internal/auction/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ActivationPlanner arms wall-clock activation timers.
type ActivationPlanner interface {
	ScheduleActivation(auctionID uuid.UUID, at time.Time)
}

// ReschedulePendingActivations re-arms activation timers from persisted
// start times. The timers themselves are in-process and lost on restart;
// this runs once at boot, before the server accepts traffic. Start times
// that passed while the process was down fire immediately, which Activate's
// idempotence makes safe.
func ReschedulePendingActivations(ctx context.Context, auctions domain.AuctionRepository, planner ActivationPlanner) (int, error) {
	pending, err := auctions.ListPendingActivations(ctx)
	if err != nil {
		return 0, fmt.Errorf("reschedule activations: %w", err)
	}
	for _, a := range pending {
		planner.ScheduleActivation(a.ID, *a.StartTime)
	}
	if len(pending) > 0 {
		log.Info("pending activations re-armed", zap.Int("count", len(pending)))
	}
	return len(pending), nil
}
