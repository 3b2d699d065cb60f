package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/auctionroom/auctionroom/internal/shared/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// ActivateFunc is invoked when an activation comes due. It must be
// idempotent: the scheduler guarantees at-least-once delivery, not
// exactly-once.
type ActivateFunc func(ctx context.Context, auctionID uuid.UUID) error

// ActivationScheduler fires auction activations at their scheduled
// wall-clock time. Timers are in-process; state is lost on restart, and
// pending activations are re-scheduled from persisted start times at boot.
type ActivationScheduler struct {
	mu       sync.Mutex
	timers   map[uuid.UUID]*time.Timer
	activate ActivateFunc
	stopped  bool
}

func New(activate ActivateFunc) *ActivationScheduler {
	return &ActivationScheduler{
		timers:   make(map[uuid.UUID]*time.Timer),
		activate: activate,
	}
}

// ScheduleActivation arms (or re-arms) the activation timer for an auction.
// A time already in the past fires immediately.
func (s *ActivationScheduler) ScheduleActivation(auctionID uuid.UUID, at time.Time) {
	delay := time.Until(at)
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if t, ok := s.timers[auctionID]; ok {
		t.Stop()
	}
	s.timers[auctionID] = time.AfterFunc(delay, func() { s.fire(auctionID) })
	log.Info("activation scheduled",
		zap.String("auctionID", auctionID.String()),
		zap.Time("at", at),
		zap.Duration("delay", delay),
	)
}

// CancelActivation disarms a pending activation. Cancelling an auction
// with no pending timer is a no-op.
func (s *ActivationScheduler) CancelActivation(auctionID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[auctionID]; ok {
		t.Stop()
		delete(s.timers, auctionID)
		log.Info("activation cancelled", zap.String("auctionID", auctionID.String()))
	}
}

// Stop disarms every pending timer. Activations already firing are not
// interrupted; Activate's idempotence makes that harmless.
func (s *ActivationScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

func (s *ActivationScheduler) fire(auctionID uuid.UUID) {
	s.mu.Lock()
	delete(s.timers, auctionID)
	s.mu.Unlock()

	if err := s.activate(context.Background(), auctionID); err != nil {
		log.Error("scheduled activation failed",
			zap.String("auctionID", auctionID.String()),
			zap.Error(err),
		)
	}
}
