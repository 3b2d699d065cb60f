package application

import (
	"context"
	"fmt"
	"time"

	"github.com/auctionroom/auctionroom/internal/auction/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LifecycleService drives the auction status state machine and notifies the
// broadcaster on every effective transition. It holds the broadcaster by
// injection; nothing here reaches for shared state ambiently.
type LifecycleService struct {
	auctions    domain.AuctionRepository
	broadcaster domain.Broadcaster
	now         func() time.Time
}

func NewLifecycleService(auctions domain.AuctionRepository, broadcaster domain.Broadcaster) *LifecycleService {
	return &LifecycleService{
		auctions:    auctions,
		broadcaster: broadcaster,
		now:         time.Now,
	}
}

// Auction loads the auction an arbitration or admin request refers to.
func (s *LifecycleService) Auction(ctx context.Context, auctionID uuid.UUID) (*domain.Auction, error) {
	return s.auctions.GetByID(ctx, auctionID)
}

// CurrentStatus reports the auction's current lifecycle status.
func (s *LifecycleService) CurrentStatus(ctx context.Context, auctionID uuid.UUID) (domain.AuctionStatus, error) {
	a, err := s.auctions.GetByID(ctx, auctionID)
	if err != nil {
		return "", err
	}
	return a.Status, nil
}

// Activate moves a draft or paused auction live. It is idempotent: invoked
// on an auction in any other status it does nothing and reports no error,
// so duplicate scheduler deliveries and manual races are harmless.
func (s *LifecycleService) Activate(ctx context.Context, auctionID uuid.UUID) error {
	a, err := s.auctions.GetByID(ctx, auctionID)
	if err != nil {
		return fmt.Errorf("activate auction %s: %w", auctionID, err)
	}
	if !a.Activatable() {
		log.Info("activation skipped",
			zap.String("auctionID", auctionID.String()),
			zap.String("status", string(a.Status)),
		)
		return nil
	}
	return s.transition(ctx, a, domain.StatusLive)
}

// Pause suspends bidding on a live auction.
func (s *LifecycleService) Pause(ctx context.Context, auctionID uuid.UUID) error {
	a, err := s.auctions.GetByID(ctx, auctionID)
	if err != nil {
		return fmt.Errorf("pause auction %s: %w", auctionID, err)
	}
	return s.transition(ctx, a, domain.StatusPaused)
}

// End closes the auction for good; no further transitions or bids.
func (s *LifecycleService) End(ctx context.Context, auctionID uuid.UUID) error {
	a, err := s.auctions.GetByID(ctx, auctionID)
	if err != nil {
		return fmt.Errorf("end auction %s: %w", auctionID, err)
	}
	return s.transition(ctx, a, domain.StatusEnded)
}

// ChangeStatus applies an administratively requested status. Requesting live
// goes through Activate and keeps its idempotence.
func (s *LifecycleService) ChangeStatus(ctx context.Context, auctionID uuid.UUID, next domain.AuctionStatus) error {
	switch next {
	case domain.StatusLive:
		return s.Activate(ctx, auctionID)
	case domain.StatusPaused:
		return s.Pause(ctx, auctionID)
	case domain.StatusEnded:
		return s.End(ctx, auctionID)
	default:
		return domain.ErrInvalidTransition
	}
}

func (s *LifecycleService) transition(ctx context.Context, a *domain.Auction, next domain.AuctionStatus) error {
	prev := a.Status
	if err := a.Transition(next, s.now()); err != nil {
		return fmt.Errorf("auction %s: %s -> %s: %w", a.ID, prev, next, err)
	}
	if err := s.auctions.UpdateStatus(ctx, a); err != nil {
		return fmt.Errorf("persist status of auction %s: %w", a.ID, err)
	}
	log.Info("auction status changed",
		zap.String("auctionID", a.ID.String()),
		zap.String("from", string(prev)),
		zap.String("to", string(a.Status)),
	)
	s.broadcaster.StatusChanged(a.Slug, a.Status, a.StartTime)
	return nil
}
