package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/auctionroom/auctionroom/internal/auction/domain"
	"github.com/auctionroom/auctionroom/internal/shared/keymutex"
	"github.com/auctionroom/auctionroom/internal/shared/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// commitAttempts bounds retries on storage-level commit contention before
// the attempt is surfaced to the submitter as transient.
const commitAttempts = 3

// PlaceBidCommand is the input for one arbitration attempt.
type PlaceBidCommand struct {
	AuctionID     uuid.UUID
	LotID         uuid.UUID
	ParticipantID uuid.UUID
	Amount        decimal.Decimal
}

// PlaceBidUseCase serializes and validates bid attempts against the ledger
// and the auction lifecycle. Exactly one attempt runs inside the critical
// section of a given lot at a time; attempts on different lots never block
// each other. The section is released on every exit path.
type PlaceBidUseCase struct {
	lifecycle   *LifecycleService
	ledger      domain.LotLedger
	broadcaster domain.Broadcaster
	locks       *keymutex.KeyedMutex
	now         func() time.Time
}

// NewPlaceBidUseCase creates the arbitrator with its collaborators injected.
func NewPlaceBidUseCase(lifecycle *LifecycleService, ledger domain.LotLedger, broadcaster domain.Broadcaster) *PlaceBidUseCase {
	return &PlaceBidUseCase{
		lifecycle:   lifecycle,
		ledger:      ledger,
		broadcaster: broadcaster,
		locks:       keymutex.New(),
		now:         time.Now,
	}
}

// Execute arbitrates one bid. Business rejections come back as a rejected
// BidResult with a nil error; a non-nil error means the attempt failed for
// infrastructure reasons and no mutation is visible.
func (uc *PlaceBidUseCase) Execute(ctx context.Context, cmd PlaceBidCommand) (*domain.BidResult, error) {
	key := cmd.LotID.String()
	uc.locks.Lock(key)
	defer uc.locks.Unlock(key)

	auction, err := uc.lifecycle.Auction(ctx, cmd.AuctionID)
	if err != nil {
		return nil, fmt.Errorf("place bid: load auction %s: %w", cmd.AuctionID, err)
	}
	if auction.Status != domain.StatusLive {
		log.Warn("bid rejected: auction not live",
			zap.String("lotID", cmd.LotID.String()),
			zap.String("auctionStatus", string(auction.Status)),
			zap.String("participantID", cmd.ParticipantID.String()),
		)
		return domain.RejectedNotLive(cmd.LotID), nil
	}

	for attempt := 1; ; attempt++ {
		lot, err := uc.ledger.Read(ctx, cmd.LotID)
		if err != nil {
			return nil, fmt.Errorf("place bid: read lot %s: %w", cmd.LotID, err)
		}
		if lot.AuctionID != cmd.AuctionID {
			return nil, domain.ErrLotMismatch
		}

		minRequired := lot.MinRequired()
		if cmd.Amount.LessThan(minRequired) {
			log.Warn("bid rejected: amount too low",
				zap.String("lotID", cmd.LotID.String()),
				zap.String("amount", cmd.Amount.String()),
				zap.String("minRequired", minRequired.String()),
				zap.String("participantID", cmd.ParticipantID.String()),
			)
			return domain.RejectedTooLow(cmd.LotID, minRequired), nil
		}

		now := uc.now()
		endsAt := lot.EndTime
		if extended := lot.ExtendedEnd(now); extended != nil {
			endsAt = extended
			log.Info("lot closing time extended",
				zap.String("lotID", cmd.LotID.String()),
				zap.Timep("previousEnd", lot.EndTime),
				zap.Time("newEnd", *extended),
			)
		}

		bid := domain.NewBid(cmd.LotID, cmd.ParticipantID, cmd.Amount, now)
		upd := domain.LotUpdate{Price: cmd.Amount, Leader: cmd.ParticipantID, EndTime: endsAt}

		err = uc.ledger.Commit(ctx, cmd.LotID, upd, bid)
		switch {
		case err == nil:
			result := domain.AcceptedBid(cmd.LotID, cmd.Amount, cmd.ParticipantID, endsAt)
			// Published before the critical section is released, so every
			// connection observes bid_accepted events in commit order.
			uc.broadcaster.BidAccepted(auction.Slug, result)
			log.Info("bid accepted",
				zap.String("lotID", cmd.LotID.String()),
				zap.String("bidID", bid.ID.String()),
				zap.String("participantID", cmd.ParticipantID.String()),
				zap.String("amount", cmd.Amount.String()),
			)
			return result, nil

		case errors.Is(err, domain.ErrLotNotLive):
			// The auction left live between the status check and the commit.
			return domain.RejectedNotLive(cmd.LotID), nil

		case errors.Is(err, domain.ErrCommitConflict):
			if attempt < commitAttempts {
				continue
			}
			log.Warn("bid commit contention exhausted",
				zap.String("lotID", cmd.LotID.String()),
				zap.Int("attempts", attempt),
			)
			return domain.RejectedTryAgain(cmd.LotID), nil

		default:
			return nil, fmt.Errorf("place bid: commit lot %s: %w", cmd.LotID, err)
		}
	}
}
