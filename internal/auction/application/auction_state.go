package application

import (
	"context"
	"fmt"
	"time"

	"github.com/auctionroom/auctionroom/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AuctionHeaderDTO is the auction part of a full-state snapshot.
type AuctionHeaderDTO struct {
	Slug      string     `json:"slug"`
	Title     string     `json:"title"`
	Status    string     `json:"status"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
}

// LotStateDTO is one lot's canonical state as shown to clients.
type LotStateDTO struct {
	ID            uuid.UUID       `json:"id"`
	LotNumber     int             `json:"lot_number"`
	Name          string          `json:"name"`
	Currency      string          `json:"currency"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	CurrentLeader *uuid.UUID      `json:"current_leader"`
	EndTime       *time.Time      `json:"end_time"`
}

// AuctionStateDTO is the full snapshot sent to a newly joined connection so
// a late joiner needs no historical replay.
type AuctionStateDTO struct {
	Auction      AuctionHeaderDTO `json:"auction"`
	Lots         []LotStateDTO    `json:"lots"`
	Participants struct {
		Count int `json:"count"`
	} `json:"participants"`
}

// AuctionStateUseCase assembles the full snapshot of one auction.
type AuctionStateUseCase struct {
	lots         domain.LotRepository
	participants domain.ParticipantRepository
}

func NewAuctionStateUseCase(lots domain.LotRepository, participants domain.ParticipantRepository) *AuctionStateUseCase {
	return &AuctionStateUseCase{lots: lots, participants: participants}
}

func (uc *AuctionStateUseCase) Execute(ctx context.Context, auction *domain.Auction) (*AuctionStateDTO, error) {
	lots, err := uc.lots.ListByAuctionID(ctx, auction.ID)
	if err != nil {
		return nil, fmt.Errorf("auction state: list lots of %s: %w", auction.ID, err)
	}
	count, err := uc.participants.CountActive(ctx, auction.ID)
	if err != nil {
		return nil, fmt.Errorf("auction state: count participants of %s: %w", auction.ID, err)
	}

	dto := &AuctionStateDTO{
		Auction: AuctionHeaderDTO{
			Slug:      auction.Slug,
			Title:     auction.Title,
			Status:    string(auction.Status),
			StartTime: auction.StartTime,
			EndTime:   auction.EndTime,
		},
		Lots: make([]LotStateDTO, 0, len(lots)),
	}
	for _, l := range lots {
		dto.Lots = append(dto.Lots, LotStateDTO{
			ID:            l.ID,
			LotNumber:     l.LotNumber,
			Name:          l.Name,
			Currency:      l.Currency,
			CurrentPrice:  l.CurrentPrice,
			CurrentLeader: l.CurrentLeader,
			EndTime:       l.EndTime,
		})
	}
	dto.Participants.Count = count
	return dto, nil
}
