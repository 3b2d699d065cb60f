package application

import (
	"context"

	"github.com/auctionroom/auctionroom/internal/auction/domain"
)

// AuctionService is the application surface the websocket layer talks to.
type AuctionService interface {
	// PlaceBid arbitrates one bid attempt and returns the tagged result.
	PlaceBid(ctx context.Context, cmd PlaceBidCommand) (*domain.BidResult, error)
	// AuctionState builds the full snapshot for a newly joined connection.
	AuctionState(ctx context.Context, auction *domain.Auction) (*AuctionStateDTO, error)
}

type auctionService struct {
	placeBidUC *PlaceBidUseCase
	stateUC    *AuctionStateUseCase
}

func NewAuctionService(placeBidUC *PlaceBidUseCase, stateUC *AuctionStateUseCase) AuctionService {
	return &auctionService{
		placeBidUC: placeBidUC,
		stateUC:    stateUC,
	}
}

// PlaceBid implements AuctionService.
func (as *auctionService) PlaceBid(ctx context.Context, cmd PlaceBidCommand) (*domain.BidResult, error) {
	return as.placeBidUC.Execute(ctx, cmd)
}

// AuctionState implements AuctionService.
func (as *auctionService) AuctionState(ctx context.Context, auction *domain.Auction) (*AuctionStateDTO, error) {
	return as.stateUC.Execute(ctx, auction)
}
