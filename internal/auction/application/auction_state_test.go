package application

import (
	"context"
	"testing"

	"github.com/auctionroom/auctionroom/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
)

func TestAuctionState_Snapshot(t *testing.T) {
	auction := liveAuction()
	lots := &fakeLotRepo{}
	participants := &fakeParticipantRepo{}

	lotA := domain.NewLot(uuid.New(), auction.ID, 1, "painting", dec("100"), dec("10"), "EUR", nil, 30)
	leader := uuid.New()
	lotA.CurrentPrice = dec("130")
	lotA.CurrentLeader = &leader
	lotB := domain.NewLot(uuid.New(), auction.ID, 2, "sculpture", dec("50"), dec("5"), "EUR", nil, 30)
	assert.NoError(t, lots.Create(context.Background(), lotA))
	assert.NoError(t, lots.Create(context.Background(), lotB))

	vendorID := uuid.New()
	assert.NoError(t, participants.Create(context.Background(), domain.NewParticipant(auction.ID, vendorID, "tok1")))
	blocked := domain.NewParticipant(auction.ID, vendorID, "tok2")
	blocked.Blocked = true
	assert.NoError(t, participants.Create(context.Background(), blocked))

	uc := NewAuctionStateUseCase(lots, participants)
	state, err := uc.Execute(context.Background(), auction)
	assert.NoError(t, err)

	check.Equal(t, auction.Slug, state.Auction.Slug)
	check.Equal(t, "live", state.Auction.Status)
	assert.Equal(t, 2, len(state.Lots))
	check.Equal(t, "130", state.Lots[0].CurrentPrice.String())
	check.Equal(t, &leader, state.Lots[0].CurrentLeader)
	check.Equal(t, "50", state.Lots[1].CurrentPrice.String())
	check.Nil(t, state.Lots[1].CurrentLeader)
	// Blocked participants are not counted.
	check.Equal(t, 1, state.Participants.Count)
}

func TestAuctionState_EmptyAuction(t *testing.T) {
	auction := liveAuction()
	uc := NewAuctionStateUseCase(&fakeLotRepo{}, &fakeParticipantRepo{})

	state, err := uc.Execute(context.Background(), auction)
	assert.NoError(t, err)
	check.Equal(t, 0, len(state.Lots))
	check.Equal(t, 0, state.Participants.Count)
}
