package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bid is the immutable record of one amount offered by one participant for
// one lot. Bids are append-only; they are never updated or deleted and form
// the audit log of the auction.
type Bid struct {
	ID            uuid.UUID
	LotID         uuid.UUID
	ParticipantID uuid.UUID
	Amount        decimal.Decimal
	PlacedAt      time.Time
}

// NewBid creates a new Bid record.
func NewBid(lotID, participantID uuid.UUID, amount decimal.Decimal, placedAt time.Time) *Bid {
	return &Bid{
		ID:            uuid.New(),
		LotID:         lotID,
		ParticipantID: participantID,
		Amount:        amount,
		PlacedAt:      placedAt,
	}
}
