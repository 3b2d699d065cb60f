package domain

import (
	"time"

	"github.com/google/uuid"
)

// Vendor is the underlying identity a participant bids on behalf of.
type Vendor struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Comment   string
	CreatedAt time.Time
}

// Participant is a vendor admitted into one auction. The invite token is the
// credential used for session admission; a blocked participant can still be
// listed but is refused at join time.
type Participant struct {
	ID          uuid.UUID
	AuctionID   uuid.UUID
	VendorID    uuid.UUID
	InviteToken string
	Blocked     bool
	CreatedAt   time.Time
}

// NewParticipant admits a vendor into an auction under a freshly minted token.
func NewParticipant(auctionID, vendorID uuid.UUID, inviteToken string) *Participant {
	return &Participant{
		ID:          uuid.New(),
		AuctionID:   auctionID,
		VendorID:    vendorID,
		InviteToken: inviteToken,
	}
}

// CanJoin reports whether this participant may be admitted into the given
// auction's session.
func (p *Participant) CanJoin(auctionID uuid.UUID) bool {
	return p.AuctionID == auctionID && !p.Blocked
}
