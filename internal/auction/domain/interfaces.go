package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LotUpdate carries the lot field changes an accepted bid commits together
// with its Bid record.
type LotUpdate struct {
	Price   decimal.Decimal
	Leader  uuid.UUID
	EndTime *time.Time
}

// LotLedger holds the canonical snapshot of each lot. It performs no
// validation; validation belongs to the arbitrator.
type LotLedger interface {
	Read(ctx context.Context, lotID uuid.UUID) (*Lot, error)
	// Commit persists the Bid record and the lot field changes atomically:
	// both land or neither does. It returns ErrLotNotLive when the owning
	// auction left the live state since the caller's status check, and
	// ErrCommitConflict on storage-level contention.
	Commit(ctx context.Context, lotID uuid.UUID, upd LotUpdate, bid *Bid) error
}

type LotRepository interface {
	Create(ctx context.Context, lot *Lot) error
	ListByAuctionID(ctx context.Context, auctionID uuid.UUID) ([]*Lot, error)
	NextLotNumber(ctx context.Context, auctionID uuid.UUID) (int, error)
}

type AuctionRepository interface {
	Create(ctx context.Context, a *Auction) error
	GetByID(ctx context.Context, id uuid.UUID) (*Auction, error)
	GetBySlug(ctx context.Context, slug string) (*Auction, error)
	// UpdateStatus persists the status and start time of a transitioned auction.
	UpdateStatus(ctx context.Context, a *Auction) error
	List(ctx context.Context, limit, offset int) ([]*Auction, error)
	// ListPendingActivations returns draft auctions with a start time set,
	// so activation timers can be re-armed at boot.
	ListPendingActivations(ctx context.Context) ([]*Auction, error)
}

type BidRepository interface {
	ListByLotID(ctx context.Context, lotID uuid.UUID) ([]*Bid, error)
}

type ParticipantRepository interface {
	Create(ctx context.Context, p *Participant) error
	GetByToken(ctx context.Context, inviteToken string) (*Participant, error)
	CountActive(ctx context.Context, auctionID uuid.UUID) (int, error)
}

type VendorRepository interface {
	Create(ctx context.Context, v *Vendor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Vendor, error)
}

// Broadcaster fans arbitration results and lifecycle changes out to every
// session of an auction. Implementations must never block or fail the
// commit that produced the event; delivery is best-effort.
type Broadcaster interface {
	BidAccepted(auctionSlug string, result *BidResult)
	StatusChanged(auctionSlug string, status AuctionStatus, startedAt *time.Time)
}
