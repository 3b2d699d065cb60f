package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/auctionroom/auctionroom/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// slugAttempts bounds retries when a freshly generated slug collides.
const slugAttempts = 5

// AdminService backs the thin REST surface: creating auctions, lots,
// vendors and participants, and reading the bid log. Lifecycle transitions
// go through LifecycleService, not here.
type AdminService struct {
	auctions     domain.AuctionRepository
	lots         domain.LotRepository
	participants domain.ParticipantRepository
	vendors      domain.VendorRepository
	bids         domain.BidRepository
}

func NewAdminService(
	auctions domain.AuctionRepository,
	lots domain.LotRepository,
	participants domain.ParticipantRepository,
	vendors domain.VendorRepository,
	bids domain.BidRepository,
) *AdminService {
	return &AdminService{
		auctions:     auctions,
		lots:         lots,
		participants: participants,
		vendors:      vendors,
		bids:         bids,
	}
}

// CreateAuction creates a draft auction under a fresh public slug.
func (s *AdminService) CreateAuction(ctx context.Context, title, description string, startTime, endTime *time.Time) (*domain.Auction, error) {
	for attempt := 0; attempt < slugAttempts; attempt++ {
		slug := randomSlug()
		_, err := s.auctions.GetBySlug(ctx, slug)
		if err == nil {
			continue // slug taken, roll again
		}
		if !errors.Is(err, domain.ErrAuctionNotFound) {
			return nil, fmt.Errorf("create auction: check slug: %w", err)
		}
		a := domain.NewAuction(uuid.New(), slug, title, description, startTime, endTime)
		if err := s.auctions.Create(ctx, a); err != nil {
			return nil, fmt.Errorf("create auction: %w", err)
		}
		log.Info("auction created",
			zap.String("auctionID", a.ID.String()),
			zap.String("slug", a.Slug),
		)
		return a, nil
	}
	return nil, fmt.Errorf("create auction: no unique slug after %d attempts", slugAttempts)
}

// CreateLot adds a lot to the auction, numbering it after the current
// highest lot number.
func (s *AdminService) CreateLot(ctx context.Context, auctionSlug, name string, basePrice, minIncrement decimal.Decimal, currency string, endTime *time.Time, extensionSec int) (*domain.Lot, error) {
	a, err := s.auctions.GetBySlug(ctx, auctionSlug)
	if err != nil {
		return nil, fmt.Errorf("create lot: auction %q: %w", auctionSlug, err)
	}
	number, err := s.lots.NextLotNumber(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("create lot: next number for %s: %w", a.ID, err)
	}
	lot := domain.NewLot(uuid.New(), a.ID, number, name, basePrice, minIncrement, currency, endTime, extensionSec)
	if err := s.lots.Create(ctx, lot); err != nil {
		return nil, fmt.Errorf("create lot: %w", err)
	}
	log.Info("lot created",
		zap.String("auctionSlug", auctionSlug),
		zap.String("lotID", lot.ID.String()),
		zap.Int("lotNumber", lot.LotNumber),
	)
	return lot, nil
}

// CreateVendor registers a vendor identity.
func (s *AdminService) CreateVendor(ctx context.Context, name, email, comment string) (*domain.Vendor, error) {
	v := &domain.Vendor{ID: uuid.New(), Name: name, Email: email, Comment: comment}
	if err := s.vendors.Create(ctx, v); err != nil {
		return nil, fmt.Errorf("create vendor: %w", err)
	}
	return v, nil
}

// CreateParticipant admits a vendor into an auction and mints the invite
// token used for session admission.
func (s *AdminService) CreateParticipant(ctx context.Context, auctionSlug string, vendorID uuid.UUID) (*domain.Participant, error) {
	a, err := s.auctions.GetBySlug(ctx, auctionSlug)
	if err != nil {
		return nil, fmt.Errorf("create participant: auction %q: %w", auctionSlug, err)
	}
	if _, err := s.vendors.GetByID(ctx, vendorID); err != nil {
		return nil, fmt.Errorf("create participant: vendor %s: %w", vendorID, err)
	}
	p := domain.NewParticipant(a.ID, vendorID, randomToken())
	if err := s.participants.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create participant: %w", err)
	}
	log.Info("participant created",
		zap.String("auctionSlug", auctionSlug),
		zap.String("participantID", p.ID.String()),
	)
	return p, nil
}

// ListAuctions pages over auctions, newest first.
func (s *AdminService) ListAuctions(ctx context.Context, limit, offset int) ([]*domain.Auction, error) {
	return s.auctions.List(ctx, limit, offset)
}

// BidLog returns the append-only bid history of one lot in placement order.
func (s *AdminService) BidLog(ctx context.Context, lotID uuid.UUID) ([]*domain.Bid, error) {
	return s.bids.ListByLotID(ctx, lotID)
}
