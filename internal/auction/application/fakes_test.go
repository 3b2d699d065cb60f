package application

import (
	"context"
	"sync"
	"time"

	"github.com/auctionroom/auctionroom/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// fakeAuctionRepo keeps auctions in memory.
type fakeAuctionRepo struct {
	mu       sync.Mutex
	auctions map[uuid.UUID]*domain.Auction
}

func newFakeAuctionRepo(auctions ...*domain.Auction) *fakeAuctionRepo {
	r := &fakeAuctionRepo{auctions: make(map[uuid.UUID]*domain.Auction)}
	for _, a := range auctions {
		r.auctions[a.ID] = a
	}
	return r
}

func (r *fakeAuctionRepo) Create(_ context.Context, a *domain.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.auctions[a.ID] = a
	return nil
}

func (r *fakeAuctionRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.auctions[id]
	if !ok {
		return nil, domain.ErrAuctionNotFound
	}
	return a, nil
}

func (r *fakeAuctionRepo) GetBySlug(_ context.Context, slug string) (*domain.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.auctions {
		if a.Slug == slug {
			return a, nil
		}
	}
	return nil, domain.ErrAuctionNotFound
}

func (r *fakeAuctionRepo) UpdateStatus(_ context.Context, a *domain.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.auctions[a.ID]; !ok {
		return domain.ErrAuctionNotFound
	}
	r.auctions[a.ID] = a
	return nil
}

func (r *fakeAuctionRepo) ListPendingActivations(_ context.Context) ([]*domain.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Auction
	for _, a := range r.auctions {
		if a.Status == domain.StatusDraft && a.StartTime != nil {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAuctionRepo) List(_ context.Context, limit, offset int) ([]*domain.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Auction, 0, len(r.auctions))
	for _, a := range r.auctions {
		out = append(out, a)
	}
	return out, nil
}

// commitRecord captures one committed bid in commit order.
type commitRecord struct {
	lotID  uuid.UUID
	amount string
	leader uuid.UUID
}

// fakeLedger keeps lots in memory and applies commits atomically under its
// own mutex. commitHook, when set, runs before each commit and may veto it.
type fakeLedger struct {
	mu         sync.Mutex
	lots       map[uuid.UUID]*domain.Lot
	bids       []*domain.Bid
	commits    []commitRecord
	commitHook func(lotID uuid.UUID) error
}

func newFakeLedger(lots ...*domain.Lot) *fakeLedger {
	l := &fakeLedger{lots: make(map[uuid.UUID]*domain.Lot)}
	for _, lot := range lots {
		l.lots[lot.ID] = lot
	}
	return l
}

func (l *fakeLedger) Read(_ context.Context, lotID uuid.UUID) (*domain.Lot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lot, ok := l.lots[lotID]
	if !ok {
		return nil, domain.ErrLotNotFound
	}
	snapshot := *lot
	return &snapshot, nil
}

func (l *fakeLedger) Commit(_ context.Context, lotID uuid.UUID, upd domain.LotUpdate, bid *domain.Bid) error {
	if l.commitHook != nil {
		if err := l.commitHook(lotID); err != nil {
			return err
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	lot, ok := l.lots[lotID]
	if !ok {
		return domain.ErrLotNotFound
	}
	lot.CurrentPrice = upd.Price
	leader := upd.Leader
	lot.CurrentLeader = &leader
	lot.EndTime = upd.EndTime
	l.bids = append(l.bids, bid)
	l.commits = append(l.commits, commitRecord{lotID: lotID, amount: upd.Price.String(), leader: upd.Leader})
	return nil
}

func (l *fakeLedger) commitCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.commits)
}

// fakeBroadcaster records events in publication order.
type fakeBroadcaster struct {
	mu       sync.Mutex
	accepted []*domain.BidResult
	statuses []domain.AuctionStatus
	slugs    []string
}

func (b *fakeBroadcaster) BidAccepted(slug string, result *domain.BidResult) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accepted = append(b.accepted, result)
	b.slugs = append(b.slugs, slug)
}

func (b *fakeBroadcaster) StatusChanged(slug string, status domain.AuctionStatus, _ *time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.statuses = append(b.statuses, status)
	b.slugs = append(b.slugs, slug)
}

func (b *fakeBroadcaster) lastStatus() (domain.AuctionStatus, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.statuses) == 0 {
		return "", false
	}
	return b.statuses[len(b.statuses)-1], true
}

func (b *fakeBroadcaster) acceptedAmounts() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.accepted))
	for i, r := range b.accepted {
		out[i] = r.Amount.String()
	}
	return out
}

func liveAuction() *domain.Auction {
	a := domain.NewAuction(uuid.New(), "a1b2c3d4e", "Spring sale", "", nil, nil)
	a.Status = domain.StatusLive
	return a
}
