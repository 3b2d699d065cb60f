package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Anti-sniping never uses a window narrower than this, regardless of how
// small the configured extension is.
const minSnipeWindow = 5 * time.Second

// Lot is a single item under auction. CurrentPrice starts at BasePrice and
// is non-decreasing over the sequence of accepted bids; CurrentLeader is the
// participant of the most recently accepted bid, nil before the first one.
type Lot struct {
	ID            uuid.UUID
	AuctionID     uuid.UUID
	LotNumber     int
	Name          string
	BasePrice     decimal.Decimal
	MinIncrement  decimal.Decimal
	Currency      string
	CurrentPrice  decimal.Decimal
	CurrentLeader *uuid.UUID
	EndTime       *time.Time
	ExtensionSec  int
	CreatedAt     time.Time
}

// NewLot creates a lot with its current price seeded from the base price.
func NewLot(id, auctionID uuid.UUID, lotNumber int, name string, basePrice, minIncrement decimal.Decimal, currency string, endTime *time.Time, extensionSec int) *Lot {
	return &Lot{
		ID:           id,
		AuctionID:    auctionID,
		LotNumber:    lotNumber,
		Name:         name,
		BasePrice:    basePrice,
		MinIncrement: minIncrement,
		Currency:     currency,
		CurrentPrice: basePrice,
		EndTime:      endTime,
		ExtensionSec: extensionSec,
	}
}

// MinRequired is the lowest amount the next bid must reach:
// max(basePrice, currentPrice + minIncrement).
func (l *Lot) MinRequired() decimal.Decimal {
	stepped := l.CurrentPrice.Add(l.MinIncrement)
	if l.BasePrice.GreaterThan(stepped) {
		return l.BasePrice
	}
	return stepped
}

// ExtendedEnd returns the new closing time when a bid accepted at now lands
// inside the anti-sniping window, or nil when the closing time stays as is.
// The window is max(5s, extensionSec/2); the extension pushes the end
// forward by the full extensionSec, never backward.
func (l *Lot) ExtendedEnd(now time.Time) *time.Time {
	if l.EndTime == nil || l.ExtensionSec <= 0 {
		return nil
	}
	window := time.Duration(l.ExtensionSec/2) * time.Second
	if window < minSnipeWindow {
		window = minSnipeWindow
	}
	if l.EndTime.Sub(now) >= window {
		return nil
	}
	extended := l.EndTime.Add(time.Duration(l.ExtensionSec) * time.Second)
	return &extended
}
