package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RejectReason tags why a bid attempt was turned down.
type RejectReason string

const (
	ReasonBidTooLow  RejectReason = "bid_too_low"
	ReasonLotNotLive RejectReason = "lot_not_live"
	// ReasonTryAgain surfaces when commit contention exhausted its retries;
	// the lot state is unchanged and the client may simply resubmit.
	ReasonTryAgain RejectReason = "try_again"
)

// BidResult is the outcome of one arbitration attempt. A rejection is a
// normal business branch, not an error: the zero-mutation guarantees hold on
// every rejected result.
type BidResult struct {
	Accepted bool
	LotID    uuid.UUID

	// populated when accepted
	Amount decimal.Decimal
	Leader uuid.UUID
	EndsAt *time.Time

	// populated when rejected
	Reason      RejectReason
	MinRequired decimal.Decimal
}

// AcceptedBid builds the result for a committed bid.
func AcceptedBid(lotID uuid.UUID, amount decimal.Decimal, leader uuid.UUID, endsAt *time.Time) *BidResult {
	return &BidResult{Accepted: true, LotID: lotID, Amount: amount, Leader: leader, EndsAt: endsAt}
}

// RejectedTooLow rejects with the minimum amount the next bid must reach.
func RejectedTooLow(lotID uuid.UUID, minRequired decimal.Decimal) *BidResult {
	return &BidResult{LotID: lotID, Reason: ReasonBidTooLow, MinRequired: minRequired}
}

// RejectedNotLive rejects because the owning auction is not live.
func RejectedNotLive(lotID uuid.UUID) *BidResult {
	return &BidResult{LotID: lotID, Reason: ReasonLotNotLive}
}

// RejectedTryAgain rejects transiently after commit contention.
func RejectedTryAgain(lotID uuid.UUID) *BidResult {
	return &BidResult{LotID: lotID, Reason: ReasonTryAgain}
}
