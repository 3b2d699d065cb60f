package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuctionStatus is the single gate deciding whether any lot of the auction
// can accept bids. Lots have no independent status of their own.
type AuctionStatus string

const (
	StatusDraft  AuctionStatus = "draft"
	StatusLive   AuctionStatus = "live"
	StatusPaused AuctionStatus = "paused"
	StatusEnded  AuctionStatus = "ended"
)

// Valid reports whether s is one of the known statuses.
func (s AuctionStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusLive, StatusPaused, StatusEnded:
		return true
	}
	return false
}

// CanTransitionTo implements the lifecycle state machine:
// draft->live, paused->live, live->paused, {live,paused}->ended.
// Ended is terminal.
func (s AuctionStatus) CanTransitionTo(next AuctionStatus) bool {
	switch s {
	case StatusDraft:
		return next == StatusLive
	case StatusLive:
		return next == StatusPaused || next == StatusEnded
	case StatusPaused:
		return next == StatusLive || next == StatusEnded
	}
	return false
}

// Auction groups lots and participants under a shared public slug.
type Auction struct {
	ID          uuid.UUID
	Slug        string
	Title       string
	Description string
	Status      AuctionStatus
	StartTime   *time.Time
	EndTime     *time.Time
	CreatedAt   time.Time
}

// NewAuction creates an auction in draft status.
func NewAuction(id uuid.UUID, slug, title, description string, startTime, endTime *time.Time) *Auction {
	return &Auction{
		ID:          id,
		Slug:        slug,
		Title:       title,
		Description: description,
		Status:      StatusDraft,
		StartTime:   startTime,
		EndTime:     endTime,
	}
}

// Transition moves the auction to the next status, enforcing the state
// machine. Going live for the first time stamps StartTime when it is unset.
func (a *Auction) Transition(next AuctionStatus, now time.Time) error {
	if !a.Status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	if next == StatusLive && a.StartTime == nil {
		t := now.UTC()
		a.StartTime = &t
	}
	a.Status = next
	return nil
}

// Activatable reports whether Activate would have an effect. Activation of
// an already-live or ended auction is a no-op, which keeps scheduled and
// manual activation safe to race.
func (a *Auction) Activatable() bool {
	return a.Status == StatusDraft || a.Status == StatusPaused
}
