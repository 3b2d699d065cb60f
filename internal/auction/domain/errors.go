package domain

import "errors"

var (
	ErrAuctionNotFound     = errors.New("auction not found")
	ErrLotNotFound         = errors.New("auction lot not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrVendorNotFound      = errors.New("vendor not found")
	ErrLotNotLive          = errors.New("owning auction is not live")
	ErrLotMismatch         = errors.New("lot does not belong to this auction")
	ErrInvalidTransition   = errors.New("invalid auction status transition")
	ErrCommitConflict      = errors.New("lot commit conflict")
)
