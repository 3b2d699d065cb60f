package websocket

import (
	"time"

	"github.com/auctionroom/auctionroom/internal/auction/application"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MessageType identifies a websocket message.
type MessageType string

const (
	MessageTypePlaceBid    MessageType = "place_bid"    // client command to make a bid
	MessageTypeState       MessageType = "state"        // full snapshot, sent only to the joining connection
	MessageTypeBidAccepted MessageType = "bid_accepted" // broadcast on every accepted bid
	MessageTypeBidRejected MessageType = "bid_rejected" // reply to the submitter only
	MessageTypeStatus      MessageType = "status"       // broadcast on lifecycle transition
	MessageTypeError       MessageType = "error"        // server error reply
)

// BaseMessage is the envelope every websocket message carries.
type BaseMessage struct {
	Type MessageType `json:"type"`
}

// PlaceBidMessage is the inbound bid command.
type PlaceBidMessage struct {
	BaseMessage
	Payload struct {
		LotID  uuid.UUID       `json:"lot_id"`
		Amount decimal.Decimal `json:"amount"`
	} `json:"payload"`
}

// StateMessage carries the full auction snapshot to a newly joined
// connection.
type StateMessage struct {
	BaseMessage
	Payload application.AuctionStateDTO `json:"payload"`
}

// BidAcceptedMessage is broadcast to the whole auction group, the submitter
// included, so every client displays the same canonical state.
type BidAcceptedMessage struct {
	BaseMessage
	Payload struct {
		LotID  uuid.UUID       `json:"lot_id"`
		Amount decimal.Decimal `json:"amount"`
		Leader uuid.UUID       `json:"leader"`
		EndsAt *time.Time      `json:"ends_at"`
	} `json:"payload"`
}

// BidRejectedMessage goes only to the submitting connection.
type BidRejectedMessage struct {
	BaseMessage
	Payload struct {
		LotID       uuid.UUID        `json:"lot_id"`
		Reason      string           `json:"reason"`
		MinRequired *decimal.Decimal `json:"min_required,omitempty"`
	} `json:"payload"`
}

// StatusMessage broadcasts a lifecycle transition to the auction group.
type StatusMessage struct {
	BaseMessage
	Payload struct {
		Status    string     `json:"status"`
		StartedAt *time.Time `json:"started_at,omitempty"`
	} `json:"payload"`
}

// ErrorMessage reports a request-level failure to one connection.
type ErrorMessage struct {
	BaseMessage
	Payload struct {
		Error string `json:"error"`
	} `json:"payload"`
}
