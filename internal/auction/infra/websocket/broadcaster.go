package websocket

import (
	"encoding/json"
	"time"

	"github.com/auctionroom/auctionroom/internal/auction/domain"
	sharedws "github.com/auctionroom/auctionroom/internal/shared/websocket"
	"go.uber.org/zap"
)

// AuctionBroadcaster adapts the shared hub to the domain Broadcaster
// contract. Serialization failures are logged and swallowed: canonical
// state correctness takes priority over broadcast completeness, and the
// commit that produced the event must never be failed from here.
type AuctionBroadcaster struct {
	hub *sharedws.Hub
}

func NewAuctionBroadcaster(hub *sharedws.Hub) *AuctionBroadcaster {
	return &AuctionBroadcaster{hub: hub}
}

// BidAccepted implements domain.Broadcaster.
func (b *AuctionBroadcaster) BidAccepted(auctionSlug string, result *domain.BidResult) {
	msg := BidAcceptedMessage{BaseMessage: BaseMessage{Type: MessageTypeBidAccepted}}
	msg.Payload.LotID = result.LotID
	msg.Payload.Amount = result.Amount
	msg.Payload.Leader = result.Leader
	msg.Payload.EndsAt = result.EndsAt

	data, err := json.Marshal(msg)
	if err != nil {
		log.Error("failed to marshal bid_accepted event", zap.Error(err))
		return
	}
	b.hub.BroadcastToAuction(auctionSlug, data)
}

// StatusChanged implements domain.Broadcaster.
func (b *AuctionBroadcaster) StatusChanged(auctionSlug string, status domain.AuctionStatus, startedAt *time.Time) {
	msg := StatusMessage{BaseMessage: BaseMessage{Type: MessageTypeStatus}}
	msg.Payload.Status = string(status)
	msg.Payload.StartedAt = startedAt

	data, err := json.Marshal(msg)
	if err != nil {
		log.Error("failed to marshal status event", zap.Error(err))
		return
	}
	b.hub.BroadcastToAuction(auctionSlug, data)
}
