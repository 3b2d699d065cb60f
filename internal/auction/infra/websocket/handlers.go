package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/auctionroom/auctionroom/internal/auction/application"
	"github.com/auctionroom/auctionroom/internal/auction/domain"
	"github.com/auctionroom/auctionroom/internal/shared/logger"
	sharedws "github.com/auctionroom/auctionroom/internal/shared/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// AuctionWSHandler serves the persistent bidding connections: join
// admission, the place_bid command, and the snapshot for late joiners.
type AuctionWSHandler struct {
	service      application.AuctionService
	auctions     domain.AuctionRepository
	participants domain.ParticipantRepository
	hub          *sharedws.Hub
	ctx          context.Context
}

func NewAuctionWSHandler(ctx context.Context, service application.AuctionService, auctions domain.AuctionRepository, participants domain.ParticipantRepository, hub *sharedws.Hub) *AuctionWSHandler {
	return &AuctionWSHandler{
		service:      service,
		auctions:     auctions,
		participants: participants,
		hub:          hub,
		ctx:          ctx,
	}
}

// Register mounts the auction websocket endpoint on the fiber app.
func (h *AuctionWSHandler) Register(app *fiber.App) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/:slug", websocket.New(h.serveConn))
}

// serveConn admits one connection into an auction session and runs its
// read/write pumps until it drops.
func (h *AuctionWSHandler) serveConn(conn *websocket.Conn) {
	slug := conn.Params("slug")
	token := conn.Query("t")

	auction, participantID, err := h.admit(h.ctx, slug, token)
	if err != nil {
		log.Warn("join rejected",
			zap.String("slug", slug),
			zap.Error(err),
		)
		conn.Close()
		return
	}

	client := sharedws.NewClient(h.hub, conn, slug, auction.ID, participantID)
	h.hub.RegisterClient(client)

	// The snapshot goes only to the joining connection.
	h.sendSnapshot(client, auction)

	go client.WritePump(h.ctx)
	client.ReadPump(h.ctx) // blocks until the connection drops
}

// admit decides join admission. The slug must resolve to a known auction; a
// supplied invite token must belong to an unblocked participant of that
// auction. An empty token admits the connection as an anonymous viewer with
// a nil participant id.
func (h *AuctionWSHandler) admit(ctx context.Context, slug, token string) (*domain.Auction, *uuid.UUID, error) {
	auction, err := h.auctions.GetBySlug(ctx, slug)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve auction %q: %w", slug, err)
	}
	if token == "" {
		return auction, nil, nil
	}
	p, err := h.participants.GetByToken(ctx, token)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve invite token for %q: %w", slug, err)
	}
	if !p.CanJoin(auction.ID) {
		return nil, nil, fmt.Errorf("invite token not admitted to auction %q", slug)
	}
	return auction, &p.ID, nil
}

// ListenForMessages drains the hub's inbound channel and dispatches each
// client command. Run as a single goroutine next to the hub.
func (h *AuctionWSHandler) ListenForMessages(ctx context.Context) {
	log.Info("auction websocket handler listening")
	for {
		select {
		case <-ctx.Done():
			log.Info("auction websocket handler stopped")
			return
		case msg := <-h.hub.InboundMessages:
			go h.processMessage(ctx, msg.Client, msg.Data)
		}
	}
}

func (h *AuctionWSHandler) processMessage(ctx context.Context, client *sharedws.Client, data []byte) {
	var base BaseMessage
	if err := json.Unmarshal(data, &base); err != nil {
		h.sendError(client, "invalid message format")
		return
	}
	switch base.Type {
	case MessageTypePlaceBid:
		h.handlePlaceBid(ctx, client, data)
	default:
		h.sendError(client, "unknown message type")
	}
}

func (h *AuctionWSHandler) handlePlaceBid(ctx context.Context, client *sharedws.Client, data []byte) {
	if client.ParticipantID == nil {
		h.sendError(client, "auth required to place bids")
		return
	}
	var msg PlaceBidMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		h.sendError(client, "invalid bid message format")
		return
	}

	cmd := application.PlaceBidCommand{
		AuctionID:     client.AuctionID,
		LotID:         msg.Payload.LotID,
		ParticipantID: *client.ParticipantID,
		Amount:        msg.Payload.Amount,
	}
	result, err := h.service.PlaceBid(ctx, cmd)
	if err != nil {
		log.Error("bid attempt failed",
			zap.String("clientID", client.ID),
			zap.String("lotID", cmd.LotID.String()),
			zap.Error(err),
		)
		h.sendError(client, "internal error")
		return
	}

	if !result.Accepted {
		h.sendRejection(client, result)
		return
	}
	// Accepted results reach every session of the auction, the submitter
	// included, through the broadcaster; no direct reply here.
}

func (h *AuctionWSHandler) sendSnapshot(client *sharedws.Client, auction *domain.Auction) {
	state, err := h.service.AuctionState(h.ctx, auction)
	if err != nil {
		log.Error("failed to build auction snapshot",
			zap.String("slug", auction.Slug),
			zap.Error(err),
		)
		h.sendError(client, "failed to load auction state")
		return
	}
	msg := StateMessage{BaseMessage: BaseMessage{Type: MessageTypeState}, Payload: *state}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error("failed to marshal snapshot", zap.Error(err))
		return
	}
	h.hub.SendToClient(client, data)
}

func (h *AuctionWSHandler) sendRejection(client *sharedws.Client, result *domain.BidResult) {
	msg := BidRejectedMessage{BaseMessage: BaseMessage{Type: MessageTypeBidRejected}}
	msg.Payload.LotID = result.LotID
	msg.Payload.Reason = string(result.Reason)
	if result.Reason == domain.ReasonBidTooLow {
		min := result.MinRequired
		msg.Payload.MinRequired = &min
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error("failed to marshal bid_rejected reply", zap.Error(err))
		return
	}
	h.hub.SendToClient(client, data)
}

func (h *AuctionWSHandler) sendError(client *sharedws.Client, message string) {
	msg := ErrorMessage{BaseMessage: BaseMessage{Type: MessageTypeError}}
	msg.Payload.Error = message
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error("failed to marshal error reply", zap.Error(err))
		return
	}
	h.hub.SendToClient(client, data)
}
