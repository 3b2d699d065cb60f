package websocket

import (
	"context"
	"time"

	"github.com/auctionroom/auctionroom/internal/shared/logger"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Per-client outbound buffer. A client that falls this far behind is
	// disconnected rather than allowed to stall the fan-out loop.
	sendBuffer = 64

	// Hub-level broadcast buffer. Senders block when it is full instead of
	// dropping, so an accepted bid's notification is never lost before the
	// fan-out loop sees it.
	broadcastBuffer = 256
)

// Hub keeps the session registry and fans messages out to each auction's
// connection group. Membership is local to this process and is lost on
// restart; clients reconnect and receive a fresh snapshot.
type Hub struct {
	// Registered clients, grouped by auction slug.
	clients map[string]map[*Client]bool

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client

	// InboundMessages carries client commands to module handlers.
	InboundMessages chan *ClientMessage

	// done is closed when Run returns; senders select on it so registry
	// calls from connection teardown never block after shutdown.
	done chan struct{}
}

// Client represents one websocket session joined to an auction. A nil
// ParticipantID marks an anonymous viewer.
type Client struct {
	Hub  *Hub
	Conn *websocket.Conn
	// Buffered channel of outbound messages.
	Send chan []byte
	// Auction slug this session joined.
	Slug          string
	ID            string
	AuctionID     uuid.UUID
	ParticipantID *uuid.UUID
}

// Message is one payload addressed to an auction's connection group.
type Message struct {
	Slug string
	Data []byte
}

// ClientMessage wraps an inbound payload with the session that sent it.
type ClientMessage struct {
	Client *Client
	Data   []byte
}

// NewClient builds a session for a joined connection with its outbound
// buffer allocated.
func NewClient(h *Hub, conn *websocket.Conn, slug string, auctionID uuid.UUID, participantID *uuid.UUID) *Client {
	return &Client{
		Hub:           h,
		Conn:          conn,
		Send:          make(chan []byte, sendBuffer),
		Slug:          slug,
		ID:            uuid.NewString(),
		AuctionID:     auctionID,
		ParticipantID: participantID,
	}
}

func NewHub() *Hub {
	return &Hub{
		clients:         make(map[string]map[*Client]bool),
		broadcast:       make(chan *Message, broadcastBuffer),
		register:        make(chan *Client),
		unregister:      make(chan *Client),
		InboundMessages: make(chan *ClientMessage, broadcastBuffer),
		done:            make(chan struct{}),
	}
}

// Run starts the hub loop. Broadcasts to one auction group are delivered in
// the order they were published; within a group every member is attempted,
// and only individual slow connections are dropped.
func (h *Hub) Run(ctx context.Context) {
	log.Info("websocket hub started")
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			log.Info("websocket hub shutting down")
			for slug, group := range h.clients {
				for client := range group {
					close(client.Send)
				}
				delete(h.clients, slug)
			}
			return

		case client := <-h.register:
			if _, ok := h.clients[client.Slug]; !ok {
				h.clients[client.Slug] = make(map[*Client]bool)
			}
			h.clients[client.Slug][client] = true
			log.Info("session joined",
				zap.String("clientID", client.ID),
				zap.String("slug", client.Slug),
				zap.Int("groupSize", len(h.clients[client.Slug])),
			)

		case client := <-h.unregister:
			if group, ok := h.clients[client.Slug]; ok {
				if _, ok := group[client]; ok {
					delete(group, client)
					close(client.Send)
					log.Info("session left",
						zap.String("clientID", client.ID),
						zap.String("slug", client.Slug),
					)
					if len(group) == 0 {
						delete(h.clients, client.Slug)
					}
				}
			}

		case message := <-h.broadcast:
			group, ok := h.clients[message.Slug]
			if !ok {
				continue
			}
			for client := range group {
				select {
				case client.Send <- message.Data:
				default:
					// Slow connection: drop it, not the event.
					close(client.Send)
					delete(group, client)
					log.Warn("dropping slow session",
						zap.String("clientID", client.ID),
						zap.String("slug", client.Slug),
					)
				}
			}
		}
	}
}

// RegisterClient adds a session to its auction's group. After shutdown the
// call returns without registering.
func (h *Hub) RegisterClient(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// UnregisterClient removes a session on disconnect. After shutdown the call
// returns immediately; the hub already closed every session.
func (h *Hub) UnregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// BroadcastToAuction queues data for every member of the auction's group.
// The send blocks when the hub buffer is full rather than dropping; callers
// publish after their durable commit, so this never gates the commit itself.
// After shutdown the event is discarded.
func (h *Hub) BroadcastToAuction(slug string, data []byte) {
	select {
	case h.broadcast <- &Message{Slug: slug, Data: data}:
	case <-h.done:
	}
}

// SendToClient queues data for a single session, best-effort. Used for
// snapshots and per-submitter replies.
func (h *Hub) SendToClient(client *Client, data []byte) {
	select {
	case client.Send <- data:
	default:
		log.Warn("client send buffer full, message dropped",
			zap.String("clientID", client.ID),
			zap.String("slug", client.Slug),
		)
	}
}

// ReadPump reads messages from the websocket and hands them to the hub's
// inbound channel. Runs as one goroutine per connection.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.Hub.UnregisterClient(c)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("websocket read error",
					zap.String("clientID", c.ID),
					zap.String("slug", c.Slug),
					zap.Error(err),
				)
			}
			break
		}

		select {
		case c.Hub.InboundMessages <- &ClientMessage{Client: c, Data: message}:
		default:
			log.Error("inbound channel full, dropping message",
				zap.String("clientID", c.ID),
				zap.String("slug", c.Slug),
			)
		}
	}
}

// WritePump pumps messages from the hub to the websocket connection and
// keeps it alive with pings. Runs as one goroutine per connection; it is
// the only writer to the connection.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			_ = c.Conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return

		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error("websocket write error",
					zap.String("clientID", c.ID),
					zap.String("slug", c.Slug),
					zap.Error(err),
				)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
