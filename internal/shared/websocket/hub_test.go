package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/peterldowns/testy/check"
)

// testClient builds a registry entry with no underlying connection; tests
// read its Send channel directly instead of running a write pump.
func testClient(h *Hub, slug string, buffer int) *Client {
	return &Client{
		Hub:       h,
		Send:      make(chan []byte, buffer),
		Slug:      slug,
		ID:        uuid.NewString(),
		AuctionID: uuid.New(),
	}
}

func recv(t *testing.T, ch chan []byte) []byte {
	t.Helper()
	select {
	case data, ok := <-ch:
		if !ok {
			t.Fatal("send channel closed")
		}
		return data
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
	return nil
}

func recvClosed(t *testing.T, ch chan []byte) {
	t.Helper()
	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected closed channel, got message")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel never closed")
	}
}

func TestHub_BroadcastReachesOnlyTheAuctionGroup(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub()
	go hub.Run(ctx)

	a1 := testClient(hub, "auction-a", 8)
	a2 := testClient(hub, "auction-a", 8)
	b1 := testClient(hub, "auction-b", 8)
	hub.RegisterClient(a1)
	hub.RegisterClient(a2)
	hub.RegisterClient(b1)

	hub.BroadcastToAuction("auction-a", []byte("hello"))

	check.Equal(t, "hello", string(recv(t, a1.Send)))
	check.Equal(t, "hello", string(recv(t, a2.Send)))

	select {
	case data := <-b1.Send:
		t.Fatalf("other auction received %q", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_DeliveryOrderMatchesPublicationOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub()
	go hub.Run(ctx)

	c := testClient(hub, "auction-a", 8)
	hub.RegisterClient(c)

	hub.BroadcastToAuction("auction-a", []byte("m1"))
	hub.BroadcastToAuction("auction-a", []byte("m2"))
	hub.BroadcastToAuction("auction-a", []byte("m3"))

	check.Equal(t, "m1", string(recv(t, c.Send)))
	check.Equal(t, "m2", string(recv(t, c.Send)))
	check.Equal(t, "m3", string(recv(t, c.Send)))
}

func TestHub_SlowClientIsDroppedNotTheEvent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub()
	go hub.Run(ctx)

	slow := testClient(hub, "auction-a", 1)
	fast := testClient(hub, "auction-a", 8)
	hub.RegisterClient(slow)
	hub.RegisterClient(fast)

	// The first message fills slow's buffer; the second overflows it and
	// gets the session dropped, while fast receives both.
	hub.BroadcastToAuction("auction-a", []byte("m1"))
	hub.BroadcastToAuction("auction-a", []byte("m2"))

	check.Equal(t, "m1", string(recv(t, fast.Send)))
	check.Equal(t, "m2", string(recv(t, fast.Send)))

	check.Equal(t, "m1", string(recv(t, slow.Send)))
	recvClosed(t, slow.Send)
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub()
	go hub.Run(ctx)

	c := testClient(hub, "auction-a", 8)
	hub.RegisterClient(c)
	hub.UnregisterClient(c)

	recvClosed(t, c.Send)

	// Broadcasting afterwards must not panic on the gone session.
	hub.BroadcastToAuction("auction-a", []byte("late"))
	time.Sleep(50 * time.Millisecond)
}

func TestHub_SendToClientIsBestEffort(t *testing.T) {
	hub := NewHub()
	c := testClient(hub, "auction-a", 1)

	hub.SendToClient(c, []byte("m1"))
	// Buffer full: this must drop, not block.
	hub.SendToClient(c, []byte("m2"))

	check.Equal(t, "m1", string(recv(t, c.Send)))
	select {
	case data := <-c.Send:
		t.Fatalf("unexpected message %q", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_RegistryCallsReturnAfterShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)

	c := testClient(hub, "auction-a", 8)
	hub.RegisterClient(c)
	cancel()
	recvClosed(t, c.Send)

	// Connection teardown still runs after the hub loop is gone; none of
	// these may block.
	done := make(chan struct{})
	go func() {
		hub.UnregisterClient(c)
		hub.RegisterClient(testClient(hub, "auction-a", 8))
		hub.BroadcastToAuction("auction-a", []byte("late"))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("hub call blocked after shutdown")
	}
}

func TestHub_ShutdownClosesAllSessions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)

	a := testClient(hub, "auction-a", 8)
	b := testClient(hub, "auction-b", 8)
	hub.RegisterClient(a)
	hub.RegisterClient(b)

	cancel()
	recvClosed(t, a.Send)
	recvClosed(t, b.Send)
}
