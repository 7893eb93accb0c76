package ws

import (
	"encoding/json"
	"testing"

	"kodbank/internal/domain"
)

func newTestClient(h *Hub, buf int) *Client {
	return &Client{UserID: 1, Send: make(chan []byte, buf), Hub: h}
}

func TestHubBroadcastsTicks(t *testing.T) {
	h := NewHub()
	c := newTestClient(h, 4)
	h.Register(c)

	h.OnTick(map[string]float64{"AAPL": 185.1}, []domain.MarketEvent{{Symbol: "AAPL", Type: domain.EventSurge}})

	select {
	case raw := <-c.Send:
		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if msg.Type != "prices" || msg.Prices["AAPL"] != 185.1 {
			t.Fatalf("unexpected message %+v", msg)
		}
		if len(msg.Events) != 1 || msg.Events[0].Type != domain.EventSurge {
			t.Fatalf("expected one surge event, got %+v", msg.Events)
		}
	default:
		t.Fatalf("no message delivered")
	}
}

func TestHubSendsLastSnapshotOnRegister(t *testing.T) {
	h := NewHub()
	h.OnTick(map[string]float64{"TSLA": 650.2}, nil)

	c := newTestClient(h, 1)
	h.Register(c)
	if len(c.Send) != 1 {
		t.Fatalf("expected snapshot queued on register, got %d", len(c.Send))
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	h := NewHub()
	c := newTestClient(h, 1)
	h.Register(c)

	h.OnTick(map[string]float64{"AMD": 1}, nil)
	h.OnTick(map[string]float64{"AMD": 2}, nil)

	if h.Len() != 0 {
		t.Fatalf("slow client should be dropped, have %d", h.Len())
	}
	<-c.Send
	if _, ok := <-c.Send; ok {
		t.Fatalf("send channel should be closed")
	}
	// unregistering a dropped client must not close twice
	h.Unregister(c)
}
