package market

import (
	"math"
	"testing"
	"time"

	"kodbank/internal/domain"
	"kodbank/internal/rng"
)

type recorder struct {
	ticks  int
	events []domain.MarketEvent
}

func (r *recorder) OnTick(_ map[string]float64, events []domain.MarketEvent) {
	r.ticks++
	r.events = append(r.events, events...)
}

func TestSimulatorPricesStayPositiveAndFinite(t *testing.T) {
	s := NewSimulator(SimulatorConfig{Interval: time.Second}, rng.Default())
	for i := 0; i < 5000; i++ {
		s.Tick()
	}
	for sym, p := range s.Snapshot() {
		if p <= 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			t.Fatalf("%s price = %v after 5000 ticks", sym, p)
		}
	}
}

func TestSimulatorJumpIsRecorded(t *testing.T) {
	one := []Instrument{{Symbol: "AAPL", Company: "Apple Inc.", Open: 100}}
	// noise=0.5 (zero noise), jump draw below threshold, surge, magnitude draw 0 -> 2%
	src := rng.NewScripted([]float64{0.5, 0.001, 0.1, 0.0}, nil)
	s := NewSimulator(SimulatorConfig{Instruments: one, EventLogCap: 2}, src)
	rec := &recorder{}
	s.Subscribe(rec)

	events := s.Tick()
	if len(events) != 1 {
		t.Fatalf("expected one jump, got %d", len(events))
	}
	ev := events[0]
	if ev.Symbol != "AAPL" || ev.Type != domain.EventSurge || ev.Magnitude != 2 {
		t.Fatalf("unexpected event %+v", ev)
	}
	// 100 + 100*0.0001 + 100*0.02
	if p, _ := s.Price("AAPL"); p != 102.01 {
		t.Fatalf("price = %v; want 102.01", p)
	}
	if rec.ticks != 1 || len(rec.events) != 1 {
		t.Fatalf("listener not notified: %+v", rec)
	}
}

func TestSimulatorEventLogIsBounded(t *testing.T) {
	one := []Instrument{{Symbol: "TSLA", Open: 650}}
	src := rng.NewScripted(nil, nil)
	src.FloatDefault = 0.001 // every draw triggers an upward jump
	s := NewSimulator(SimulatorConfig{Instruments: one, EventLogCap: 3}, src)

	for i := 0; i < 10; i++ {
		s.Tick()
	}
	if got := len(s.RecentEvents(0)); got != 3 {
		t.Fatalf("event log size = %d; want 3", got)
	}
	if got := len(s.RecentEvents(2)); got != 2 {
		t.Fatalf("RecentEvents(2) returned %d", got)
	}
	for _, ev := range s.RecentEvents(0) {
		if ev.Type != domain.EventSurge {
			t.Fatalf("expected surge, got %s", ev.Type)
		}
	}
}

func TestPriceOrFallsBack(t *testing.T) {
	s := NewSimulator(SimulatorConfig{}, nil)
	if got := s.PriceOr("NOPE", 100); got != 100 {
		t.Fatalf("PriceOr unknown = %v", got)
	}
	if got := s.PriceOr("AAPL", 1); got != 184.40 {
		t.Fatalf("PriceOr AAPL = %v", got)
	}
	if _, ok := s.Instrument("AVGO"); !ok {
		t.Fatalf("AVGO not listed")
	}
}
