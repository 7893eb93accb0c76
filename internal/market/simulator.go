package market

import (
	"context"
	"maps"
	"math"
	"sync"
	"time"

	"kodbank/internal/domain"
	"kodbank/internal/logger"
	"kodbank/internal/metrics"
	"kodbank/internal/rng"
)

// Tick parameters for the live price walk.
const (
	TickDrift       = 0.0001
	TickVolatility  = 0.002
	JumpProbability = 0.005
	JumpMin         = 0.02
	JumpMax         = 0.05

	minPrice = 0.01
)

// PriceReader is the read side handed to request handlers.
type PriceReader interface {
	Price(symbol string) (float64, bool)
	PriceOr(symbol string, def float64) float64
}

// Listener receives every tick. Implementations must not block.
type Listener interface {
	OnTick(prices map[string]float64, events []domain.MarketEvent)
}

type SimulatorConfig struct {
	Interval    time.Duration
	EventLogCap int
	Instruments []Instrument
}

// Simulator owns the price table. Run is its only writer.
type Simulator struct {
	interval    time.Duration
	rnd         rng.Source
	instruments map[string]Instrument
	order       []string

	mu       sync.RWMutex
	prices   map[string]float64
	events   []domain.MarketEvent
	eventCap int

	lmu       sync.RWMutex
	listeners []Listener
}

func NewSimulator(cfg SimulatorConfig, src rng.Source) *Simulator {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.EventLogCap <= 0 {
		cfg.EventLogCap = 50
	}
	if len(cfg.Instruments) == 0 {
		cfg.Instruments = DefaultInstruments()
	}
	if src == nil {
		src = rng.Default()
	}

	s := &Simulator{
		interval:    cfg.Interval,
		rnd:         src,
		instruments: make(map[string]Instrument, len(cfg.Instruments)),
		prices:      make(map[string]float64, len(cfg.Instruments)),
		eventCap:    cfg.EventLogCap,
	}
	for _, in := range cfg.Instruments {
		s.instruments[in.Symbol] = in
		s.prices[in.Symbol] = in.Open
		s.order = append(s.order, in.Symbol)
		metrics.MarketPrice.WithLabelValues(in.Symbol).Set(in.Open)
	}
	return s
}

// Subscribe registers l for tick notifications.
func (s *Simulator) Subscribe(l Listener) {
	s.lmu.Lock()
	s.listeners = append(s.listeners, l)
	s.lmu.Unlock()
}

// Run ticks until ctx is cancelled.
func (s *Simulator) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger.Info("market simulator started", "symbols", len(s.order), "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			logger.Info("market simulator stopped")
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick advances every symbol by one step and returns the jump events it produced.
func (s *Simulator) Tick() []domain.MarketEvent {
	now := time.Now().UTC()

	s.mu.RLock()
	current := maps.Clone(s.prices)
	s.mu.RUnlock()

	next := make(map[string]float64, len(current))
	var events []domain.MarketEvent
	for _, sym := range s.order {
		price := current[sym]
		change := price * (TickDrift + (s.rnd.Float64()-0.5)*TickVolatility)

		var jump float64
		if s.rnd.Float64() < JumpProbability {
			surge := s.rnd.Float64() < 0.5
			magnitude := rng.Uniform(s.rnd, JumpMin, JumpMax)
			jump = price * magnitude
			typ := domain.EventSurge
			if !surge {
				jump = -jump
				typ = domain.EventDip
			}
			events = append(events, domain.MarketEvent{
				ID:        domain.NewID("ME"),
				Symbol:    sym,
				Type:      typ,
				Magnitude: math.Round(magnitude*1000) / 10,
				Time:      now,
			})
		}

		np := domain.Round2(price + change + jump)
		if np < minPrice || math.IsNaN(np) || math.IsInf(np, 0) {
			np = minPrice
		}
		next[sym] = np
	}

	s.mu.Lock()
	for sym, p := range next {
		s.prices[sym] = p
	}
	if len(events) > 0 {
		s.events = append(s.events, events...)
		if over := len(s.events) - s.eventCap; over > 0 {
			s.events = append([]domain.MarketEvent(nil), s.events[over:]...)
		}
	}
	s.mu.Unlock()

	metrics.MarketTicks.Inc()
	for sym, p := range next {
		metrics.MarketPrice.WithLabelValues(sym).Set(p)
	}
	for _, ev := range events {
		metrics.MarketJumps.WithLabelValues(string(ev.Type)).Inc()
		logger.Debug("market jump", "symbol", ev.Symbol, "type", ev.Type, "magnitude", ev.Magnitude)
	}

	s.lmu.RLock()
	for _, l := range s.listeners {
		l.OnTick(next, events)
	}
	s.lmu.RUnlock()

	return events
}

// Price returns the current price of symbol.
func (s *Simulator) Price(symbol string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prices[symbol]
	return p, ok
}

// PriceOr returns the current price of symbol or def when it is not listed.
func (s *Simulator) PriceOr(symbol string, def float64) float64 {
	if p, ok := s.Price(symbol); ok {
		return p
	}
	return def
}

// Snapshot returns a copy of the price table.
func (s *Simulator) Snapshot() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.prices)
}

// RecentEvents returns up to n most recent jump events, oldest first.
func (s *Simulator) RecentEvents(n int) []domain.MarketEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 || n > len(s.events) {
		n = len(s.events)
	}
	out := make([]domain.MarketEvent, n)
	copy(out, s.events[len(s.events)-n:])
	return out
}

// Instrument returns catalog metadata for symbol.
func (s *Simulator) Instrument(symbol string) (Instrument, bool) {
	in, ok := s.instruments[symbol]
	return in, ok
}

// Symbols lists the tradable symbols in catalog order.
func (s *Simulator) Symbols() []string {
	return append([]string(nil), s.order...)
}
