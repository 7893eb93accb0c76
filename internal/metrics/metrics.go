package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RLRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limiter_requests_total",
			Help: "Total requests seen by the rate limiter",
		},
		[]string{"endpoint"},
	)
	RLBlocked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limiter_blocked_total",
			Help: "Total requests blocked by the rate limiter",
		},
		[]string{"endpoint"},
	)

	MarketTicks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "market_ticks_total",
			Help: "Price simulator ticks",
		},
	)
	MarketJumps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_jump_events_total",
			Help: "Jump events produced by the price simulator",
		},
		[]string{"direction"},
	)
	MarketPrice = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "market_price",
			Help: "Current simulated price per symbol",
		},
		[]string{"symbol"},
	)

	LedgerOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_operations_total",
			Help: "Balance mutating operations by result",
		},
		[]string{"op", "result"},
	)
	RewardSpins = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reward_spins_total",
			Help: "Reward wheel spins by outcome",
		},
		[]string{"outcome"},
	)

	StoreUp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "store_up",
			Help: "1 when the storage backend answered the last health check",
		},
	)
	WSClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "market_feed_clients",
			Help: "Connected market feed websocket clients",
		},
	)
)

func init() {
	prometheus.MustRegister(RLRequests, RLBlocked)
	prometheus.MustRegister(MarketTicks, MarketJumps, MarketPrice)
	prometheus.MustRegister(LedgerOps, RewardSpins)
	prometheus.MustRegister(StoreUp, WSClients)
}

// Result labels an operation outcome for LedgerOps.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
