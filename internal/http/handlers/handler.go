package handlers

import (
	"kodbank/internal/domain"
	"kodbank/internal/market"
	"kodbank/internal/service"

	"github.com/gin-gonic/gin"
)

// MarketReader is the read side of the price simulator used by handlers.
type MarketReader interface {
	Snapshot() map[string]float64
	RecentEvents(n int) []domain.MarketEvent
	Instrument(symbol string) (market.Instrument, bool)
	Symbols() []string
}

type Handler struct {
	Auth      *service.AuthService
	Sessions  *service.SessionManager
	Directory *service.DirectoryService
	Rewards   *service.RewardService
	Ledger    *service.LedgerService
	Dashboard *service.DashboardService
	Market    MarketReader

	// SecureCookies marks the session cookie Secure; enable behind TLS.
	SecureCookies bool
}

// getUserID извлекает user_id из контекста Gin
func getUserID(c *gin.Context) (int64, bool) {
	uidVal, ok := c.Get("user_id")
	if !ok {
		return 0, false
	}
	switch v := uidVal.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
