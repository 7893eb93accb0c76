package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const recentEventCount = 10

type priceView struct {
	Symbol  string  `json:"symbol"`
	Company string  `json:"company"`
	Color   string  `json:"color"`
	Price   float64 `json:"price"`
}

func (h *Handler) Prices(c *gin.Context) {
	snap := h.Market.Snapshot()
	prices := make([]priceView, 0, len(snap))
	for _, sym := range h.Market.Symbols() {
		inst, _ := h.Market.Instrument(sym)
		prices = append(prices, priceView{Symbol: sym, Company: inst.Company, Color: inst.Color, Price: snap[sym]})
	}
	c.JSON(http.StatusOK, gin.H{"prices": prices, "events": h.Market.RecentEvents(recentEventCount)})
}
