package handlers

import (
	"context"
	"net/http"

	"kodbank/internal/service"

	"github.com/gin-gonic/gin"
)

type tradeRequest struct {
	Symbol string `json:"symbol"`
	Shares int64  `json:"shares"`
}

type loanRequest struct {
	LoanID string  `json:"loanId"`
	Amount float64 `json:"amount"`
}

func (h *Handler) Transfer(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var req service.TransferInput
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Ledger.Transfer(c.Request.Context(), uid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "balance": res.Balance, "transaction_id": res.TransactionID})
}

func (h *Handler) Buy(c *gin.Context) {
	h.trade(c, h.Ledger.Buy)
}

func (h *Handler) Sell(c *gin.Context) {
	h.trade(c, h.Ledger.Sell)
}

type tradeFunc func(ctx context.Context, userID int64, symbol string, shares int64) (*service.TradeResult, error)

func (h *Handler) trade(c *gin.Context, fn tradeFunc) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var req tradeRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := fn(c.Request.Context(), uid, req.Symbol, req.Shares)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"balance":        res.Balance,
		"price":          res.Price,
		"amount":         res.Amount,
		"holding":        res.Holding,
		"transaction_id": res.TransactionID,
	})
}

func (h *Handler) ApplyLoan(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var req loanRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Ledger.ApplyLoan(c.Request.Context(), uid, req.LoanID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "balance": res.Balance, "transaction_id": res.TransactionID})
}
