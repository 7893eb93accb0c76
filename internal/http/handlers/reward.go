package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type redeemRequest struct {
	Amount float64 `json:"amount"`
}

type claimRequest struct {
	ID string `json:"id"`
}

func (h *Handler) Spin(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	res, err := h.Rewards.Spin(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"result":       res.Outcome,
		"coins":        res.Coins,
		"cashback_won": res.CashbackWon,
		"spins_left":   res.SpinsLeft,
	})
}

func (h *Handler) Redeem(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var req redeemRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Rewards.Redeem(c.Request.Context(), uid, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"balance":         res.Balance,
		"cashback_won":    res.CashbackWon,
		"redeemed_amount": res.RedeemedAmount,
	})
}

func (h *Handler) Claim(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var req claimRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Rewards.Claim(c.Request.Context(), uid, req.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "reward": res.Reward, "coins": res.Coins, "cashback_won": res.CashbackWon})
}

// WheelInfo lists the wheel segments so the client can draw them.
func (h *Handler) WheelInfo(c *gin.Context) {
	cash, coins := h.Rewards.ExpectedValue()
	c.JSON(http.StatusOK, gin.H{
		"segments":       h.Rewards.Wheel(),
		"expected_cash":  cash,
		"expected_coins": coins,
	})
}
