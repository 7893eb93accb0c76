package domain

import (
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TxIncoming   TransactionType = "incoming"
	TxOutgoing   TransactionType = "outgoing"
	TxInvestment TransactionType = "investment"
)

// Transaction categories shown in the history view.
const (
	CategoryFundTransfer     = "Fund Transfer"
	CategoryAssetPurchase    = "Asset Purchase"
	CategoryAssetLiquidation = "Asset Liquidation"
	CategorySpinReward       = "Spin Reward"
	CategoryRewardsRedeemed  = "Rewards Redeemed"
	CategoryLoanDisbursement = "Loan Disbursement"
)

const StatusCompleted = "Completed"

// Transaction is an append-only audit entry. It never changes once recorded.
type Transaction struct {
	ID       string          `json:"id"`
	Type     TransactionType `json:"type"`
	Category string          `json:"category"`
	Amount   float64         `json:"amount"`
	Date     time.Time       `json:"date"`
	Status   string          `json:"status"`
	Note     string          `json:"note,omitempty"`
}

// NewID returns a prefixed unique identifier, e.g. "TX-6f1c...".
func NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

func NewTransaction(id string, typ TransactionType, category string, amount float64, note string, now time.Time) Transaction {
	return Transaction{
		ID:       id,
		Type:     typ,
		Category: category,
		Amount:   Round2(amount),
		Date:     now,
		Status:   StatusCompleted,
		Note:     note,
	}
}
