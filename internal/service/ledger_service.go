package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"kodbank/internal/domain"
	"kodbank/internal/logger"
	"kodbank/internal/market"
	"kodbank/internal/metrics"
	"kodbank/internal/repository"
)

// Quotes is the market data the ledger and dashboard read.
type Quotes interface {
	market.PriceReader
	Instrument(symbol string) (market.Instrument, bool)
	RecentEvents(n int) []domain.MarketEvent
}

type TransferInput struct {
	Recipient string  `json:"recipient"`
	Amount    float64 `json:"amount"`
	Note      string  `json:"note"`
}

type TransferResult struct {
	Balance       float64 `json:"balance"`
	TransactionID string  `json:"transaction_id"`
}

type TradeResult struct {
	Balance       float64         `json:"balance"`
	Price         float64         `json:"price"`
	Amount        float64         `json:"amount"`
	Holding       *domain.Holding `json:"holding,omitempty"`
	TransactionID string          `json:"transaction_id"`
}

type LoanResult struct {
	Balance       float64 `json:"balance"`
	TransactionID string  `json:"transaction_id"`
}

// LedgerService mutates balances and holdings. Each operation is a single
// store update so concurrent requests for one user never interleave.
type LedgerService struct {
	store  repository.Store
	quotes Quotes
	policy LoanPolicy
	now    func() time.Time
}

func NewLedgerService(store repository.Store, quotes Quotes, policy LoanPolicy) *LedgerService {
	if policy == nil {
		policy = UnconditionalPolicy{}
	}
	return &LedgerService{store: store, quotes: quotes, policy: policy, now: time.Now}
}

func noteOrDefault(note string) string {
	if note = strings.TrimSpace(note); note == "" {
		return "No note"
	}
	return note
}

// Transfer moves money to a user found by username or email. Both sides are
// written in one unit of work and share one transaction id.
func (s *LedgerService) Transfer(ctx context.Context, senderID int64, in TransferInput) (res *TransferResult, err error) {
	defer func() { metrics.LedgerOps.WithLabelValues("transfer", metrics.Result(err)).Inc() }()

	ident := strings.TrimSpace(in.Recipient)
	if ident == "" {
		return nil, ErrRecipientNotFound
	}
	recipient, err := s.store.FindByIdentifier(ctx, ident)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRecipientNotFound
	}
	if err != nil {
		return nil, err
	}
	if recipient.ID == senderID {
		return nil, ErrSelfTransfer
	}
	if !domain.ValidAmount(in.Amount) {
		return nil, ErrInvalidAmount
	}
	amount := domain.Round2(in.Amount)
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	now := s.now()
	txID := domain.NewID("TX")
	note := noteOrDefault(in.Note)
	var balance float64
	err = s.store.UpdatePair(ctx, senderID, recipient.ID, func(from, to *domain.User) error {
		if from.Balance < amount {
			return ErrInsufficientFunds
		}
		from.Balance = domain.SubMoney(from.Balance, amount)
		to.Balance = domain.AddMoney(to.Balance, amount)
		from.Record(domain.NewTransaction(txID, domain.TxOutgoing, domain.CategoryFundTransfer, amount,
			fmt.Sprintf("Sent to %s: %s", to.Username, note), now))
		to.Record(domain.NewTransaction(txID, domain.TxIncoming, domain.CategoryFundTransfer, amount,
			fmt.Sprintf("Received from %s: %s", from.Username, note), now))
		balance = from.Balance
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}
	logger.Info("transfer completed", "tx_id", txID, "from", senderID, "to", recipient.ID, "amount", amount)
	return &TransferResult{Balance: balance, TransactionID: txID}, nil
}

func (s *LedgerService) quote(symbol string) (string, market.Instrument, float64, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	inst, ok := s.quotes.Instrument(symbol)
	if !ok {
		return "", market.Instrument{}, 0, ErrUnknownSymbol
	}
	price, ok := s.quotes.Price(symbol)
	if !ok {
		return "", market.Instrument{}, 0, ErrUnknownSymbol
	}
	return symbol, inst, price, nil
}

// Buy purchases shares at the current simulated price.
func (s *LedgerService) Buy(ctx context.Context, userID int64, symbol string, shares int64) (res *TradeResult, err error) {
	defer func() { metrics.LedgerOps.WithLabelValues("buy", metrics.Result(err)).Inc() }()

	if shares <= 0 {
		return nil, ErrInvalidShares
	}
	symbol, inst, price, err := s.quote(symbol)
	if err != nil {
		return nil, err
	}
	cost := domain.MulMoney(price, shares)
	now := s.now()
	txID := domain.NewID("INV")

	var h domain.Holding
	u, err := s.store.UpdateUser(ctx, userID, func(w *domain.User) error {
		if w.Balance < cost {
			return ErrInsufficientFunds
		}
		w.Balance = domain.SubMoney(w.Balance, cost)
		h = w.AddShares(inst.Company, symbol, shares, price, cost, now)
		w.Record(domain.NewTransaction(txID, domain.TxOutgoing, domain.CategoryAssetPurchase, cost,
			fmt.Sprintf("Purchased %d units of %s at $%.2f", shares, symbol, price), now))
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return &TradeResult{Balance: u.Balance, Price: price, Amount: cost, Holding: &h, TransactionID: txID}, nil
}

// Sell liquidates shares at the current simulated price. Holding is nil in
// the result when the position was closed.
func (s *LedgerService) Sell(ctx context.Context, userID int64, symbol string, shares int64) (res *TradeResult, err error) {
	defer func() { metrics.LedgerOps.WithLabelValues("sell", metrics.Result(err)).Inc() }()

	if shares <= 0 {
		return nil, ErrInvalidShares
	}
	symbol, _, price, err := s.quote(symbol)
	if err != nil {
		return nil, err
	}
	credit := domain.MulMoney(price, shares)
	now := s.now()
	txID := domain.NewID("INV")

	var remaining *domain.Holding
	u, err := s.store.UpdateUser(ctx, userID, func(w *domain.User) error {
		i := w.HoldingIndex(symbol)
		if i < 0 {
			return ErrPositionNotFound
		}
		if w.Holdings[i].Shares < shares {
			return ErrInsufficientShares
		}
		w.Balance = domain.AddMoney(w.Balance, credit)
		h, closed := w.RemoveShares(i, shares)
		remaining = nil
		if !closed {
			remaining = &h
		}
		w.Record(domain.NewTransaction(txID, domain.TxIncoming, domain.CategoryAssetLiquidation, credit,
			fmt.Sprintf("Sold %d units of %s at $%.2f", shares, symbol, price), now))
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return &TradeResult{Balance: u.Balance, Price: price, Amount: credit, Holding: remaining, TransactionID: txID}, nil
}

// ApplyLoan credits a loan from the catalog once the policy approves it.
func (s *LedgerService) ApplyLoan(ctx context.Context, userID int64, loanID string, amount float64) (res *LoanResult, err error) {
	defer func() { metrics.LedgerOps.WithLabelValues("loan", metrics.Result(err)).Inc() }()

	if !domain.ValidAmount(amount) {
		return nil, ErrInvalidAmount
	}
	amount = domain.Round2(amount)
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	loan, ok := domain.FindLoan(strings.TrimSpace(loanID))
	if !ok {
		return nil, ErrUnknownLoan
	}

	now := s.now()
	txID := domain.NewID("L")
	u, err := s.store.UpdateUser(ctx, userID, func(w *domain.User) error {
		if err := s.policy.Approve(ctx, w, loan, amount); err != nil {
			return err
		}
		w.Balance = domain.AddMoney(w.Balance, amount)
		w.Record(domain.NewTransaction(txID, domain.TxIncoming, domain.CategoryLoanDisbursement, amount,
			fmt.Sprintf("Loan %s (%s) disbursed", loan.ID, loan.Title), now))
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return &LoanResult{Balance: u.Balance, TransactionID: txID}, nil
}
