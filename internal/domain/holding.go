package domain

import "time"

const DateLayout = "2006-01-02"

// Holding is a position in one symbol tracked at weighted-average cost.
type Holding struct {
	Company        string  `json:"company"`
	Symbol         string  `json:"symbol"`
	BoughtPrice    float64 `json:"bought_price"`
	Shares         int64   `json:"shares"`
	InvestedDate   string  `json:"invested_date"`
	InvestedAmount float64 `json:"invested_amount"`
}

// HoldingIndex returns the index of symbol in u.Holdings or -1.
func (u *User) HoldingIndex(symbol string) int {
	for i := range u.Holdings {
		if u.Holdings[i].Symbol == symbol {
			return i
		}
	}
	return -1
}

// AddShares merges a purchase into the position, creating it if needed.
// The caller has already debited cost from the balance.
func (u *User) AddShares(company, symbol string, shares int64, price, cost float64, now time.Time) Holding {
	if i := u.HoldingIndex(symbol); i >= 0 {
		h := &u.Holdings[i]
		total := h.BoughtPrice*float64(h.Shares) + cost
		h.Shares += shares
		h.BoughtPrice = total / float64(h.Shares)
		h.InvestedAmount = AddMoney(h.InvestedAmount, cost)
		return *h
	}
	h := Holding{
		Company:        company,
		Symbol:         symbol,
		BoughtPrice:    price,
		Shares:         shares,
		InvestedDate:   now.Format(DateLayout),
		InvestedAmount: cost,
	}
	u.Holdings = append(u.Holdings, h)
	return h
}

// RemoveShares takes shares out of the position at index i, reducing the
// cost basis by BoughtPrice per share. The position is dropped at zero.
func (u *User) RemoveShares(i int, shares int64) (Holding, bool) {
	h := &u.Holdings[i]
	h.Shares -= shares
	h.InvestedAmount = SubMoney(h.InvestedAmount, h.BoughtPrice*float64(shares))
	if h.Shares == 0 {
		removed := *h
		u.Holdings = append(u.Holdings[:i], u.Holdings[i+1:]...)
		return removed, true
	}
	return *h, false
}

// SeedHoldings is the demo portfolio every new account starts with.
func SeedHoldings() []Holding {
	return []Holding{
		{Company: "Apple Inc.", Symbol: "AAPL", BoughtPrice: 150.20, Shares: 50, InvestedDate: "2023-11-12", InvestedAmount: 7510},
		{Company: "Google", Symbol: "GOOGL", BoughtPrice: 2800.50, Shares: 2, InvestedDate: "2024-01-05", InvestedAmount: 5601},
		{Company: "Tesla", Symbol: "TSLA", BoughtPrice: 800.00, Shares: 10, InvestedDate: "2023-12-20", InvestedAmount: 8000},
		{Company: "Microsoft", Symbol: "MSFT", BoughtPrice: 300.00, Shares: 25, InvestedDate: "2023-10-15", InvestedAmount: 7500},
		{Company: "NVIDIA", Symbol: "NVDA", BoughtPrice: 400.00, Shares: 15, InvestedDate: "2024-01-10", InvestedAmount: 6000},
		{Company: "Amazon", Symbol: "AMZN", BoughtPrice: 140.00, Shares: 40, InvestedDate: "2023-09-05", InvestedAmount: 5600},
		{Company: "Meta", Symbol: "META", BoughtPrice: 350.00, Shares: 12, InvestedDate: "2023-08-20", InvestedAmount: 4200},
		{Company: "Netflix", Symbol: "NFLX", BoughtPrice: 500.00, Shares: 8, InvestedDate: "2023-07-15", InvestedAmount: 4000},
		{Company: "Intel", Symbol: "INTC", BoughtPrice: 55.00, Shares: 100, InvestedDate: "2023-06-10", InvestedAmount: 5500},
		{Company: "AMD", Symbol: "AMD", BoughtPrice: 120.00, Shares: 50, InvestedDate: "2023-04-20", InvestedAmount: 6000},
	}
}
