package domain

import "time"

type MarketEventType string

const (
	EventSurge MarketEventType = "surge"
	EventDip   MarketEventType = "dip"
)

// MarketEvent is a jump recorded by the price simulator.
type MarketEvent struct {
	ID        string          `json:"id"`
	Symbol    string          `json:"symbol"`
	Type      MarketEventType `json:"type"`
	Magnitude float64         `json:"magnitude"` // percent, one decimal
	Time      time.Time       `json:"time"`
}

// PricePoint is one entry of a daily display series.
type PricePoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// HourlyPoint is one entry of an intraday display series.
type HourlyPoint struct {
	Time  string  `json:"time"`
	Value float64 `json:"value"`
}
