package market

// Instrument describes a tradable symbol and its opening price.
type Instrument struct {
	Symbol  string
	Company string
	Color   string
	Open    float64
}

// DefaultColor is used for symbols without a brand colour.
const DefaultColor = "#bc13fe"

func DefaultInstruments() []Instrument {
	return []Instrument{
		{Symbol: "AAPL", Company: "Apple Inc.", Color: "#555", Open: 184.40},
		{Symbol: "GOOGL", Company: "Google", Color: "#4285F4", Open: 3450.10},
		{Symbol: "TSLA", Company: "Tesla", Color: "#E81123", Open: 650.20},
		{Symbol: "MSFT", Company: "Microsoft", Color: "#00A4EF", Open: 412.50},
		{Symbol: "NVDA", Company: "NVIDIA", Color: "#76B900", Open: 785.20},
		{Symbol: "AMZN", Company: "Amazon", Color: "#FF9900", Open: 175.40},
		{Symbol: "META", Company: "Meta", Color: "#0668E1", Open: 485.10},
		{Symbol: "NFLX", Company: "Netflix", Color: "#E50914", Open: 605.30},
		{Symbol: "INTC", Company: "Intel", Color: "#0071C5", Open: 42.10},
		{Symbol: "BA", Company: "Boeing", Color: "#0033A1", Open: 185.50},
		{Symbol: "AMD", Company: "AMD", Color: "#ED1C24", Open: 178.20},
		{Symbol: "AVGO", Company: "Broadcom", Color: "#E42831", Open: 1320.40},
	}
}
