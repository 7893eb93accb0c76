package domain

// Loan is an offer from the static loan catalog.
type Loan struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Provider  string  `json:"provider"`
	MaxAmount float64 `json:"max_amount"`
	Interest  string  `json:"interest"`
	Type      string  `json:"type"`
}

func LoanCatalog() []Loan {
	return []Loan{
		{ID: "L1", Title: "Personal Luxury Loan", Provider: "Global Prime", MaxAmount: 50000, Interest: "8.5%", Type: "unsecured"},
		{ID: "L2", Title: "Home Protocol Loan", Provider: "Estate Core", MaxAmount: 500000, Interest: "6.2%", Type: "mortgage"},
		{ID: "L3", Title: "Venture Capital Line", Provider: "Innovation Fund", MaxAmount: 100000, Interest: "12%", Type: "business"},
	}
}

// FindLoan returns the catalog entry for id.
func FindLoan(id string) (Loan, bool) {
	for _, l := range LoanCatalog() {
		if l.ID == id {
			return l, true
		}
	}
	return Loan{}, false
}
