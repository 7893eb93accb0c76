package game

import (
	"time"

	"kodbank/internal/domain"
	"kodbank/internal/rng"
)

// BonusCatalogEntry is a scratch reward that replenishment can hand out.
type BonusCatalogEntry struct {
	Kind  domain.RewardKind
	Label string
	Icon  string
	Min   int
	Max   int
}

func DefaultBonusCatalog() []BonusCatalogEntry {
	return []BonusCatalogEntry{
		{Kind: domain.RewardCash, Label: "Cashback Win", Icon: "💰", Min: 1, Max: 20},
		{Kind: domain.RewardCoins, Label: "Coin Bonus", Icon: "🪙", Min: 100, Max: 599},
	}
}

// DropCount maps a uniform draw to the number of rewards granted:
// 20% three, 30% two, 30% one, 20% none.
func DropCount(u float64) int {
	switch {
	case u < 0.20:
		return 3
	case u < 0.50:
		return 2
	case u < 0.80:
		return 1
	default:
		return 0
	}
}

type BonusDropper struct {
	Catalog []BonusCatalogEntry
	rnd     rng.Source
}

func NewBonusDropper(src rng.Source) *BonusDropper {
	if src == nil {
		src = rng.Default()
	}
	return &BonusDropper{Catalog: DefaultBonusCatalog(), rnd: src}
}

// Draw returns the rewards granted by one replenishment cycle.
func (d *BonusDropper) Draw(now time.Time) []domain.RewardRecord {
	n := DropCount(d.rnd.Float64())
	out := make([]domain.RewardRecord, 0, n)
	for i := 0; i < n; i++ {
		e := d.Catalog[d.rnd.IntN(len(d.Catalog))]
		out = append(out, domain.RewardRecord{
			ID:     domain.NewID("R"),
			Type:   string(e.Kind),
			Label:  e.Label,
			Amount: float64(rng.Between(d.rnd, e.Min, e.Max)),
			Date:   now,
			Icon:   e.Icon,
		})
	}
	return out
}

// ReplenishDue reports whether a replenishment cycle may run at now.
func ReplenishDue(u *domain.User, now time.Time) bool {
	return u.LastReplenishment.IsZero() || now.Sub(u.LastReplenishment) > domain.ReplenishInterval
}

// Replenish grants a new batch when the interval since the last cycle has
// elapsed. Missed intervals are not back-filled. It reports whether u changed.
func (d *BonusDropper) Replenish(u *domain.User, now time.Time) bool {
	if !ReplenishDue(u, now) {
		return false
	}
	if granted := d.Draw(now); len(granted) > 0 {
		u.PushAvailable(granted...)
	}
	u.LastReplenishment = now
	return true
}
