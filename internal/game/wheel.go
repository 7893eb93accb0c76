package game

import (
	"kodbank/internal/domain"
	"kodbank/internal/rng"
)

// WheelSegment is one slice of the reward wheel. Value is drawn uniformly
// from [Min, Max]; flat prizes have Min == Max.
type WheelSegment struct {
	ID    int               `json:"id"`
	Kind  domain.RewardKind `json:"kind"`
	Label string            `json:"label"`
	Min   int               `json:"min"`
	Max   int               `json:"max"`
	Color string            `json:"color"`
}

// SpinOutcome is the drawn segment with its concrete value.
type SpinOutcome struct {
	Index int               `json:"index"`
	Kind  domain.RewardKind `json:"type"`
	Label string            `json:"label"`
	Value int               `json:"value"`
}

// DefaultWheelSegments returns the six equally likely wheel slices.
func DefaultWheelSegments() []WheelSegment {
	return []WheelSegment{
		{ID: 1, Kind: domain.RewardCash, Label: "Upto $50", Min: 1, Max: 50, Color: "#00ffa3"},
		{ID: 2, Kind: domain.RewardCash, Label: "Flat $33", Min: 33, Max: 33, Color: "#ff007f"},
		{ID: 3, Kind: domain.RewardCoins, Label: "Upto 5k Coins", Min: 3500, Max: 5000, Color: "#ffd700"},
		{ID: 4, Kind: domain.RewardCoins, Label: "Flat 15k Coins", Min: 15000, Max: 15000, Color: "#bc13fe"},
		{ID: 5, Kind: domain.RewardCoins, Label: "Flat 3k Coins", Min: 3000, Max: 3000, Color: "#00a4ef"},
		{ID: 6, Kind: domain.RewardLoss, Label: "Better Luck", Min: 0, Max: 0, Color: "#4a4a4a"},
	}
}

type Wheel struct {
	Segments []WheelSegment
	rnd      rng.Source
}

func NewWheel(src rng.Source) *Wheel {
	if src == nil {
		src = rng.Default()
	}
	return &Wheel{Segments: DefaultWheelSegments(), rnd: src}
}

// Spin picks a segment uniformly; the table itself is the whole distribution.
func (w *Wheel) Spin() SpinOutcome {
	i := w.rnd.IntN(len(w.Segments))
	seg := w.Segments[i]
	return SpinOutcome{
		Index: i,
		Kind:  seg.Kind,
		Label: seg.Label,
		Value: rng.Between(w.rnd, seg.Min, seg.Max),
	}
}

// ExpectedValue returns the mean cash and coin payout per spin.
func (w *Wheel) ExpectedValue() (cash, coins float64) {
	n := float64(len(w.Segments))
	for _, seg := range w.Segments {
		mean := float64(seg.Min+seg.Max) / 2
		switch seg.Kind {
		case domain.RewardCash:
			cash += mean / n
		case domain.RewardCoins:
			coins += mean / n
		}
	}
	return cash, coins
}
