package domain

import "time"

// Spin rules.
const (
	SpinCost          = 3000
	MaxSpinsPerWindow = 5
	SpinWindow        = 24 * time.Hour
)

// Replenishment rules for scratch rewards.
const (
	ReplenishInterval   = 3 * time.Minute
	MaxAvailableRewards = 3
)

type RewardKind string

const (
	RewardCash  RewardKind = "cash"
	RewardCoins RewardKind = "coins"
	RewardLoss  RewardKind = "loss"
)

// RewardRecord is an entry in the cash-reward, coin or available-reward lists.
type RewardRecord struct {
	ID     string    `json:"id"`
	Type   string    `json:"type"`
	Label  string    `json:"label"`
	Amount float64   `json:"amount"`
	Date   time.Time `json:"date"`
	Status string    `json:"status,omitempty"`
	Icon   string    `json:"icon,omitempty"`
}

// SpinState is a fixed 24h window that opens on the first spin after the
// previous window expired.
type SpinState struct {
	SpinsInWindow int       `json:"spins_in_window"`
	WindowStart   time.Time `json:"window_start"`
}

func (s SpinState) expired(now time.Time) bool {
	return now.Sub(s.WindowStart) > SpinWindow
}

// Used returns the spins consumed in the window active at now.
func (s SpinState) Used(now time.Time) int {
	if s.expired(now) {
		return 0
	}
	return s.SpinsInWindow
}

// SpinsLeft is what the dashboard reports; it never mutates state.
func (s SpinState) SpinsLeft(now time.Time) int {
	return MaxSpinsPerWindow - s.Used(now)
}

// Roll opens a new window when the current one has expired.
func (s *SpinState) Roll(now time.Time) {
	if s.expired(now) {
		s.WindowStart = now
		s.SpinsInWindow = 0
	}
}

// PushAvailable appends rewards and keeps only the most recent ones.
func (u *User) PushAvailable(rewards ...RewardRecord) {
	u.AvailableRewards = append(u.AvailableRewards, rewards...)
	if n := len(u.AvailableRewards); n > MaxAvailableRewards {
		u.AvailableRewards = append([]RewardRecord(nil), u.AvailableRewards[n-MaxAvailableRewards:]...)
	}
}

// TakeAvailable removes and returns the available reward with id.
func (u *User) TakeAvailable(id string) (RewardRecord, bool) {
	for i, r := range u.AvailableRewards {
		if r.ID == id {
			u.AvailableRewards = append(u.AvailableRewards[:i], u.AvailableRewards[i+1:]...)
			return r, true
		}
	}
	return RewardRecord{}, false
}
