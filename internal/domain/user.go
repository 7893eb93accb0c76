package domain

import (
	"slices"
	"time"
)

// Baseline values granted at registration.
const (
	InitialBalance = 50000
	InitialCoins   = 77777
)

// MaxTransactionHistory bounds the transaction log kept on a user.
const MaxTransactionHistory = 100

type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Phone        string     `json:"phone,omitempty"`
	MPINHash     string     `json:"-"`
	Active       bool       `json:"active"`
	OTP          string     `json:"-"`
	LoginTime    *time.Time `json:"login_time,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`

	// Live scalars. They are authoritative and never rebuilt from history.
	Balance        float64 `json:"balance"`
	Coins          float64 `json:"coins"`
	CashbackWon    float64 `json:"cashback_won"`
	RedeemedAmount float64 `json:"redeemed_amount"`

	Spin              SpinState `json:"spin"`
	LastReplenishment time.Time `json:"last_replenishment"`

	Holdings         []Holding      `json:"holdings"`
	Transactions     []Transaction  `json:"transactions"` // newest first
	RewardsHistory   []RewardRecord `json:"rewards_history"`
	CoinHistory      []RewardRecord `json:"coin_history"`
	AvailableRewards []RewardRecord `json:"available_rewards"`
}

// Contact is the public projection used for transfer recipient discovery.
type Contact struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
}

// NewUser returns an inactive user carrying the registration baseline.
func NewUser(username, email, passwordHash, phone, otp string, now time.Time) *User {
	return &User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Phone:        phone,
		OTP:          otp,
		CreatedAt:    now,
		Balance:      InitialBalance,
		Coins:        InitialCoins,
		Holdings:     SeedHoldings(),
	}
}

func (u *User) Contact() Contact {
	return Contact{Username: u.Username, Email: u.Email, Phone: u.Phone}
}

func (u *User) HasMPIN() bool { return u.MPINHash != "" }

// Record prepends an immutable transaction to the log, keeping the most
// recent MaxTransactionHistory entries.
func (u *User) Record(tx Transaction) {
	u.Transactions = slices.Insert(u.Transactions, 0, tx)
	if len(u.Transactions) > MaxTransactionHistory {
		u.Transactions = slices.Clip(u.Transactions[:MaxTransactionHistory])
	}
}

// Clone returns a deep copy. Stores hand out clones so callers never share
// mutable state with the persisted aggregate.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.LoginTime != nil {
		t := *u.LoginTime
		c.LoginTime = &t
	}
	c.Holdings = slices.Clone(u.Holdings)
	c.Transactions = slices.Clone(u.Transactions)
	c.RewardsHistory = slices.Clone(u.RewardsHistory)
	c.CoinHistory = slices.Clone(u.CoinHistory)
	c.AvailableRewards = slices.Clone(u.AvailableRewards)
	return &c
}
