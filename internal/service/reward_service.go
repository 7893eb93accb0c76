package service

import (
	"context"
	"time"

	"kodbank/internal/domain"
	"kodbank/internal/game"
	"kodbank/internal/logger"
	"kodbank/internal/metrics"
	"kodbank/internal/repository"
)

// History labels used by the reward views.
const (
	historyCash  = "Cash"
	historyBonus = "Bonus"
	historyLoss  = "Loss"
	statusWon    = "Won"
)

type SpinResult struct {
	Outcome     game.SpinOutcome `json:"result"`
	Coins       float64          `json:"coins"`
	CashbackWon float64          `json:"cashback_won"`
	SpinsLeft   int              `json:"spins_left"`
}

type RedeemResult struct {
	Balance        float64 `json:"balance"`
	CashbackWon    float64 `json:"cashback_won"`
	RedeemedAmount float64 `json:"redeemed_amount"`
}

type ClaimResult struct {
	Reward      domain.RewardRecord `json:"reward"`
	Coins       float64             `json:"coins"`
	CashbackWon float64             `json:"cashback_won"`
}

// RewardService runs the spin wheel, scratch reward replenishment and
// cashback redemption.
type RewardService struct {
	store repository.Store
	wheel *game.Wheel
	bonus *game.BonusDropper
	now   func() time.Time
}

func NewRewardService(store repository.Store, wheel *game.Wheel, bonus *game.BonusDropper) *RewardService {
	if wheel == nil {
		wheel = game.NewWheel(nil)
	}
	if bonus == nil {
		bonus = game.NewBonusDropper(nil)
	}
	return &RewardService{store: store, wheel: wheel, bonus: bonus, now: time.Now}
}

func (s *RewardService) Wheel() []game.WheelSegment {
	return s.wheel.Segments
}

// ExpectedValue is the mean cash and coin payout of one spin.
func (s *RewardService) ExpectedValue() (cash, coins float64) {
	return s.wheel.ExpectedValue()
}

// Spin charges SpinCost coins and applies one wheel outcome. The window limit
// is checked before the coin balance.
func (s *RewardService) Spin(ctx context.Context, userID int64) (*SpinResult, error) {
	now := s.now()
	var out game.SpinOutcome
	u, err := s.store.UpdateUser(ctx, userID, func(w *domain.User) error {
		w.Spin.Roll(now)
		if w.Spin.SpinsInWindow >= domain.MaxSpinsPerWindow {
			return ErrSpinLimitExceeded
		}
		if w.Coins < domain.SpinCost {
			return ErrInsufficientCoins
		}
		w.Coins -= domain.SpinCost
		w.Spin.SpinsInWindow++

		out = s.wheel.Spin()
		applySpin(w, out, now)
		return nil
	})
	if err != nil {
		metrics.RewardSpins.WithLabelValues("rejected").Inc()
		return nil, storeErr(err)
	}
	metrics.RewardSpins.WithLabelValues(string(out.Kind)).Inc()
	logger.Debug("spin", "user_id", userID, "segment", out.Label, "value", out.Value)

	return &SpinResult{
		Outcome:     out,
		Coins:       u.Coins,
		CashbackWon: u.CashbackWon,
		SpinsLeft:   u.Spin.SpinsLeft(now),
	}, nil
}

func applySpin(w *domain.User, out game.SpinOutcome, now time.Time) {
	value := float64(out.Value)
	switch out.Kind {
	case domain.RewardCash:
		w.CashbackWon = domain.AddMoney(w.CashbackWon, value)
		w.RewardsHistory = prepend(w.RewardsHistory, domain.RewardRecord{
			ID: domain.NewID("R"), Type: historyCash, Label: out.Label, Amount: value, Date: now, Status: statusWon,
		})
		if out.Value > 0 {
			w.Record(domain.NewTransaction(domain.NewID("T"), domain.TxIncoming, domain.CategorySpinReward,
				value, "Spin Result: "+out.Label, now))
		}
	case domain.RewardCoins:
		w.Coins += value
		w.CoinHistory = prepend(w.CoinHistory, domain.RewardRecord{
			ID: domain.NewID("R"), Type: historyBonus, Label: out.Label, Amount: value, Date: now,
		})
	default:
		w.CoinHistory = prepend(w.CoinHistory, domain.RewardRecord{
			ID: domain.NewID("R"), Type: historyLoss, Label: out.Label, Amount: 0, Date: now,
		})
	}
}

func prepend(list []domain.RewardRecord, r domain.RewardRecord) []domain.RewardRecord {
	return append([]domain.RewardRecord{r}, list...)
}

// Redeem moves cashback into the spendable balance.
func (s *RewardService) Redeem(ctx context.Context, userID int64, amount float64) (*RedeemResult, error) {
	if !domain.ValidAmount(amount) {
		return nil, ErrInvalidAmount
	}
	amount = domain.Round2(amount)
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	now := s.now()
	u, err := s.store.UpdateUser(ctx, userID, func(w *domain.User) error {
		if amount > w.CashbackWon {
			return ErrInsufficientRewardBalance
		}
		w.Balance = domain.AddMoney(w.Balance, amount)
		w.CashbackWon = domain.SubMoney(w.CashbackWon, amount)
		w.RedeemedAmount = domain.AddMoney(w.RedeemedAmount, amount)
		w.Record(domain.NewTransaction(domain.NewID("T"), domain.TxIncoming, domain.CategoryRewardsRedeemed,
			amount, "Cashback redeemed to balance", now))
		return nil
	})
	metrics.LedgerOps.WithLabelValues("redeem", metrics.Result(err)).Inc()
	if err != nil {
		return nil, storeErr(err)
	}
	return &RedeemResult{Balance: u.Balance, CashbackWon: u.CashbackWon, RedeemedAmount: u.RedeemedAmount}, nil
}

// Claim scratches one available reward into the cashback pool or coins.
func (s *RewardService) Claim(ctx context.Context, userID int64, rewardID string) (*ClaimResult, error) {
	if rewardID == "" {
		return nil, ErrMissingFields
	}
	now := s.now()
	var claimed domain.RewardRecord
	u, err := s.store.UpdateUser(ctx, userID, func(w *domain.User) error {
		r, ok := w.TakeAvailable(rewardID)
		if !ok {
			return ErrRewardNotFound
		}
		claimed = r
		switch domain.RewardKind(r.Type) {
		case domain.RewardCash:
			w.CashbackWon = domain.AddMoney(w.CashbackWon, r.Amount)
			w.RewardsHistory = prepend(w.RewardsHistory, domain.RewardRecord{
				ID: r.ID, Type: historyCash, Label: r.Label, Amount: r.Amount, Date: now, Status: statusWon,
			})
		default:
			w.Coins += r.Amount
			w.CoinHistory = prepend(w.CoinHistory, domain.RewardRecord{
				ID: r.ID, Type: historyBonus, Label: r.Label, Amount: r.Amount, Date: now,
			})
		}
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return &ClaimResult{Reward: claimed, Coins: u.Coins, CashbackWon: u.CashbackWon}, nil
}

// Replenish runs one lazy replenishment cycle and returns the current user.
func (s *RewardService) Replenish(ctx context.Context, userID int64) (*domain.User, error) {
	now := s.now()
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, storeErr(err)
	}
	if !game.ReplenishDue(u, now) {
		return u, nil
	}
	u, err = s.store.UpdateUser(ctx, userID, func(w *domain.User) error {
		s.bonus.Replenish(w, now)
		return nil
	})
	return u, storeErr(err)
}
