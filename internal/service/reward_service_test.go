package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"kodbank/internal/domain"
)

func TestSpinLimitPerWindow(t *testing.T) {
	env := newTestEnv(t)
	u := env.user(t, "alice")
	ctx := context.Background()

	for i := 1; i <= domain.MaxSpinsPerWindow; i++ {
		res, err := env.rewards.Spin(ctx, u.ID)
		if err != nil {
			t.Fatalf("spin %d: %v", i, err)
		}
		if res.SpinsLeft != domain.MaxSpinsPerWindow-i {
			t.Fatalf("spin %d: spins left = %d", i, res.SpinsLeft)
		}
	}

	if _, err := env.rewards.Spin(ctx, u.ID); !errors.Is(err, ErrSpinLimitExceeded) {
		t.Fatalf("6th spin err = %v; want ErrSpinLimitExceeded", err)
	}
	got := env.get(t, u.ID)
	if want := float64(domain.InitialCoins - 5*domain.SpinCost); got.Coins != want {
		t.Fatalf("coins = %v; want %v (rejected spin must not charge)", got.Coins, want)
	}
}

func TestSpinWindowResetsAfter24Hours(t *testing.T) {
	env := newTestEnv(t)
	u := env.user(t, "alice")
	ctx := context.Background()

	for i := 0; i < domain.MaxSpinsPerWindow; i++ {
		if _, err := env.rewards.Spin(ctx, u.ID); err != nil {
			t.Fatalf("spin: %v", err)
		}
	}

	env.clock.Advance(domain.SpinWindow)
	if _, err := env.rewards.Spin(ctx, u.ID); !errors.Is(err, ErrSpinLimitExceeded) {
		t.Fatalf("spin at exactly 24h: err = %v", err)
	}

	env.clock.Advance(time.Second)
	res, err := env.rewards.Spin(ctx, u.ID)
	if err != nil {
		t.Fatalf("spin after window: %v", err)
	}
	if res.SpinsLeft != domain.MaxSpinsPerWindow-1 {
		t.Fatalf("spins left = %d; want %d", res.SpinsLeft, domain.MaxSpinsPerWindow-1)
	}
}

func TestSpinCoinThreshold(t *testing.T) {
	env := newTestEnv(t)
	u := env.user(t, "alice")
	ctx := context.Background()

	env.mutate(t, u.ID, func(w *domain.User) { w.Coins = domain.SpinCost - 1 })
	if _, err := env.rewards.Spin(ctx, u.ID); !errors.Is(err, ErrInsufficientCoins) {
		t.Fatalf("err = %v; want ErrInsufficientCoins", err)
	}
	if got := env.get(t, u.ID); got.Spin.SpinsInWindow != 0 {
		t.Fatalf("rejected spin consumed the window")
	}

	env.mutate(t, u.ID, func(w *domain.User) { w.Coins = domain.SpinCost })
	res, err := env.rewards.Spin(ctx, u.ID)
	if err != nil {
		t.Fatalf("spin with exactly %d coins: %v", domain.SpinCost, err)
	}
	if res.Coins != 0 {
		t.Fatalf("coins = %v; want 0", res.Coins)
	}
	got := env.get(t, u.ID)
	if len(got.CoinHistory) != 1 || got.CoinHistory[0].Type != historyLoss {
		t.Fatalf("loss not recorded: %+v", got.CoinHistory)
	}
}

func TestSpinCheckOrderLimitBeforeCoins(t *testing.T) {
	env := newTestEnv(t)
	u := env.user(t, "alice")
	env.mutate(t, u.ID, func(w *domain.User) {
		w.Coins = 0
		w.Spin = domain.SpinState{SpinsInWindow: domain.MaxSpinsPerWindow, WindowStart: testNow}
	})
	if _, err := env.rewards.Spin(context.Background(), u.ID); !errors.Is(err, ErrSpinLimitExceeded) {
		t.Fatalf("err = %v; want ErrSpinLimitExceeded", err)
	}
}

func TestSpinOutcomes(t *testing.T) {
	cases := []struct {
		name        string
		segment     int
		wantCoins   float64
		wantCash    float64
		wantTx      bool
		historyType string
	}{
		{"flat cash", 1, domain.InitialCoins - domain.SpinCost, 33, true, historyCash},
		{"flat 15k coins", 3, domain.InitialCoins - domain.SpinCost + 15000, 0, false, historyBonus},
		{"flat 3k coins", 4, domain.InitialCoins, 0, false, historyBonus},
		{"better luck", 5, domain.InitialCoins - domain.SpinCost, 0, false, historyLoss},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.wheel.IntDefault = tc.segment
			u := env.user(t, "alice")

			res, err := env.rewards.Spin(context.Background(), u.ID)
			if err != nil {
				t.Fatalf("spin: %v", err)
			}
			if res.Outcome.Index != tc.segment {
				t.Fatalf("segment = %d", res.Outcome.Index)
			}

			got := env.get(t, u.ID)
			if got.Coins != tc.wantCoins || got.CashbackWon != tc.wantCash {
				t.Fatalf("coins=%v cash=%v; want %v %v", got.Coins, got.CashbackWon, tc.wantCoins, tc.wantCash)
			}
			if tc.wantTx {
				if len(got.Transactions) != 1 || got.Transactions[0].Category != domain.CategorySpinReward {
					t.Fatalf("spin reward transaction missing: %+v", got.Transactions)
				}
				if got.RewardsHistory[0].Status != statusWon {
					t.Fatalf("cash history = %+v", got.RewardsHistory[0])
				}
			} else if len(got.Transactions) != 0 {
				t.Fatalf("unexpected transactions: %+v", got.Transactions)
			}
			if tc.historyType != historyCash && got.CoinHistory[0].Type != tc.historyType {
				t.Fatalf("coin history type = %s; want %s", got.CoinHistory[0].Type, tc.historyType)
			}
		})
	}
}

func TestRedeem(t *testing.T) {
	env := newTestEnv(t)
	u := env.user(t, "alice")
	ctx := context.Background()
	env.mutate(t, u.ID, func(w *domain.User) { w.CashbackWon = 33 })

	if _, err := env.rewards.Redeem(ctx, u.ID, 40); !errors.Is(err, ErrInsufficientRewardBalance) {
		t.Fatalf("over-redeem err = %v", err)
	}
	if _, err := env.rewards.Redeem(ctx, u.ID, -1); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("negative redeem err = %v", err)
	}

	res, err := env.rewards.Redeem(ctx, u.ID, 20)
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if res.Balance != domain.InitialBalance+20 || res.CashbackWon != 13 || res.RedeemedAmount != 20 {
		t.Fatalf("result = %+v", res)
	}
	got := env.get(t, u.ID)
	if len(got.Transactions) != 1 || got.Transactions[0].Category != domain.CategoryRewardsRedeemed ||
		got.Transactions[0].Type != domain.TxIncoming {
		t.Fatalf("transactions = %+v", got.Transactions)
	}

	// the full remaining pool can be redeemed
	if _, err := env.rewards.Redeem(ctx, u.ID, 13); err != nil {
		t.Fatalf("redeem remainder: %v", err)
	}
	if got := env.get(t, u.ID); got.CashbackWon != 0 {
		t.Fatalf("cashback = %v; want 0", got.CashbackWon)
	}
}

func TestRedeemRejectsSubCentAmount(t *testing.T) {
	env := newTestEnv(t)
	u := env.user(t, "alice")

	if _, err := env.rewards.Redeem(context.Background(), u.ID, 0.004); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("err = %v; want ErrInvalidAmount", err)
	}
	got := env.get(t, u.ID)
	if got.Balance != domain.InitialBalance || got.RedeemedAmount != 0 || len(got.Transactions) != 0 {
		t.Fatalf("sub-cent redeem recorded: %+v", got.Transactions)
	}
}

func TestClaimAvailableReward(t *testing.T) {
	env := newTestEnv(t)
	u := env.user(t, "alice")
	ctx := context.Background()
	env.mutate(t, u.ID, func(w *domain.User) {
		w.PushAvailable(
			domain.RewardRecord{ID: "R-cash", Type: string(domain.RewardCash), Label: "Cashback Win", Amount: 7},
			domain.RewardRecord{ID: "R-coin", Type: string(domain.RewardCoins), Label: "Coin Bonus", Amount: 250},
		)
	})

	if _, err := env.rewards.Claim(ctx, u.ID, "R-cash"); err != nil {
		t.Fatalf("claim cash: %v", err)
	}
	res, err := env.rewards.Claim(ctx, u.ID, "R-coin")
	if err != nil {
		t.Fatalf("claim coins: %v", err)
	}
	if res.CashbackWon != 7 || res.Coins != domain.InitialCoins+250 {
		t.Fatalf("result = %+v", res)
	}
	if _, err := env.rewards.Claim(ctx, u.ID, "R-cash"); !errors.Is(err, ErrRewardNotFound) {
		t.Fatalf("double claim err = %v", err)
	}
	if got := env.get(t, u.ID); len(got.AvailableRewards) != 0 {
		t.Fatalf("available = %+v", got.AvailableRewards)
	}
}

func TestReplenishOncePerInterval(t *testing.T) {
	env := newTestEnv(t)
	u := env.user(t, "alice")
	ctx := context.Background()

	first, err := env.rewards.Replenish(ctx, u.ID)
	if err != nil {
		t.Fatalf("replenish: %v", err)
	}
	if !first.LastReplenishment.Equal(testNow) {
		t.Fatalf("last replenishment = %v", first.LastReplenishment)
	}

	env.clock.Advance(time.Minute)
	again, _ := env.rewards.Replenish(ctx, u.ID)
	if !again.LastReplenishment.Equal(testNow) || len(again.AvailableRewards) != len(first.AvailableRewards) {
		t.Fatalf("replenished before interval elapsed")
	}

	env.clock.Advance(time.Hour)
	later, _ := env.rewards.Replenish(ctx, u.ID)
	if !later.LastReplenishment.Equal(testNow.Add(61 * time.Minute)) {
		t.Fatalf("replenish did not run after interval")
	}
	if len(later.AvailableRewards) > domain.MaxAvailableRewards {
		t.Fatalf("available rewards over cap: %d", len(later.AvailableRewards))
	}
}
