package domain

import (
	"math"
	"testing"
	"time"
)

func TestAddSharesWeightedAverage(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	u := &User{}

	u.AddShares("Boeing", "BA", 10, 100, MulMoney(100, 10), now)
	h := u.AddShares("Boeing", "BA", 30, 120, MulMoney(120, 30), now)

	want := (100.0*10 + 120.0*30) / 40
	if math.Abs(h.BoughtPrice-want) > 1e-9 {
		t.Fatalf("bought price = %v; want %v", h.BoughtPrice, want)
	}
	if h.Shares != 40 {
		t.Fatalf("shares = %d; want 40", h.Shares)
	}
	if h.InvestedAmount != 4600 {
		t.Fatalf("invested = %v; want 4600", h.InvestedAmount)
	}
	if h.InvestedDate != "2026-10-17" {
		t.Fatalf("invested date = %s", h.InvestedDate)
	}
}

func TestRemoveSharesDropsEmptyPosition(t *testing.T) {
	u := &User{Holdings: []Holding{
		{Symbol: "INTC", BoughtPrice: 55, Shares: 100, InvestedAmount: 5500},
		{Symbol: "AMD", BoughtPrice: 120, Shares: 50, InvestedAmount: 6000},
	}}

	h, removed := u.RemoveShares(0, 40)
	if removed {
		t.Fatalf("position removed after partial sell")
	}
	if h.Shares != 60 || h.InvestedAmount != 3300 {
		t.Fatalf("after partial sell got shares=%d invested=%v", h.Shares, h.InvestedAmount)
	}

	_, removed = u.RemoveShares(0, 60)
	if !removed {
		t.Fatalf("expected position to be removed")
	}
	if len(u.Holdings) != 1 || u.Holdings[0].Symbol != "AMD" {
		t.Fatalf("unexpected holdings: %+v", u.Holdings)
	}
}

func TestMoneyHelpers(t *testing.T) {
	cases := []struct {
		name string
		got  float64
		want float64
	}{
		{"add", AddMoney(0.1, 0.2), 0.3},
		{"sub", SubMoney(50000, 553.2), 49446.8},
		{"mul", MulMoney(184.4, 3), 553.2},
		{"round", Round2(1.005), 1.01},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Fatalf("%s = %v; want %v", tc.name, tc.got, tc.want)
		}
	}

	for _, v := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if ValidAmount(v) {
			t.Fatalf("ValidAmount(%v) = true", v)
		}
	}
}
