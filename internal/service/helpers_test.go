package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"kodbank/internal/domain"
	"kodbank/internal/game"
	"kodbank/internal/market"
	"kodbank/internal/repository"
	"kodbank/internal/rng"

	"golang.org/x/crypto/bcrypt"
)

var testNow = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type testEnv struct {
	store   *repository.MemoryStore
	market  *market.Simulator
	clock   *clock
	wheel   *rng.Scripted
	rewards *RewardService
	ledger  *LedgerService
}

// newTestEnv wires services over a memory store. Prices stay at their
// opening values because the simulator is never ticked.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	clk := &clock{t: testNow}
	store := repository.NewMemoryStore()
	sim := market.NewSimulator(market.SimulatorConfig{}, rng.Default())

	// wheel lands on "Better Luck" unless a test scripts otherwise
	wheelRnd := rng.NewScripted(nil, nil)
	wheelRnd.IntDefault = 5
	rewards := NewRewardService(store, game.NewWheel(wheelRnd), game.NewBonusDropper(rng.Default()))
	rewards.now = clk.Now
	ledger := NewLedgerService(store, sim, nil)
	ledger.now = clk.Now

	return &testEnv{store: store, market: sim, clock: clk, wheel: wheelRnd, rewards: rewards, ledger: ledger}
}

func (e *testEnv) user(t *testing.T, name string) *domain.User {
	t.Helper()
	u := domain.NewUser(name, name+"@kod.test", "x", "", "", testNow)
	u.Active = true
	created, err := e.store.CreateUser(context.Background(), u)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return created
}

func (e *testEnv) get(t *testing.T, id int64) *domain.User {
	t.Helper()
	u, err := e.store.GetUser(context.Background(), id)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	return u
}

func (e *testEnv) mutate(t *testing.T, id int64, fn func(u *domain.User)) {
	t.Helper()
	if _, err := e.store.UpdateUser(context.Background(), id, func(u *domain.User) error {
		fn(u)
		return nil
	}); err != nil {
		t.Fatalf("mutate user: %v", err)
	}
}

type recordingSender struct {
	mu    sync.Mutex
	codes map[string]string
}

func (r *recordingSender) SendOTP(_ context.Context, email, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.codes == nil {
		r.codes = map[string]string{}
	}
	r.codes[email] = code
	return nil
}

func (r *recordingSender) code(email string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.codes[email]
}

type memRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func (m *memRevocations) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.revoked == nil {
		m.revoked = map[string]time.Duration{}
	}
	m.revoked[jti] = ttl
	return nil
}

func (m *memRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[jti]
	return ok, nil
}

func newTestAuth(store repository.Store, clk *clock) (*AuthService, *SessionManager, *recordingSender) {
	sessions := NewSessionManager("test-secret", time.Hour, &memRevocations{})
	sessions.now = clk.Now
	sender := &recordingSender{}
	auth := NewAuthService(store, sessions, sender)
	auth.now = clk.Now
	auth.hashCost = bcrypt.MinCost
	return auth, sessions, sender
}
