package integration

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"kodbank/internal/domain"
	"kodbank/internal/market"
	"kodbank/internal/repository"
	"kodbank/internal/rng"
	"kodbank/internal/service"
)

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s%d", prefix, time.Now().UnixNano())
}

func createPGUser(t *testing.T, store *repository.PgStore, name string) *domain.User {
	t.Helper()
	u := domain.NewUser(name, name+"@example.com", "hash", "+100", "", time.Now().UTC())
	u.Active = true
	created, err := store.CreateUser(context.Background(), u)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return created
}

func TestPgStore_CreateAndLoad(t *testing.T) {
	store := repository.NewPgStore(connectPG(t))
	ctx := context.Background()

	u := createPGUser(t, store, uniqueName("pgload"))
	got, err := store.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Balance != domain.InitialBalance || got.Coins != domain.InitialCoins {
		t.Fatalf("unexpected balances %v / %v", got.Balance, got.Coins)
	}
	if len(got.Holdings) != len(domain.SeedHoldings()) {
		t.Fatalf("holdings not round-tripped: %d", len(got.Holdings))
	}

	dup := domain.NewUser(u.Username, uniqueName("other")+"@example.com", "hash", "", "", time.Now())
	if _, err := store.CreateUser(ctx, dup); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if _, err := store.GetUser(ctx, -1); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPgStore_UpdateRollsBack(t *testing.T) {
	store := repository.NewPgStore(connectPG(t))
	ctx := context.Background()
	u := createPGUser(t, store, uniqueName("pgroll"))

	boom := errors.New("boom")
	_, err := store.UpdateUser(ctx, u.ID, func(u *domain.User) error {
		u.Balance = 1
		u.Record(domain.NewTransaction(domain.NewID("TX"), domain.TxIncoming, "Test", 1, "", time.Now()))
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}
	got, _ := store.GetUser(ctx, u.ID)
	if got.Balance != domain.InitialBalance || len(got.Transactions) != 0 {
		t.Fatalf("failed update leaked: balance=%v txs=%d", got.Balance, len(got.Transactions))
	}
}

func TestPgStore_TransferPersistsBothSides(t *testing.T) {
	store := repository.NewPgStore(connectPG(t))
	ctx := context.Background()
	a := createPGUser(t, store, uniqueName("pgsend"))
	b := createPGUser(t, store, uniqueName("pgrecv"))

	sim := market.NewSimulator(market.SimulatorConfig{}, rng.Default())
	ledger := service.NewLedgerService(store, sim, service.UnconditionalPolicy{})

	res, err := ledger.Transfer(ctx, a.ID, service.TransferInput{Recipient: b.Username, Amount: 250.5, Note: "rent"})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}

	gotA, _ := store.GetUser(ctx, a.ID)
	gotB, _ := store.GetUser(ctx, b.ID)
	if gotA.Balance != 49749.5 || gotB.Balance != 50250.5 {
		t.Fatalf("balances after transfer: %v / %v", gotA.Balance, gotB.Balance)
	}
	if len(gotA.Transactions) != 1 || len(gotB.Transactions) != 1 {
		t.Fatalf("expected one transaction per side, got %d / %d", len(gotA.Transactions), len(gotB.Transactions))
	}
	if gotA.Transactions[0].ID != res.TransactionID || gotB.Transactions[0].ID != res.TransactionID {
		t.Fatalf("both sides must share id %s", res.TransactionID)
	}
	if gotA.Transactions[0].Type != domain.TxOutgoing || gotB.Transactions[0].Type != domain.TxIncoming {
		t.Fatalf("unexpected transaction types")
	}
}
