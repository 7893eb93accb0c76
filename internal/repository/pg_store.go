package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"kodbank/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, username, email, password_hash, COALESCE(phone, ''), COALESCE(mpin_hash, ''),
	active, COALESCE(otp, ''), login_time, created_at,
	balance, coins, cashback_won, redeemed_amount,
	spins_in_window, window_start, last_replenishment,
	holdings, rewards_history, coin_history, available_rewards`

// querier is satisfied by both the pool and an open transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgStore struct {
	db *pgxpool.Pool
}

func NewPgStore(db *pgxpool.Pool) *PgStore {
	return &PgStore{db: db}
}

// storageErr keeps domain outcomes and flags everything else as an outage.
func storageErr(op string, err error) error {
	var pgErr *pgconn.PgError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return ErrNotFound
	case errors.As(err, &pgErr) && pgErr.Code == "23505":
		return ErrDuplicate
	case errors.Is(err, context.Canceled):
		return err
	default:
		return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}
}

func (s *PgStore) Ping(ctx context.Context) error {
	return storageErr("ping", s.db.Ping(ctx))
}

func (s *PgStore) CreateUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	holdings, rewards, coinHist, avail, err := marshalLists(u)
	if err != nil {
		return nil, err
	}
	stored := u.Clone()
	err = s.db.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, phone, mpin_hash, active, otp, created_at,
			balance, coins, cashback_won, redeemed_amount, spins_in_window, window_start, last_replenishment,
			holdings, rewards_history, coin_history, available_rewards)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id`,
		u.Username, u.Email, u.PasswordHash, u.Phone, u.MPINHash, u.Active, u.OTP, u.CreatedAt,
		u.Balance, u.Coins, u.CashbackWon, u.RedeemedAmount, u.Spin.SpinsInWindow, u.Spin.WindowStart, u.LastReplenishment,
		holdings, rewards, coinHist, avail,
	).Scan(&stored.ID)
	if err != nil {
		return nil, storageErr("create user", err)
	}
	return stored, nil
}

func (s *PgStore) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.loadUser(ctx, s.db, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (s *PgStore) FindByIdentifier(ctx context.Context, ident string) (*domain.User, error) {
	return s.loadUser(ctx, s.db, `SELECT `+userColumns+` FROM users WHERE username = $1 OR email = $1 LIMIT 1`, ident)
}

func (s *PgStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.loadUser(ctx, s.db, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (s *PgStore) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	return exists, storageErr("username taken", err)
}

func (s *PgStore) ListActive(ctx context.Context, excludeID int64, limit int) ([]domain.Contact, error) {
	rows, err := s.db.Query(ctx, `
		SELECT username, email, COALESCE(phone, '')
		FROM users
		WHERE active AND id <> $1
		ORDER BY id
		LIMIT $2`, excludeID, limit)
	if err != nil {
		return nil, storageErr("list active", err)
	}
	return scanContacts(rows)
}

func (s *PgStore) SearchActive(ctx context.Context, query string, limit int) ([]domain.Contact, error) {
	rows, err := s.db.Query(ctx, `
		SELECT username, email, COALESCE(phone, '')
		FROM users
		WHERE active AND (strpos(username, $1) > 0 OR strpos(email, $1) > 0)
		ORDER BY id
		LIMIT $2`, query, limit)
	if err != nil {
		return nil, storageErr("search active", err)
	}
	return scanContacts(rows)
}

func scanContacts(rows pgx.Rows) ([]domain.Contact, error) {
	defer rows.Close()
	out := []domain.Contact{}
	for rows.Next() {
		var c domain.Contact
		if err := rows.Scan(&c.Username, &c.Email, &c.Phone); err != nil {
			return nil, storageErr("scan contact", err)
		}
		out = append(out, c)
	}
	return out, storageErr("scan contacts", rows.Err())
}

func (s *PgStore) UpdateUser(ctx context.Context, id int64, fn func(u *domain.User) error) (*domain.User, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, storageErr("begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	u, err := s.lockUser(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	known := txIDs(u)
	if err := fn(u); err != nil {
		return nil, err
	}
	if err := s.saveUser(ctx, tx, u, known); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, storageErr("commit", err)
	}
	return u, nil
}

func (s *PgStore) UpdatePair(ctx context.Context, aID, bID int64, fn func(a, b *domain.User) error) error {
	if aID == bID {
		return ErrSameUser
	}
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return storageErr("begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Lock both users (order by ID to prevent deadlocks)
	firstID, secondID := aID, bID
	if firstID > secondID {
		firstID, secondID = secondID, firstID
	}
	first, err := s.lockUser(ctx, tx, firstID)
	if err != nil {
		return err
	}
	second, err := s.lockUser(ctx, tx, secondID)
	if err != nil {
		return err
	}
	a, b := first, second
	if aID != firstID {
		a, b = second, first
	}

	knownA, knownB := txIDs(a), txIDs(b)
	if err := fn(a, b); err != nil {
		return err
	}
	if err := s.saveUser(ctx, tx, a, knownA); err != nil {
		return err
	}
	if err := s.saveUser(ctx, tx, b, knownB); err != nil {
		return err
	}
	return storageErr("commit", tx.Commit(ctx))
}

func (s *PgStore) lockUser(ctx context.Context, tx pgx.Tx, id int64) (*domain.User, error) {
	return s.loadUser(ctx, tx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id)
}

func (s *PgStore) loadUser(ctx context.Context, q querier, sql string, arg any) (*domain.User, error) {
	var (
		u                          domain.User
		loginTime, lastReplenished *time.Time
		holdings, rewards          []byte
		coinHist, avail            []byte
	)
	err := q.QueryRow(ctx, sql, arg).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Phone, &u.MPINHash,
		&u.Active, &u.OTP, &loginTime, &u.CreatedAt,
		&u.Balance, &u.Coins, &u.CashbackWon, &u.RedeemedAmount,
		&u.Spin.SpinsInWindow, &u.Spin.WindowStart, &lastReplenished,
		&holdings, &rewards, &coinHist, &avail,
	)
	if err != nil {
		return nil, storageErr("load user", err)
	}
	u.LoginTime = loginTime
	if lastReplenished != nil {
		u.LastReplenishment = *lastReplenished
	}
	if err := unmarshalLists(&u, holdings, rewards, coinHist, avail); err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, `
		SELECT tx_id, type, category, amount, created_at, status, COALESCE(note, '')
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, u.ID, TransactionHistoryLimit)
	if err != nil {
		return nil, storageErr("load transactions", err)
	}
	defer rows.Close()
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.ID, &t.Type, &t.Category, &t.Amount, &t.Date, &t.Status, &t.Note); err != nil {
			return nil, storageErr("scan transaction", err)
		}
		u.Transactions = append(u.Transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("scan transactions", err)
	}
	return &u, nil
}

func (s *PgStore) saveUser(ctx context.Context, tx pgx.Tx, u *domain.User, known map[string]struct{}) error {
	holdings, rewards, coinHist, avail, err := marshalLists(u)
	if err != nil {
		return err
	}
	var lastReplenished *time.Time
	if !u.LastReplenishment.IsZero() {
		lastReplenished = &u.LastReplenishment
	}
	_, err = tx.Exec(ctx, `
		UPDATE users SET
			phone = $2, mpin_hash = $3, active = $4, otp = $5, login_time = $6,
			balance = $7, coins = $8, cashback_won = $9, redeemed_amount = $10,
			spins_in_window = $11, window_start = $12, last_replenishment = $13,
			holdings = $14, rewards_history = $15, coin_history = $16, available_rewards = $17
		WHERE id = $1`,
		u.ID, u.Phone, u.MPINHash, u.Active, u.OTP, u.LoginTime,
		u.Balance, u.Coins, u.CashbackWon, u.RedeemedAmount,
		u.Spin.SpinsInWindow, u.Spin.WindowStart, lastReplenished,
		holdings, rewards, coinHist, avail,
	)
	if err != nil {
		return storageErr("save user", err)
	}

	// Transactions are append-only; insert the ones fn recorded, oldest first.
	for i := len(u.Transactions) - 1; i >= 0; i-- {
		t := u.Transactions[i]
		if _, ok := known[t.ID]; ok {
			continue
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO transactions (tx_id, user_id, type, category, amount, status, note, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			t.ID, u.ID, t.Type, t.Category, t.Amount, t.Status, t.Note, t.Date,
		)
		if err != nil {
			return storageErr("insert transaction", err)
		}
	}
	return nil
}

func txIDs(u *domain.User) map[string]struct{} {
	ids := make(map[string]struct{}, len(u.Transactions))
	for _, t := range u.Transactions {
		ids[t.ID] = struct{}{}
	}
	return ids
}

func marshalLists(u *domain.User) (holdings, rewards, coinHist, avail []byte, err error) {
	lists := []any{u.Holdings, u.RewardsHistory, u.CoinHistory, u.AvailableRewards}
	out := make([][]byte, len(lists))
	for i, l := range lists {
		if out[i], err = json.Marshal(l); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("marshal user lists: %w", err)
		}
	}
	return out[0], out[1], out[2], out[3], nil
}

func unmarshalLists(u *domain.User, holdings, rewards, coinHist, avail []byte) error {
	targets := []struct {
		raw []byte
		dst any
	}{
		{holdings, &u.Holdings},
		{rewards, &u.RewardsHistory},
		{coinHist, &u.CoinHistory},
		{avail, &u.AvailableRewards},
	}
	for _, t := range targets {
		if len(t.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(t.raw, t.dst); err != nil {
			return fmt.Errorf("unmarshal user lists: %w", err)
		}
	}
	return nil
}
