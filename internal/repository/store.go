package repository

import (
	"context"
	"errors"

	"kodbank/internal/domain"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
	ErrSameUser  = errors.New("pair update needs two distinct users")
	// ErrUnavailable wraps every storage failure that is not a domain outcome.
	ErrUnavailable = errors.New("storage unavailable")
)

// TransactionHistoryLimit bounds how many transactions are loaded with a user.
const TransactionHistoryLimit = domain.MaxTransactionHistory

// Store persists user aggregates. Every mutation goes through UpdateUser or
// UpdatePair, which serialize writers per user and commit all-or-nothing:
// when fn returns an error nothing is written and the error is returned as is.
type Store interface {
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, u *domain.User) (*domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	// FindByIdentifier matches a username or an email address exactly.
	FindByIdentifier(ctx context.Context, ident string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)

	ListActive(ctx context.Context, excludeID int64, limit int) ([]domain.Contact, error)
	// SearchActive returns active users whose username or email contains query.
	SearchActive(ctx context.Context, query string, limit int) ([]domain.Contact, error)

	UpdateUser(ctx context.Context, id int64, fn func(u *domain.User) error) (*domain.User, error)
	// UpdatePair locks both users in id order and applies fn atomically.
	UpdatePair(ctx context.Context, aID, bID int64, fn func(a, b *domain.User) error) error
}
