package service

import (
	"context"

	"kodbank/internal/domain"
)

// LoanPolicy decides whether a disbursement may go ahead.
type LoanPolicy interface {
	Approve(ctx context.Context, u *domain.User, loan domain.Loan, amount float64) error
}

// UnconditionalPolicy approves every application.
type UnconditionalPolicy struct{}

func (UnconditionalPolicy) Approve(context.Context, *domain.User, domain.Loan, float64) error {
	return nil
}

// CatalogLimitPolicy declines amounts above the product's advertised maximum.
type CatalogLimitPolicy struct{}

func (CatalogLimitPolicy) Approve(_ context.Context, _ *domain.User, loan domain.Loan, amount float64) error {
	if amount > loan.MaxAmount {
		return ErrLoanDeclined
	}
	return nil
}
