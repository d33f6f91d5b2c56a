package store

import (
	"context"

	"storebill/backend/internal/domain"
)

// Repository is the persistence surface for bills, accounts and session
// flags. Implementations are injected so tests can run against the in-memory
// key-value store.
type Repository interface {
	ListBills(ctx context.Context) ([]domain.Bill, error)
	AppendBill(ctx context.Context, bill domain.Bill) (*domain.Bill, error)
	GetBill(ctx context.Context, index int) (*domain.Bill, error)
	DeleteBill(ctx context.Context, index int) error

	CreateAccount(ctx context.Context, account domain.Account) error
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	UpdateAccountPassword(ctx context.Context, gmail string, password string) error

	SetSession(ctx context.Context, session domain.Session) error
	GetSession(ctx context.Context) (domain.Session, error)
	ClearSession(ctx context.Context) error
}
