package port

import (
	"context"

	"github.com/ptl2504/text-vending/internal/core/domain"
)

type CatalogRepository interface {
	// GetItem retrieves an item by exact name; nil when absent.
	GetItem(ctx context.Context, name string) (*domain.Item, error)
}

type AccountRepository interface {
	// GetAccount retrieves an account by name; nil when absent.
	GetAccount(ctx context.Context, name string) (*domain.Account, error)

	// DeductBalance atomically subtracts amount from the account balance,
	// re-validating funds at the store. Returns false when the balance is
	// insufficient (or the account is missing); the balance is untouched then.
	DeductBalance(ctx context.Context, name string, amount int) (bool, error)

	// SetBalance writes the balance unconditionally. Provisioning and
	// restocking tooling only; callers must keep it non-negative.
	SetBalance(ctx context.Context, name string, balance int) error
}

type AuditRepository interface {
	// Append adds one entry to the audit log and returns its sequence id.
	// Entries are never mutated or deleted.
	Append(ctx context.Context, message string) (int64, error)
}
