package repositories

import (
	"context"
)

// TransactionManager runs repository work inside a store transaction. Update commits
// when fn returns nil and rolls everything back otherwise; View sees a consistent
// snapshot and must not write.
type TransactionManager interface {
	Update(ctx context.Context, fn func(tx LedgerTx) error) error
	View(ctx context.Context, fn func(tx LedgerTx) error) error
}

// LedgerStore is a TransactionManager backed by a closable storage engine.
type LedgerStore interface {
	TransactionManager
	Close() error
}
