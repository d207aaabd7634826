package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/licensing/internal/orders"
)

var ErrNotFound = errors.New("store: not found")

// Store is the root data access interface of the license sync service.
// Concrete drivers implement it; sub-repositories keep transactions explicit.
type Store interface {
	Orders() Orders

	ApplyMigrations() error

	// Tx starts a read/write transaction. The caller MUST call Commit() or
	// Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing when fn returns nil.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store.
type Tx interface {
	Orders() Orders
	Commit() error
	Rollback() error
}

// Orders persists storefront orders and their license metadata. It satisfies
// orders.Repository; GetOrder returns ErrNotFound for unknown ids.
type Orders interface {
	orders.Repository

	// UpsertOrder writes the order row and replaces its items. Metadata is
	// left untouched so redelivered events keep the recorded license.
	UpsertOrder(ctx context.Context, o *orders.Record) error

	// ListOrdersByStatus returns orders with the given status, oldest first.
	ListOrdersByStatus(ctx context.Context, status string) ([]*orders.Record, error)
}
