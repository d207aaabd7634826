package sqlite_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/licensing/internal/orders"
	"github.com/aussiebroadwan/licensing/internal/orders/store"
	"github.com/aussiebroadwan/licensing/internal/orders/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "orders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func sampleOrder(id string) *orders.Record {
	return &orders.Record{
		OrderID: id,
		Email:   "buyer@example.com",
		Status:  orders.StatusCompleted,
		LineItems: []orders.OrderItem{
			{ProductID: "20", SKU: "PRO-PLUGIN", Name: "Pro plugin", Quantity: 1},
			{ProductID: "21", SKU: "ADDON", Name: "Add-on", Quantity: 2},
		},
	}
}

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	t.Parallel()

	st := newStore(t)
	require.NoError(t, st.ApplyMigrations())
	require.NoError(t, st.Ping(context.Background()))
}

func TestOrdersRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newStore(t)
	repo := st.Orders()

	_, err := repo.GetOrder(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, repo.UpsertOrder(ctx, sampleOrder("1001")))

	got, err := repo.GetOrder(ctx, "1001")
	require.NoError(t, err)
	require.Equal(t, "1001", got.ID())
	require.Equal(t, "buyer@example.com", got.BillingEmail())
	require.Equal(t, sampleOrder("1001").LineItems, got.Items())
	require.Empty(t, got.Meta(orders.MetaLicenseKey))

	rec := got.(*orders.Record)
	require.Equal(t, orders.StatusCompleted, rec.Status)
	require.False(t, rec.CreatedAt.IsZero())

	got.SetMeta(orders.MetaLicenseKey, "PRO-KEY")
	got.SetMeta(orders.MetaLicenseStatus, "ACTIVE")
	got.SetMeta(orders.MetaLicenseID, "42")
	got.SetMeta("_custom", "x")
	require.NoError(t, repo.SaveOrder(ctx, got))

	reloaded, err := repo.GetOrder(ctx, "1001")
	require.NoError(t, err)
	require.Equal(t, "PRO-KEY", reloaded.Meta(orders.MetaLicenseKey))
	require.Equal(t, "42", reloaded.Meta(orders.MetaLicenseID))
	require.Equal(t, "x", reloaded.Meta("_custom"))

	t.Run("upsert keeps metadata and replaces items", func(t *testing.T) {
		update := sampleOrder("1001")
		update.Status = orders.StatusRefunded
		update.LineItems = update.LineItems[:1]
		require.NoError(t, repo.UpsertOrder(ctx, update))

		got, err := repo.GetOrder(ctx, "1001")
		require.NoError(t, err)
		require.Len(t, got.Items(), 1)
		require.Equal(t, "PRO-KEY", got.Meta(orders.MetaLicenseKey))
		require.Equal(t, orders.StatusRefunded, got.(*orders.Record).Status)
	})

	t.Run("empty meta value deletes the key", func(t *testing.T) {
		got, err := repo.GetOrder(ctx, "1001")
		require.NoError(t, err)
		got.SetMeta("_custom", "")
		require.NoError(t, repo.SaveOrder(ctx, got))

		reloaded, err := repo.GetOrder(ctx, "1001")
		require.NoError(t, err)
		require.NotContains(t, reloaded.(*orders.Record).Metadata, "_custom")
	})
}

// plainOrder is an Order that cannot list its metadata.
type plainOrder struct {
	id   string
	meta map[string]string
}

func (o *plainOrder) ID() string                { return o.id }
func (o *plainOrder) BillingEmail() string      { return "plain@example.com" }
func (o *plainOrder) Meta(key string) string    { return o.meta[key] }
func (o *plainOrder) SetMeta(key, value string) { o.meta[key] = value }
func (o *plainOrder) Items() []orders.OrderItem { return nil }

func TestSaveOrderWithoutMetaLister(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newStore(t).Orders()

	o := &plainOrder{id: "2001", meta: map[string]string{
		orders.MetaLicenseKey: "K",
		"_ignored":            "y",
	}}
	require.NoError(t, repo.SaveOrder(ctx, o))

	got, err := repo.GetOrder(ctx, "2001")
	require.NoError(t, err)
	require.Equal(t, "K", got.Meta(orders.MetaLicenseKey))
	require.Empty(t, got.Meta("_ignored"))
	require.Equal(t, orders.StatusPending, got.(*orders.Record).Status)
}

func TestListOrdersByStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newStore(t).Orders()

	for _, id := range []string{"a", "b", "c"} {
		o := sampleOrder(id)
		if id == "b" {
			o.Status = orders.StatusCancelled
		}
		require.NoError(t, repo.UpsertOrder(ctx, o))
	}

	completed, err := repo.ListOrdersByStatus(ctx, orders.StatusCompleted)
	require.NoError(t, err)
	require.Len(t, completed, 2)
	require.Len(t, completed[0].LineItems, 2)

	none, err := repo.ListOrdersByStatus(ctx, orders.StatusRefunded)
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestWithTx(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newStore(t)

	rollback := errors.New("rollback")
	err := st.WithTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.Orders().UpsertOrder(ctx, sampleOrder("tx-1")))
		return rollback
	})
	require.ErrorIs(t, err, rollback)

	_, err = st.Orders().GetOrder(ctx, "tx-1")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, st.WithTx(ctx, func(tx store.Tx) error {
		return tx.Orders().UpsertOrder(ctx, sampleOrder("tx-2"))
	}))

	_, err = st.Orders().GetOrder(ctx, "tx-2")
	require.NoError(t, err)
}

func TestWritesAreAtomic(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "orders.db")
	st, err := sqlite.NewStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	// Reject one item from a second connection so the upsert fails after the
	// order row has been written.
	raw, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = raw.ExecContext(ctx, `
		CREATE TRIGGER reject_item BEFORE INSERT ON order_items
		WHEN NEW.sku = 'REJECT'
		BEGIN SELECT RAISE(ABORT, 'rejected item'); END`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	o := sampleOrder("3001")
	o.LineItems = append(o.LineItems, orders.OrderItem{SKU: "REJECT", Quantity: 1})
	require.Error(t, st.Orders().UpsertOrder(ctx, o))

	_, err = st.Orders().GetOrder(ctx, "3001")
	require.ErrorIs(t, err, store.ErrNotFound, "failed upsert must not leave a partial order")

	require.NoError(t, st.Orders().UpsertOrder(ctx, sampleOrder("3001")))
	got, err := st.Orders().GetOrder(ctx, "3001")
	require.NoError(t, err)
	require.Len(t, got.Items(), 2)
}
