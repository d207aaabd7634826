package orders_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aussiebroadwan/licensing/internal/orders"
	"github.com/stretchr/testify/require"
)

func TestDispatcher(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("runs listeners in order for the event type only", func(t *testing.T) {
		t.Parallel()
		d := orders.NewDispatcher()

		var got []string
		d.Subscribe(orders.EventOrderCompleted, func(_ context.Context, e orders.Event) error {
			got = append(got, "first:"+e.OrderID)
			return nil
		})
		d.Subscribe(orders.EventOrderCompleted, func(_ context.Context, e orders.Event) error {
			got = append(got, "second:"+e.OrderID)
			return nil
		})
		d.Subscribe(orders.EventOrderRefunded, func(context.Context, orders.Event) error {
			got = append(got, "refunded")
			return nil
		})

		require.NoError(t, d.Dispatch(ctx, orders.Event{Type: orders.EventOrderCompleted, OrderID: "1"}))
		require.Equal(t, []string{"first:1", "second:1"}, got)
	})

	t.Run("isolates failing listeners", func(t *testing.T) {
		t.Parallel()
		d := orders.NewDispatcher()
		boom := errors.New("boom")

		ran := 0
		d.Subscribe(orders.EventOrderCancelled, func(context.Context, orders.Event) error { return boom })
		d.Subscribe(orders.EventOrderCancelled, func(context.Context, orders.Event) error { panic("kaboom") })
		d.Subscribe(orders.EventOrderCancelled, func(context.Context, orders.Event) error {
			ran++
			return nil
		})

		err := d.Dispatch(ctx, orders.Event{Type: orders.EventOrderCancelled, OrderID: "2"})
		require.ErrorIs(t, err, boom)
		require.ErrorContains(t, err, "listener panic: kaboom")
		require.Equal(t, 1, ran)
	})

	t.Run("no listeners", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, orders.NewDispatcher().Dispatch(ctx, orders.Event{Type: orders.EventOrderRefunded}))
	})
}

func TestEventType(t *testing.T) {
	t.Parallel()

	require.True(t, orders.EventOrderCompleted.Valid())
	require.False(t, orders.EventType("order.shipped").Valid())
	require.Equal(t, orders.StatusRefunded, orders.EventOrderRefunded.Status())
	require.Empty(t, orders.EventType("order.shipped").Status())
}

func TestRecordMeta(t *testing.T) {
	t.Parallel()

	var r orders.Record
	require.Empty(t, r.Meta(orders.MetaLicenseKey))

	r.SetMeta(orders.MetaLicenseStatus, "ACTIVE")
	r.SetMeta(orders.MetaLicenseKey, "K")
	require.Equal(t, "K", r.Meta(orders.MetaLicenseKey))
	require.Equal(t, []string{orders.MetaLicenseKey, orders.MetaLicenseStatus}, r.MetaKeys())
}
