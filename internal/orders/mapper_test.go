package orders_test

import (
	"testing"

	"github.com/aussiebroadwan/licensing/internal/orders"
	"github.com/stretchr/testify/require"
)

func TestStaticProductMapper(t *testing.T) {
	t.Parallel()

	mapper := orders.StaticProductMapper(map[string]string{
		"PRO-PLUGIN": "pro-plugin:single",
		"42":         "starter",
		"BROKEN":     ":tier",
	})

	tests := []struct {
		name string
		item orders.OrderItem
		want map[string]any
	}{
		{
			name: "sku with tier",
			item: orders.OrderItem{ProductID: "20", SKU: "PRO-PLUGIN"},
			want: map[string]any{"product_slug": "pro-plugin", "tier_code": "single"},
		},
		{
			name: "falls back to product id",
			item: orders.OrderItem{ProductID: "42", SKU: "UNKNOWN"},
			want: map[string]any{"product_slug": "starter"},
		},
		{
			name: "empty sku uses product id",
			item: orders.OrderItem{ProductID: "42"},
			want: map[string]any{"product_slug": "starter"},
		},
		{
			name: "missing slug",
			item: orders.OrderItem{ProductID: "1", SKU: "BROKEN"},
		},
		{
			name: "unmapped",
			item: orders.OrderItem{ProductID: "99", SKU: "T-SHIRT"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, mapper(tt.item, nil))
		})
	}
}

func TestEventForStatus(t *testing.T) {
	t.Parallel()

	got, ok := orders.EventForStatus(orders.StatusCancelled)
	require.True(t, ok)
	require.Equal(t, orders.EventOrderCancelled, got)

	_, ok = orders.EventForStatus(orders.StatusPending)
	require.False(t, ok)
}
