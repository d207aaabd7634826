package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/licensing/internal/orders"
	"github.com/aussiebroadwan/licensing/internal/orders/store"
)

type ordersRepo struct {
	q   querier
	now func() time.Time
}

// dbOrders is the connection-level repository. Writes span several
// statements, so each one runs in its own Store.WithTx transaction.
type dbOrders struct {
	*ordersRepo
	st *Store
}

func (r *dbOrders) SaveOrder(ctx context.Context, o orders.Order) error {
	return r.st.WithTx(ctx, func(tx store.Tx) error {
		return tx.Orders().SaveOrder(ctx, o)
	})
}

func (r *dbOrders) UpsertOrder(ctx context.Context, o *orders.Record) error {
	return r.st.WithTx(ctx, func(tx store.Tx) error {
		return tx.Orders().UpsertOrder(ctx, o)
	})
}

func (r *ordersRepo) GetOrder(ctx context.Context, id string) (orders.Order, error) {
	rec, err := r.getRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *ordersRepo) getRecord(ctx context.Context, id string) (*orders.Record, error) {
	rec := &orders.Record{Metadata: make(map[string]string)}
	var createdAt, updatedAt sqlTime

	err := r.q.QueryRowContext(ctx,
		`SELECT id, billing_email, status, created_at, updated_at FROM orders WHERE id = ?`, id,
	).Scan(&rec.OrderID, &rec.Email, &rec.Status, &createdAt, &updatedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	rec.CreatedAt = createdAt.Time
	rec.UpdatedAt = updatedAt.Time

	if rec.LineItems, err = r.listItems(ctx, id); err != nil {
		return nil, err
	}
	if err := r.loadMeta(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *ordersRepo) listItems(ctx context.Context, orderID string) ([]orders.OrderItem, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT product_id, sku, name, quantity FROM order_items WHERE order_id = ? ORDER BY position`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []orders.OrderItem
	for rows.Next() {
		var item orders.OrderItem
		if err := rows.Scan(&item.ProductID, &item.SKU, &item.Name, &item.Quantity); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *ordersRepo) loadMeta(ctx context.Context, rec *orders.Record) error {
	rows, err := r.q.QueryContext(ctx,
		`SELECT meta_key, meta_value FROM order_meta WHERE order_id = ?`, rec.OrderID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return err
		}
		rec.Metadata[key] = value
	}
	return rows.Err()
}

// SaveOrder persists the order row and its metadata. Orders that cannot
// enumerate their metadata have only the license keys written. Empty values
// delete the key.
func (r *ordersRepo) SaveOrder(ctx context.Context, o orders.Order) error {
	keys := orders.LicenseMetaKeys
	if lister, ok := o.(orders.MetaLister); ok {
		keys = lister.MetaKeys()
	}

	status := ""
	if rec, ok := o.(*orders.Record); ok {
		status = rec.Status
	}

	if err := upsertOrderRow(ctx, r.q, o.ID(), o.BillingEmail(), status, r.now()); err != nil {
		return err
	}

	for _, key := range keys {
		value := o.Meta(key)
		if value == "" {
			if _, err := r.q.ExecContext(ctx,
				`DELETE FROM order_meta WHERE order_id = ? AND meta_key = ?`, o.ID(), key); err != nil {
				return fmt.Errorf("delete meta %s: %w", key, err)
			}
			continue
		}
		if _, err := r.q.ExecContext(ctx, `
			INSERT INTO order_meta (order_id, meta_key, meta_value) VALUES (?, ?, ?)
			ON CONFLICT (order_id, meta_key) DO UPDATE SET meta_value = excluded.meta_value`,
			o.ID(), key, value); err != nil {
			return fmt.Errorf("write meta %s: %w", key, err)
		}
	}
	return nil
}

func (r *ordersRepo) UpsertOrder(ctx context.Context, o *orders.Record) error {
	if err := upsertOrderRow(ctx, r.q, o.OrderID, o.Email, o.Status, r.now()); err != nil {
		return err
	}

	if _, err := r.q.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = ?`, o.OrderID); err != nil {
		return fmt.Errorf("clear items: %w", err)
	}
	for i, item := range o.LineItems {
		if _, err := r.q.ExecContext(ctx, `
			INSERT INTO order_items (order_id, position, product_id, sku, name, quantity)
			VALUES (?, ?, ?, ?, ?, ?)`,
			o.OrderID, i, item.ProductID, item.SKU, item.Name, item.Quantity); err != nil {
			return fmt.Errorf("insert item %d: %w", i, err)
		}
	}
	return nil
}

// upsertOrderRow inserts or updates the order row. An empty status keeps the
// stored one.
func upsertOrderRow(ctx context.Context, q querier, id, email, status string, now time.Time) error {
	insertStatus := status
	if insertStatus == "" {
		insertStatus = orders.StatusPending
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO orders (id, billing_email, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			billing_email = excluded.billing_email,
			status = CASE WHEN ? = '' THEN orders.status ELSE excluded.status END,
			updated_at = excluded.updated_at`,
		id, email, insertStatus, formatTime(now), formatTime(now), status)
	if err != nil {
		return fmt.Errorf("upsert order %s: %w", id, err)
	}
	return nil
}

func (r *ordersRepo) ListOrdersByStatus(ctx context.Context, status string) ([]*orders.Record, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id FROM orders WHERE status = ? ORDER BY created_at, id`, status)
	if err != nil {
		return nil, err
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]*orders.Record, 0, len(ids))
	for _, id := range ids {
		rec, err := r.getRecord(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
