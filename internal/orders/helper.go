// Package orders connects storefront orders to the license service: it
// issues a license when an order completes, revokes it on refund or
// cancellation, and records the license on the order's metadata.
package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strconv"

	"github.com/aussiebroadwan/licensing/pkg/licensesdk"
	"github.com/aussiebroadwan/licensing/pkg/slogx"
)

// LicenseClient is the subset of *licensesdk.Client used by the helper.
type LicenseClient interface {
	CreateLicense(ctx context.Context, fields map[string]any) (licensesdk.Data, error)
	GetLicense(ctx context.Context, idOrKey string) (licensesdk.Data, error)
	RevokeLicense(ctx context.Context, idOrKey string) (*licensesdk.Envelope, error)
}

// ProductMapper maps an order item to license fields such as product_slug
// and tier_code. An empty result means the item does not carry a license.
type ProductMapper func(item OrderItem, order Order) map[string]any

// ErrOrderNotFound is returned when a nil order is passed to the helper.
var ErrOrderNotFound = &licensesdk.APIError{
	Kind:    licensesdk.KindValidationFailure,
	Code:    licensesdk.ErrorCodeValidationError,
	Message: "Order not found",
}

type Helper struct {
	client LicenseClient
	repo   Repository
	logger *slog.Logger

	// locks serialises hook handling per order so a redelivered event
	// observes the license recorded by the first delivery.
	locks orderLocks
}

func NewHelper(client LicenseClient, repo Repository, logger *slog.Logger) *Helper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Helper{client: client, repo: repo, logger: logger}
}

// CreateLicenseFromOrder creates a license for order and records its key,
// status and id on the order. customer_email defaults to the billing email.
func (h *Helper) CreateLicenseFromOrder(
	ctx context.Context,
	order Order,
	fields map[string]any,
) (licensesdk.License, error) {
	if order == nil {
		return licensesdk.License{}, ErrOrderNotFound
	}

	data := maps.Clone(fields)
	if data == nil {
		data = make(map[string]any)
	}
	if _, ok := data["customer_email"]; !ok {
		data["customer_email"] = order.BillingEmail()
	}

	payload, err := h.client.CreateLicense(ctx, data)
	if err != nil {
		return licensesdk.License{}, err
	}

	license, err := payload.License()
	if err != nil {
		return licensesdk.License{}, fmt.Errorf("decode created license: %w", err)
	}

	order.SetMeta(MetaLicenseKey, license.LicenseKey)
	order.SetMeta(MetaLicenseStatus, license.Status)
	if license.ID != nil {
		order.SetMeta(MetaLicenseID, strconv.Itoa(*license.ID))
	}

	if err := h.repo.SaveOrder(ctx, order); err != nil {
		return license, fmt.Errorf("save order %s: %w", order.ID(), err)
	}
	return license, nil
}

// RevokeLicenseForOrder revokes the license recorded on order, preferring
// the stored license id over the key. Orders without a license are ignored.
func (h *Helper) RevokeLicenseForOrder(ctx context.Context, order Order) error {
	if order == nil {
		return nil
	}

	idOrKey, ok := licenseRef(order)
	if !ok {
		return nil
	}

	if _, err := h.client.RevokeLicense(ctx, idOrKey); err != nil {
		return err
	}

	order.SetMeta(MetaLicenseStatus, licensesdk.LicenseStatusRevoked)
	if err := h.repo.SaveOrder(ctx, order); err != nil {
		return fmt.Errorf("save order %s: %w", order.ID(), err)
	}
	return nil
}

// GetLicenseForOrder fetches the license recorded on order. It returns nil
// without an error when the order has no license or the service reports any
// API error for it.
func (h *Helper) GetLicenseForOrder(ctx context.Context, order Order) (*licensesdk.License, error) {
	if order == nil {
		return nil, nil
	}

	idOrKey, ok := licenseRef(order)
	if !ok {
		return nil, nil
	}

	payload, err := h.client.GetLicense(ctx, idOrKey)
	if err != nil {
		var apiErr *licensesdk.APIError
		if errors.As(err, &apiErr) {
			slogx.FromContext(ctx).Debug("license lookup for order failed",
				"order_id", order.ID(), "code", apiErr.Code)
			return nil, nil
		}
		return nil, err
	}

	license, err := payload.License()
	if err != nil {
		return nil, fmt.Errorf("decode license: %w", err)
	}
	return &license, nil
}

// licenseRef returns the identifier used to address the order's license.
func licenseRef(order Order) (string, bool) {
	key := order.Meta(MetaLicenseKey)
	if key == "" {
		return "", false
	}
	if id := order.Meta(MetaLicenseID); id != "" {
		return id, true
	}
	return key, true
}

// ============================================================================
// Order hooks
// ============================================================================

// RegisterOrderHooks subscribes the helper to order status events on d:
// completed orders get a license, refunded and cancelled orders lose it.
// Failures are logged and never returned to the dispatcher. Events for the
// same order are handled one at a time.
func (h *Helper) RegisterOrderHooks(d *Dispatcher, mapper ProductMapper) {
	d.Subscribe(EventOrderCompleted, func(ctx context.Context, e Event) error {
		h.handleOrderCompleted(ctx, e.OrderID, mapper)
		return nil
	})
	d.Subscribe(EventOrderRefunded, func(ctx context.Context, e Event) error {
		h.handleOrderRevoked(ctx, e.OrderID)
		return nil
	})
	d.Subscribe(EventOrderCancelled, func(ctx context.Context, e Event) error {
		h.handleOrderRevoked(ctx, e.OrderID)
		return nil
	})
}

func (h *Helper) loadOrder(ctx context.Context, orderID string) Order {
	order, err := h.repo.GetOrder(ctx, orderID)
	if err != nil {
		h.log(ctx).Warn("order lookup failed", "order_id", orderID, "error", err)
		return nil
	}
	return order
}

func (h *Helper) handleOrderCompleted(ctx context.Context, orderID string, mapper ProductMapper) {
	unlock := h.locks.lock(orderID)
	defer unlock()

	order := h.loadOrder(ctx, orderID)
	if order == nil {
		return
	}

	existing, err := h.GetLicenseForOrder(ctx, order)
	if err != nil {
		h.log(ctx).Error("failed to check existing license", "order_id", orderID, "error", err)
		return
	}
	if existing != nil {
		h.log(ctx).Info("order already has a license", "order_id", orderID, "license_key", existing.LicenseKey)
		return
	}

	fields := mapOrderToLicenseFields(order, mapper)

	license, err := h.CreateLicenseFromOrder(ctx, order, fields)
	if err != nil {
		h.log(ctx).Error("failed to create license for order", "order_id", orderID, "error", err)
		return
	}
	h.log(ctx).Info("license created for order", "order_id", orderID, "license_key", license.LicenseKey)
}

func (h *Helper) handleOrderRevoked(ctx context.Context, orderID string) {
	unlock := h.locks.lock(orderID)
	defer unlock()

	order := h.loadOrder(ctx, orderID)
	if order == nil {
		return
	}

	if err := h.RevokeLicenseForOrder(ctx, order); err != nil {
		h.log(ctx).Error("failed to revoke license for order", "order_id", orderID, "error", err)
		return
	}
	h.log(ctx).Info("license revoked for order", "order_id", orderID)
}

// mapOrderToLicenseFields merges the first non-empty product mapping over
// the customer email.
func mapOrderToLicenseFields(order Order, mapper ProductMapper) map[string]any {
	fields := map[string]any{
		"customer_email": order.BillingEmail(),
	}
	if mapper == nil {
		return fields
	}

	for _, item := range order.Items() {
		if item.ProductID == "" {
			continue
		}
		if mapped := mapper(item, order); len(mapped) > 0 {
			maps.Copy(fields, mapped)
			break
		}
	}
	return fields
}

// log prefers the request-scoped logger, falling back to the helper's.
func (h *Helper) log(ctx context.Context) *slog.Logger {
	if l := slogx.FromContext(ctx); l != slog.Default() {
		return l
	}
	return h.logger
}
