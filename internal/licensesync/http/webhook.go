package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/licensing/internal/orders"
	"github.com/aussiebroadwan/licensing/internal/orders/store"
	"github.com/aussiebroadwan/licensing/pkg/httpx"
	"github.com/aussiebroadwan/licensing/pkg/idx"
	"github.com/aussiebroadwan/licensing/pkg/slogx"
)

// OrderWebhookRequest is an order status event pushed by the storefront.
type OrderWebhookRequest struct {
	EventID string           `json:"event_id,omitempty"`
	Type    orders.EventType `json:"type"`
	Order   WebhookOrder     `json:"order"`
}

// WebhookOrder is the order snapshot carried by a webhook.
type WebhookOrder struct {
	ID           OrderID            `json:"id"`
	BillingEmail string             `json:"billing_email"`
	Items        []orders.OrderItem `json:"items"`
}

// OrderID accepts both string and numeric order ids.
type OrderID string

func (id *OrderID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = OrderID(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.New("order id must be a string or a number")
	}
	*id = OrderID(n.String())
	return nil
}

// OrderWebhookResponse acknowledges an accepted event.
type OrderWebhookResponse struct {
	EventID string `json:"event_id"`
}

// OrderWebhookHandler records order events and hands them to the dispatcher.
type OrderWebhookHandler struct {
	Store      store.Store
	Dispatcher *orders.Dispatcher
}

// ServeHTTP handles POST /v1/webhooks/orders
//
//	@Summary		Order Status Webhook
//	@Description	Records an order status change and issues or revokes the order's license.
//	@Description	When a webhook secret is configured the body must be signed with X-Signature: sha256=<hex hmac>.
//	@Tags			Webhooks
//	@Accept			json
//	@Produce		json
//	@Param			X-Signature	header		string					false	"sha256=<hex HMAC-SHA256 of the body>"
//	@Param			request		body		OrderWebhookRequest		true	"Order event"
//	@Success		202			{object}	OrderWebhookResponse	"event_id"
//	@Failure		400			{object}	map[string]any			"success, error"
//	@Failure		401			{object}	map[string]any			"success, error"
//	@Failure		429			{object}	map[string]any			"success, error"
//	@Failure		500			{object}	map[string]any			"success, error"
//	@Router			/v1/webhooks/orders [post].
func (h *OrderWebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	// Parse request body
	var req OrderWebhookRequest
	body := http.MaxBytesReader(w, r.Body, httpx.MaxWebhookBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "INVALID_FORMAT", "Invalid JSON in request body")
		return
	}

	// Validate request
	if !req.Type.Valid() {
		httpx.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown event type")
		return
	}
	if req.Order.ID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Order id is required")
		return
	}

	event := orders.Event{
		ID:      idx.OrNew(req.EventID).String(),
		Type:    req.Type,
		OrderID: string(req.Order.ID),
	}

	record := &orders.Record{
		OrderID:   event.OrderID,
		Email:     strings.TrimSpace(req.Order.BillingEmail),
		Status:    req.Type.Status(),
		LineItems: req.Order.Items,
	}
	if err := h.Store.Orders().UpsertOrder(ctx, record); err != nil {
		log.Error("failed to record order", "order_id", event.OrderID, "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to record order")
		return
	}

	// Listeners outlive a storefront that hangs up early. Missed side
	// effects are picked up by the reconciler.
	if err := h.Dispatcher.Dispatch(context.WithoutCancel(ctx), event); err != nil {
		log.Warn("order event listeners failed", "event_id", event.ID, "error", err)
	}

	httpx.WriteData(w, http.StatusAccepted, OrderWebhookResponse{EventID: event.ID})
}
