package orders

import (
	"context"
	"maps"
	"slices"
	"time"
)

// Order metadata keys written by the helper.
const (
	MetaLicenseKey    = "_sls_license_key"
	MetaLicenseStatus = "_sls_license_status"
	MetaLicenseID     = "_sls_license_id"
)

// LicenseMetaKeys lists every metadata key owned by the helper.
var LicenseMetaKeys = []string{MetaLicenseKey, MetaLicenseStatus, MetaLicenseID}

// Order status values reported by the storefront.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusRefunded  = "refunded"
	StatusCancelled = "cancelled"
)

// OrderItem is one purchased line of an order.
type OrderItem struct {
	ProductID string `json:"product_id"`
	SKU       string `json:"sku,omitempty"`
	Name      string `json:"name,omitempty"`
	Quantity  int    `json:"quantity"`
}

// Order is the view of a storefront order the helper needs.
type Order interface {
	ID() string
	BillingEmail() string
	Meta(key string) string
	SetMeta(key, value string)
	Items() []OrderItem
}

// MetaLister is implemented by orders that can enumerate their metadata.
type MetaLister interface {
	MetaKeys() []string
}

// Repository loads and persists orders.
type Repository interface {
	GetOrder(ctx context.Context, id string) (Order, error)
	SaveOrder(ctx context.Context, order Order) error
}

// Record is the concrete Order kept by the order store.
type Record struct {
	OrderID   string
	Email     string
	Status    string
	LineItems []OrderItem
	Metadata  map[string]string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r *Record) ID() string           { return r.OrderID }
func (r *Record) BillingEmail() string { return r.Email }
func (r *Record) Items() []OrderItem   { return slices.Clone(r.LineItems) }

func (r *Record) Meta(key string) string { return r.Metadata[key] }

func (r *Record) SetMeta(key, value string) {
	if r.Metadata == nil {
		r.Metadata = make(map[string]string)
	}
	r.Metadata[key] = value
}

// MetaKeys returns the metadata keys in sorted order.
func (r *Record) MetaKeys() []string {
	return slices.Sorted(maps.Keys(r.Metadata))
}
