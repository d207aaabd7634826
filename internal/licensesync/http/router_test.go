package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	httpapi "github.com/aussiebroadwan/licensing/internal/licensesync/http"
	"github.com/aussiebroadwan/licensing/internal/orders"
	"github.com/aussiebroadwan/licensing/internal/orders/store/drivers/sqlite"
	"github.com/aussiebroadwan/licensing/pkg/httpx"
	"github.com/aussiebroadwan/licensing/pkg/idx"
	"github.com/aussiebroadwan/licensing/pkg/licensesdk"
	"github.com/aussiebroadwan/licensing/pkg/slogx"
	"github.com/stretchr/testify/require"
)

type fakeSession struct{ authenticated bool }

func (s fakeSession) IsAuthenticated() bool { return s.authenticated }

type fixture struct {
	router *httpapi.Router
	store  *sqlite.Store

	mu     sync.Mutex
	events []orders.Event
}

func (f *fixture) seen() []orders.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]orders.Event(nil), f.events...)
}

func newFixture(t *testing.T, secret string, session httpapi.Session) *fixture {
	t.Helper()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "orders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	f := &fixture{store: st}
	d := orders.NewDispatcher()
	for _, et := range []orders.EventType{orders.EventOrderCompleted, orders.EventOrderRefunded, orders.EventOrderCancelled} {
		d.Subscribe(et, func(_ context.Context, e orders.Event) error {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.events = append(f.events, e)
			return nil
		})
	}

	r := httpapi.NewRouter("test", st, slogx.Discard())
	r.Dispatcher = d
	r.Session = session
	if secret != "" {
		r.WebhookSecret = []byte(secret)
	}
	r.ApplyRoutes()
	f.router = r
	return f
}

func (f *fixture) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode(t, rec)
	require.Equal(t, false, body["success"])
	return body["error"].(map[string]any)["code"].(string)
}

const completedOrder = `{
	"type": "order.completed",
	"order": {
		"id": "1001",
		"billing_email": " buyer@example.com ",
		"items": [{"product_id": "20", "sku": "PRO-PLUGIN", "name": "Pro plugin", "quantity": 1}]
	}
}`

func TestOrderWebhook(t *testing.T) {
	t.Parallel()

	t.Run("records the order and dispatches the event", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, "", fakeSession{true})

		rec := f.do(http.MethodPost, "/v1/webhooks/orders", completedOrder, nil)
		require.Equal(t, http.StatusAccepted, rec.Code)

		body := decode(t, rec)
		require.Equal(t, true, body["success"])
		eventID := body["data"].(map[string]any)["event_id"].(string)
		_, err := idx.Parse(eventID)
		require.NoError(t, err)

		events := f.seen()
		require.Len(t, events, 1)
		require.Equal(t, orders.Event{ID: eventID, Type: orders.EventOrderCompleted, OrderID: "1001"}, events[0])

		got, err := f.store.Orders().GetOrder(context.Background(), "1001")
		require.NoError(t, err)
		require.Equal(t, "buyer@example.com", got.BillingEmail())
		require.Equal(t, orders.StatusCompleted, got.(*orders.Record).Status)
		require.Equal(t, "PRO-PLUGIN", got.Items()[0].SKU)
	})

	t.Run("keeps a valid caller event id and numeric order id", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, "", fakeSession{true})
		eventID := idx.New().String()

		rec := f.do(http.MethodPost, "/v1/webhooks/orders",
			`{"event_id":"`+eventID+`","type":"order.refunded","order":{"id":1002}}`, nil)
		require.Equal(t, http.StatusAccepted, rec.Code)
		require.Equal(t, eventID, decode(t, rec)["data"].(map[string]any)["event_id"])

		events := f.seen()
		require.Len(t, events, 1)
		require.Equal(t, "1002", events[0].OrderID)
		require.Equal(t, orders.EventOrderRefunded, events[0].Type)
	})

	t.Run("rejects bad payloads", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, "", fakeSession{true})

		tests := []struct {
			name string
			body string
			code string
		}{
			{"malformed json", `{"type":`, "INVALID_FORMAT"},
			{"unknown type", `{"type":"order.shipped","order":{"id":"1"}}`, "VALIDATION_ERROR"},
			{"missing order id", `{"type":"order.completed","order":{"billing_email":"a@b.c"}}`, "VALIDATION_ERROR"},
			{"boolean order id", `{"type":"order.completed","order":{"id":true}}`, "INVALID_FORMAT"},
		}
		for _, tt := range tests {
			rec := f.do(http.MethodPost, "/v1/webhooks/orders", tt.body, nil)
			require.Equal(t, http.StatusBadRequest, rec.Code, tt.name)
			require.Equal(t, tt.code, errorCode(t, rec), tt.name)
		}
		require.Empty(t, f.seen())
	})

	t.Run("requires a valid signature when a secret is set", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, "hook-secret", fakeSession{true})

		rec := f.do(http.MethodPost, "/v1/webhooks/orders", completedOrder, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "UNAUTHORIZED", errorCode(t, rec))

		rec = f.do(http.MethodPost, "/v1/webhooks/orders", completedOrder, map[string]string{
			httpx.HeaderSignature: httpx.Sign([]byte("other"), []byte(completedOrder)),
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Empty(t, f.seen())

		rec = f.do(http.MethodPost, "/v1/webhooks/orders", completedOrder, map[string]string{
			httpx.HeaderSignature: httpx.Sign([]byte("hook-secret"), []byte(completedOrder)),
		})
		require.Equal(t, http.StatusAccepted, rec.Code)
		require.Len(t, f.seen(), 1)
	})

	t.Run("method not allowed", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, "", fakeSession{true})

		rec := f.do(http.MethodGet, "/v1/webhooks/orders", "", nil)
		require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestOrderWebhookConcurrentRedelivery(t *testing.T) {
	t.Parallel()

	// License service whose create call is slow enough for a redelivery to
	// arrive while the first one is still in flight.
	var creates atomic.Int32
	var issued atomic.Bool
	license := map[string]any{"id": 77, "license_key": "PRO-0077", "status": licensesdk.LicenseStatusActive}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/admin/licenses/create", func(w http.ResponseWriter, _ *http.Request) {
		creates.Add(1)
		time.Sleep(50 * time.Millisecond)
		issued.Store(true)
		httpx.WriteData(w, http.StatusCreated, license)
	})
	mux.HandleFunc("GET /api/v1/admin/licenses/{id}", func(w http.ResponseWriter, _ *http.Request) {
		if !issued.Load() {
			httpx.WriteError(w, http.StatusNotFound, "LICENSE_NOT_FOUND", "License not found")
			return
		}
		httpx.WriteData(w, http.StatusOK, license)
	})
	sls := httptest.NewServer(mux)
	t.Cleanup(sls.Close)

	client := licensesdk.NewClient(sls.URL)
	client.SetToken("admin-token", nil)

	f := newFixture(t, "", client)
	helper := orders.NewHelper(client, f.store.Orders(), slogx.Discard())
	helper.RegisterOrderHooks(f.router.Dispatcher, nil)

	const event = `{"type":"order.completed","order":{"id":"42","billing_email":"buyer@example.com"}}`

	var wg sync.WaitGroup
	codes := make([]int, 2)
	for i := range codes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes[i] = f.do(http.MethodPost, "/v1/webhooks/orders", event, nil).Code
		}()
	}
	wg.Wait()

	require.Equal(t, []int{http.StatusAccepted, http.StatusAccepted}, codes)
	require.Equal(t, int32(1), creates.Load(), "one order must yield one license")

	o, err := f.store.Orders().GetOrder(context.Background(), "42")
	require.NoError(t, err)
	require.Equal(t, "PRO-0077", o.Meta(orders.MetaLicenseKey))
}

func TestProbes(t *testing.T) {
	t.Parallel()

	t.Run("livez", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, "", nil)

		rec := f.do(http.MethodGet, "/livez", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		require.Equal(t, "ok", body["status"])
		require.Equal(t, "test", body["version"])
		require.NotContains(t, body, "checks")
	})

	t.Run("readyz ok", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, "", fakeSession{true})

		rec := f.do(http.MethodGet, "/readyz", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		require.Equal(t, "ok", body["status"])
		require.Equal(t, map[string]any{"database": "ok", "license_service": "ok"}, body["checks"])
	})

	t.Run("readyz without a license session", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, "", fakeSession{false})

		rec := f.do(http.MethodGet, "/readyz", "", nil)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		body := decode(t, rec)
		require.Equal(t, "degraded", body["status"])
		require.Equal(t, "error: not authenticated", body["checks"].(map[string]any)["license_service"])
	})

	t.Run("readyz with a closed database", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, "", fakeSession{true})
		require.NoError(t, f.store.Close())

		rec := f.do(http.MethodGet, "/readyz", "", nil)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		checks := decode(t, rec)["checks"].(map[string]any)
		require.True(t, strings.HasPrefix(checks["database"].(string), "error: "))
		require.Equal(t, "ok", checks["license_service"])
	})
}

func TestSwaggerDoc(t *testing.T) {
	t.Parallel()
	f := newFixture(t, "", nil)

	rec := f.do(http.MethodGet, "/swagger/doc.json", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Equal(t, "License Sync Service API", doc["info"].(map[string]any)["title"])
	require.Contains(t, doc["paths"], "/v1/webhooks/orders")
}
