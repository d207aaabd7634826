package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/licensing/internal/orders"
	"github.com/aussiebroadwan/licensing/internal/orders/store"
	"github.com/aussiebroadwan/licensing/pkg/idx"
	"github.com/aussiebroadwan/licensing/pkg/licensesdk"
)

// Session reports whether the license client holds a usable token.
type Session interface {
	IsAuthenticated() bool
}

// ReconcileService periodically replays order events whose license side
// effects never landed: completed orders without a license, and refunded
// or cancelled orders whose license was never revoked.
type ReconcileService struct {
	Store      store.Store
	Dispatcher *orders.Dispatcher
	Session    Session
	Logger     *slog.Logger
	Interval   time.Duration

	// Reauthenticate, when set, is called before a pass if the session has
	// lost its token.
	Reauthenticate func(ctx context.Context) error

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewReconcileService creates a reconciler with the given interval.
// If interval is 0 or negative, defaults to 15 minutes.
func NewReconcileService(
	st store.Store,
	dispatcher *orders.Dispatcher,
	session Session,
	logger *slog.Logger,
	interval time.Duration,
) *ReconcileService {
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	return &ReconcileService{
		Store:      st,
		Dispatcher: dispatcher,
		Session:    session,
		Logger:     logger,
		Interval:   interval,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop to shut it down.
func (s *ReconcileService) Start() {
	go s.run()
	s.Logger.Info("reconcile service started", "interval", s.Interval)
}

// Stop blocks until any in-progress pass has finished.
func (s *ReconcileService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("reconcile service stopped")
}

func (s *ReconcileService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Reconcile(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Reconcile performs one pass and returns the number of events replayed.
// Each status is handled independently; a failure in one does not stop the
// others.
func (s *ReconcileService) Reconcile(ctx context.Context) int {
	if s.Session != nil && !s.Session.IsAuthenticated() {
		if s.Reauthenticate == nil {
			s.Logger.Warn("license client not authenticated, skipping reconcile")
			return 0
		}
		if err := s.Reauthenticate(ctx); err != nil {
			s.Logger.Error("failed to reauthenticate license client", "error", err)
			return 0
		}
		s.Logger.Info("license client reauthenticated")
	}

	replayed := 0
	for _, status := range []string{orders.StatusCompleted, orders.StatusRefunded, orders.StatusCancelled} {
		records, err := s.Store.Orders().ListOrdersByStatus(ctx, status)
		if err != nil {
			s.Logger.Error("failed to list orders", "status", status, "error", err)
			continue
		}

		eventType, _ := orders.EventForStatus(status)
		for _, rec := range records {
			if !needsReplay(rec, eventType) {
				continue
			}

			event := orders.Event{ID: idx.New().String(), Type: eventType, OrderID: rec.OrderID}
			if err := s.Dispatcher.Dispatch(ctx, event); err != nil {
				s.Logger.Error("failed to replay order event", "order_id", rec.OrderID, "error", err)
				continue
			}
			replayed++
		}
	}

	if replayed > 0 {
		s.Logger.Info("reconcile completed", "replayed", replayed)
	} else {
		s.Logger.Debug("reconcile completed", "replayed", 0)
	}
	return replayed
}

func needsReplay(rec *orders.Record, t orders.EventType) bool {
	hasLicense := rec.Meta(orders.MetaLicenseKey) != ""
	if t == orders.EventOrderCompleted {
		return !hasLicense
	}
	return hasLicense && rec.Meta(orders.MetaLicenseStatus) != licensesdk.LicenseStatusRevoked
}
