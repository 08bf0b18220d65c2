package services

import (
	"context"
	"time"

	"catalog-sync-service/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// StatusTracker surfaces live per-status counts for an order's line items
// while an upload is in flight. It only ever reads; status changes come from
// the upload pipeline.
type StatusTracker struct {
	orderRepo repository.OrderRepositoryInterface
	logger    *logrus.Entry
}

// NewStatusTracker creates a new status tracker
func NewStatusTracker(orderRepo repository.OrderRepositoryInterface, logger *logrus.Logger) *StatusTracker {
	return &StatusTracker{
		orderRepo: orderRepo,
		logger:    logger.WithField("component", "status-tracker"),
	}
}

// Poll returns the current sync status counts for the order
func (t *StatusTracker) Poll(ctx context.Context, orderID uuid.UUID) (*repository.SyncCounts, error) {
	return t.orderRepo.GetSyncCounts(ctx, orderID)
}

// Watch polls the order's sync counts at the given interval and reports each
// observation through onUpdate. It stops only after two consecutive polls
// observe zero in-flight items, so a snapshot taken between two groups of the
// same batch cannot end the watch early. Cancelling the context stops the
// watch immediately and returns the context's error.
func (t *StatusTracker) Watch(ctx context.Context, orderID uuid.UUID, interval time.Duration, onUpdate func(*repository.SyncCounts)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	confirming := false
	for {
		counts, err := t.Poll(ctx, orderID)
		if err != nil {
			t.logger.WithError(err).WithField("orderId", orderID).Warn("Sync status poll failed")
			confirming = false
		} else {
			if onUpdate != nil {
				onUpdate(counts)
			}
			if counts.Processing == 0 {
				if confirming {
					return nil
				}
				confirming = true
			} else {
				confirming = false
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
