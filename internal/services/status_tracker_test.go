package services

import (
	"context"
	"testing"
	"time"

	"catalog-sync-service/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestTracker(orderRepo *MockOrderRepository) *StatusTracker {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewStatusTracker(orderRepo, logger)
}

func TestPoll_ReturnsCounts(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	tracker := newTestTracker(orderRepo)
	orderID := uuid.New()

	orderRepo.On("GetSyncCounts", mock.Anything, orderID).Return(&repository.SyncCounts{
		Processing: 2,
		Pending:    1,
		Success:    3,
	}, nil)

	counts, err := tracker.Poll(context.Background(), orderID)
	assert.NoError(t, err)
	assert.Equal(t, 2, counts.Processing)
	assert.Equal(t, 3, counts.Success)
}

func TestWatch_StopsAfterConfirmingPoll(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	tracker := newTestTracker(orderRepo)
	orderID := uuid.New()

	// Processing drains to zero; the watch must poll once more before
	// halting instead of trusting a single zero observation.
	orderRepo.On("GetSyncCounts", mock.Anything, orderID).Return(&repository.SyncCounts{Processing: 2}, nil).Once()
	orderRepo.On("GetSyncCounts", mock.Anything, orderID).Return(&repository.SyncCounts{Processing: 0}, nil).Twice()

	var observations []int
	err := tracker.Watch(context.Background(), orderID, time.Millisecond, func(c *repository.SyncCounts) {
		observations = append(observations, c.Processing)
	})

	assert.NoError(t, err)
	assert.Equal(t, []int{2, 0, 0}, observations)
	orderRepo.AssertExpectations(t)
}

func TestWatch_ZeroBetweenGroupsDoesNotStopEarly(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	tracker := newTestTracker(orderRepo)
	orderID := uuid.New()

	// A snapshot taken between two groups of the same batch reads zero;
	// the next group's items then re-enter processing.
	orderRepo.On("GetSyncCounts", mock.Anything, orderID).Return(&repository.SyncCounts{Processing: 0}, nil).Once()
	orderRepo.On("GetSyncCounts", mock.Anything, orderID).Return(&repository.SyncCounts{Processing: 3}, nil).Once()
	orderRepo.On("GetSyncCounts", mock.Anything, orderID).Return(&repository.SyncCounts{Processing: 0}, nil).Twice()

	var observations []int
	err := tracker.Watch(context.Background(), orderID, time.Millisecond, func(c *repository.SyncCounts) {
		observations = append(observations, c.Processing)
	})

	assert.NoError(t, err)
	assert.Equal(t, []int{0, 3, 0, 0}, observations)
	orderRepo.AssertExpectations(t)
}

func TestWatch_CancellationStopsWatch(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	tracker := newTestTracker(orderRepo)
	orderID := uuid.New()

	orderRepo.On("GetSyncCounts", mock.Anything, orderID).Return(&repository.SyncCounts{Processing: 1}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- tracker.Watch(ctx, orderID, time.Millisecond, nil)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("watch did not stop after cancellation")
	}
}
