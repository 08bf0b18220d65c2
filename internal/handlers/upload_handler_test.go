package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"catalog-sync-service/internal/models"
	"catalog-sync-service/internal/repository"
	"catalog-sync-service/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a mock implementation of OrderRepositoryInterface
type MockOrderRepository struct {
	mock.Mock
}

var _ repository.OrderRepositoryInterface = (*MockOrderRepository)(nil)

func (m *MockOrderRepository) GetOrder(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PurchaseOrder), args.Error(1)
}

func (m *MockOrderRepository) ListItems(ctx context.Context, orderID uuid.UUID) ([]models.PurchaseOrderItem, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]models.PurchaseOrderItem), args.Error(1)
}

func (m *MockOrderRepository) ListProductCodes(ctx context.Context, tenantID string) ([]string, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockOrderRepository) UpdateItemSyncStatus(ctx context.Context, itemID uuid.UUID, status models.SyncStatus) error {
	args := m.Called(ctx, itemID, status)
	return args.Error(0)
}

func (m *MockOrderRepository) SetItemRemoteProduct(ctx context.Context, itemID uuid.UUID, remoteProductID string) error {
	args := m.Called(ctx, itemID, remoteProductID)
	return args.Error(0)
}

func (m *MockOrderRepository) GetSyncCounts(ctx context.Context, orderID uuid.UUID) (*repository.SyncCounts, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.SyncCounts), args.Error(1)
}

func setupSyncStatusRouter(orderRepo *MockOrderRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	tracker := services.NewStatusTracker(orderRepo, logger)
	handler := NewUploadHandler(nil, tracker, orderRepo, nil)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("tenantId", "tenant-1")
		c.Next()
	})
	router.GET("/api/v1/orders/:id/sync-status", handler.SyncStatus)
	router.GET("/api/v1/orders/:id/items", handler.ListItems)
	return router
}

func TestSyncStatus_GatesDestructiveActionsWhileProcessing(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	router := setupSyncStatusRouter(orderRepo)
	orderID := uuid.New()

	orderRepo.On("GetSyncCounts", mock.Anything, orderID).Return(&repository.SyncCounts{
		Processing: 2,
		Success:    1,
	}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+orderID.String()+"/sync-status", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Counts                    repository.SyncCounts `json:"counts"`
			DestructiveActionsAllowed bool                  `json:"destructiveActionsAllowed"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Data.Counts.Processing)
	assert.False(t, resp.Data.DestructiveActionsAllowed)
}

func TestSyncStatus_AllowsDestructiveActionsWhenDrained(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	router := setupSyncStatusRouter(orderRepo)
	orderID := uuid.New()

	orderRepo.On("GetSyncCounts", mock.Anything, orderID).Return(&repository.SyncCounts{
		Success: 3,
	}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+orderID.String()+"/sync-status", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			DestructiveActionsAllowed bool `json:"destructiveActionsAllowed"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Data.DestructiveActionsAllowed)
}

func TestSyncStatus_InvalidOrderID(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	router := setupSyncStatusRouter(orderRepo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/not-a-uuid/sync-status", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
