package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"shopkart/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductService is a mock implementation of service.ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func TestProductHandler_GetAll(t *testing.T) {
	logger := zerolog.Nop()

	products := []model.Product{
		{ID: uuid.New(), Name: "Keyboard", Price: decimal.NewFromInt(45), IsPublished: true},
		{ID: uuid.New(), Name: "Mouse", Price: decimal.NewFromInt(25), IsPublished: true},
	}

	tests := []struct {
		name           string
		url            string
		expectedLimit  int
		expectedOffset int
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Defaults",
			url:            "/api/products",
			expectedLimit:  10,
			expectedOffset: 0,
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Explicit pagination",
			url:            "/api/products?limit=5&offset=20",
			expectedLimit:  5,
			expectedOffset: 20,
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Invalid limit",
			url:            "/api/products?limit=abc",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid offset",
			url:            "/api/products?offset=abc",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockProductService)
			if tt.expectService {
				mockService.On("GetAll", mock.Anything, tt.expectedLimit, tt.expectedOffset).
					Return(products, nil)
			}

			h := NewProductHandler(mockService, logger)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			rec := httptest.NewRecorder()
			h.GetAll(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestProductHandler_GetByID(t *testing.T) {
	logger := zerolog.Nop()
	productID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockProductService)
		mockService.On("GetByID", mock.Anything, productID).
			Return(&model.Product{ID: productID, Name: "Keyboard"}, nil)

		h := NewProductHandler(mockService, logger)

		req := httptest.NewRequest(http.MethodGet, "/api/products/"+productID.String(), nil)
		rec := httptest.NewRecorder()
		h.GetByID(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var got model.Product
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Equal(t, productID, got.ID)
	})

	t.Run("Not found", func(t *testing.T) {
		mockService := new(MockProductService)
		mockService.On("GetByID", mock.Anything, productID).
			Return(nil, model.ErrProductNotFound)

		h := NewProductHandler(mockService, logger)

		req := httptest.NewRequest(http.MethodGet, "/api/products/"+productID.String(), nil)
		rec := httptest.NewRecorder()
		h.GetByID(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Invalid ID", func(t *testing.T) {
		h := NewProductHandler(new(MockProductService), logger)

		req := httptest.NewRequest(http.MethodGet, "/api/products/not-a-uuid", nil)
		rec := httptest.NewRecorder()
		h.GetByID(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
