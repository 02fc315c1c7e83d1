package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shopkart/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockDiscountService is a mock implementation of service.DiscountService.
type MockDiscountService struct {
	mock.Mock
}

func (m *MockDiscountService) CreateDiscountCode(ctx context.Context, req *model.CreateDiscountRequest) (*model.Discount, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Discount), args.Error(1)
}

func (m *MockDiscountService) ListByShop(ctx context.Context, shopID uuid.UUID, limit, offset int) ([]model.Discount, error) {
	args := m.Called(ctx, shopID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Discount), args.Error(1)
}

func (m *MockDiscountService) GetDiscountAmount(ctx context.Context, req *model.DiscountAmountRequest) (*model.DiscountQuote, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DiscountQuote), args.Error(1)
}

func (m *MockDiscountService) ListApplicableProducts(ctx context.Context, code string, shopID uuid.UUID, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, code, shopID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockDiscountService) CancelDiscountCode(ctx context.Context, req *model.CancelDiscountRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockDiscountService) DeleteDiscountCode(ctx context.Context, code string, shopID uuid.UUID) error {
	args := m.Called(ctx, code, shopID)
	return args.Error(0)
}

func TestDiscountHandler_Create(t *testing.T) {
	logger := zerolog.Nop()

	created := &model.Discount{
		ID:       uuid.New(),
		Code:     "SAVE10",
		Type:     model.DiscountPercentage,
		Value:    decimal.NewFromInt(10),
		IsActive: true,
	}

	tests := []struct {
		name           string
		mockReturn     *model.Discount
		mockError      error
		expectedStatus int
	}{
		{
			name:           "Success",
			mockReturn:     created,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Duplicate code",
			mockError:      model.ErrDiscountCodeExists,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "Invalid date range",
			mockError:      model.ErrInvalidDateRange,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockDiscountService)
			mockService.On("CreateDiscountCode", mock.Anything, mock.AnythingOfType("*model.CreateDiscountRequest")).
				Return(tt.mockReturn, tt.mockError)

			h := NewDiscountHandler(mockService, logger)

			body, err := json.Marshal(&model.CreateDiscountRequest{
				ShopID:    uuid.New(),
				Code:      "SAVE10",
				Name:      "Ten percent off",
				Type:      model.DiscountPercentage,
				Value:     decimal.NewFromInt(10),
				StartDate: time.Now(),
				EndDate:   time.Now().Add(time.Hour),
				AppliesTo: model.AppliesToAllProducts,
			})
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/api/discounts", bytes.NewBuffer(body))
			rec := httptest.NewRecorder()
			h.Collection(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func TestDiscountHandler_List(t *testing.T) {
	logger := zerolog.Nop()
	shopID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockDiscountService)
		mockService.On("ListByShop", mock.Anything, shopID, 10, 0).
			Return([]model.Discount{{ID: uuid.New(), Code: "SAVE10"}}, nil)

		h := NewDiscountHandler(mockService, logger)

		req := httptest.NewRequest(http.MethodGet, "/api/discounts?shopId="+shopID.String(), nil)
		rec := httptest.NewRecorder()
		h.Collection(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var got []model.Discount
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Len(t, got, 1)
	})

	t.Run("Missing shopId", func(t *testing.T) {
		h := NewDiscountHandler(new(MockDiscountService), logger)

		req := httptest.NewRequest(http.MethodGet, "/api/discounts", nil)
		rec := httptest.NewRecorder()
		h.Collection(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDiscountHandler_Amount(t *testing.T) {
	logger := zerolog.Nop()

	amountBody := func(t *testing.T) *bytes.Buffer {
		t.Helper()
		body, err := json.Marshal(&model.DiscountAmountRequest{
			Code:   "SAVE10",
			ShopID: uuid.New(),
			UserID: uuid.New(),
			Items:  []model.LineItem{{ProductID: uuid.New(), Price: decimal.NewFromInt(50), Quantity: 2}},
		})
		require.NoError(t, err)
		return bytes.NewBuffer(body)
	}

	tests := []struct {
		name           string
		mockReturn     *model.DiscountQuote
		mockError      error
		expectedStatus int
	}{
		{
			name: "Success",
			mockReturn: &model.DiscountQuote{
				TotalOrder: decimal.NewFromInt(100),
				Discount:   decimal.NewFromInt(5),
				TotalPrice: decimal.NewFromInt(95),
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Unknown code",
			mockError:      model.ErrDiscountNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Out of window",
			mockError:      model.ErrDiscountOutOfWindow,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Below minimum order",
			mockError:      model.ErrDiscountBelowMin,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Per-user limit",
			mockError:      model.ErrDiscountUserLimit,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockDiscountService)
			mockService.On("GetDiscountAmount", mock.Anything, mock.AnythingOfType("*model.DiscountAmountRequest")).
				Return(tt.mockReturn, tt.mockError)

			h := NewDiscountHandler(mockService, logger)

			req := httptest.NewRequest(http.MethodPost, "/api/discounts/amount", amountBody(t))
			rec := httptest.NewRecorder()
			h.Amount(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)

			if tt.mockError != nil {
				var resp ErrorResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.NotEmpty(t, resp.Code)
			}
		})
	}
}

func TestDiscountHandler_Cancel(t *testing.T) {
	logger := zerolog.Nop()

	cancelBody := func(t *testing.T) *bytes.Buffer {
		t.Helper()
		body, err := json.Marshal(&model.CancelDiscountRequest{
			Code:   "SAVE10",
			ShopID: uuid.New(),
			UserID: uuid.New(),
		})
		require.NoError(t, err)
		return bytes.NewBuffer(body)
	}

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockDiscountService)
		mockService.On("CancelDiscountCode", mock.Anything, mock.AnythingOfType("*model.CancelDiscountRequest")).
			Return(nil)

		h := NewDiscountHandler(mockService, logger)

		req := httptest.NewRequest(http.MethodPost, "/api/discounts/cancel", cancelBody(t))
		rec := httptest.NewRecorder()
		h.Cancel(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Inactive code", func(t *testing.T) {
		mockService := new(MockDiscountService)
		mockService.On("CancelDiscountCode", mock.Anything, mock.AnythingOfType("*model.CancelDiscountRequest")).
			Return(model.ErrDiscountInactive)

		h := NewDiscountHandler(mockService, logger)

		req := httptest.NewRequest(http.MethodPost, "/api/discounts/cancel", cancelBody(t))
		rec := httptest.NewRecorder()
		h.Cancel(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Missing code", func(t *testing.T) {
		h := NewDiscountHandler(new(MockDiscountService), logger)

		req := httptest.NewRequest(http.MethodPost, "/api/discounts/cancel", bytes.NewBufferString("{}"))
		rec := httptest.NewRecorder()
		h.Cancel(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDiscountHandler_Products(t *testing.T) {
	logger := zerolog.Nop()
	shopID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		products := []model.Product{{ID: uuid.New(), ShopID: shopID, Name: "Mug", Price: decimal.NewFromInt(12)}}

		mockService := new(MockDiscountService)
		mockService.On("ListApplicableProducts", mock.Anything, "SAVE10", shopID, 10, 0).
			Return(products, nil)

		h := NewDiscountHandler(mockService, logger)

		req := httptest.NewRequest(http.MethodGet, "/api/discounts/SAVE10/products?shopId="+shopID.String(), nil)
		rec := httptest.NewRecorder()
		h.Products(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var got []model.Product
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "Mug", got[0].Name)
		mockService.AssertExpectations(t)
	})

	t.Run("Unknown code", func(t *testing.T) {
		mockService := new(MockDiscountService)
		mockService.On("ListApplicableProducts", mock.Anything, "NOPE", shopID, 10, 0).
			Return(nil, model.ErrDiscountNotFound)

		h := NewDiscountHandler(mockService, logger)

		req := httptest.NewRequest(http.MethodGet, "/api/discounts/NOPE/products?shopId="+shopID.String(), nil)
		rec := httptest.NewRecorder()
		h.Products(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Missing shop ID", func(t *testing.T) {
		h := NewDiscountHandler(new(MockDiscountService), logger)

		req := httptest.NewRequest(http.MethodGet, "/api/discounts/SAVE10/products", nil)
		rec := httptest.NewRecorder()
		h.Products(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDiscountHandler_Delete(t *testing.T) {
	logger := zerolog.Nop()
	shopID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockDiscountService)
		mockService.On("DeleteDiscountCode", mock.Anything, "SAVE10", shopID).Return(nil)

		h := NewDiscountHandler(mockService, logger)

		req := httptest.NewRequest(http.MethodDelete, "/api/discounts/SAVE10?shopId="+shopID.String(), nil)
		rec := httptest.NewRecorder()
		h.Delete(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Unknown code", func(t *testing.T) {
		mockService := new(MockDiscountService)
		mockService.On("DeleteDiscountCode", mock.Anything, "GONE", shopID).
			Return(model.ErrDiscountNotFound)

		h := NewDiscountHandler(mockService, logger)

		req := httptest.NewRequest(http.MethodDelete, "/api/discounts/GONE?shopId="+shopID.String(), nil)
		rec := httptest.NewRecorder()
		h.Delete(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
