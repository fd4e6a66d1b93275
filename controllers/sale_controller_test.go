package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-service/middleware"
	"pos-service/models"
	"pos-service/repository"
	"pos-service/services"
)

const testSecret = "test-secret"

type fakeFinalizer struct {
	lastRequest services.FinalizeRequest
	calls       int
	finalizeFn  func(ctx context.Context, req services.FinalizeRequest) (*models.Sale, error)
}

func (f *fakeFinalizer) FinalizeSale(ctx context.Context, req services.FinalizeRequest) (*models.Sale, error) {
	f.calls++
	f.lastRequest = req
	if f.finalizeFn != nil {
		return f.finalizeFn(ctx, req)
	}
	return &models.Sale{
		ID:         "sale-1",
		SaleNumber: "SALE-20260901-150405-abcd1234",
		Total:      decimal.RequireFromString("21.58"),
		Status:     models.SaleStatusCompleted,
	}, nil
}

func newSaleRouter(finalizer SaleFinalizer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api")
	api.Use(middleware.RequireAuth(testSecret))
	api.POST("/sales", NewSaleController(finalizer).CreateSale)
	return router
}

func bearerToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "u1",
		"role":    "cashier",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func postSale(t *testing.T, router *gin.Engine, body string, auth string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/sales", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

const validSaleBody = `{
	"customer_id": "cust-1",
	"items": [{"product_id": "p1", "quantity": 2, "unit_price": 9.99}],
	"payment_method": "cash"
}`

func TestCreateSaleSuccess(t *testing.T) {
	finalizer := &fakeFinalizer{}
	router := newSaleRouter(finalizer)

	recorder := postSale(t, router, validSaleBody, bearerToken(t))
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	assert.Equal(t, 1, finalizer.calls)
	assert.Equal(t, "cust-1", finalizer.lastRequest.CustomerID)
	assert.Equal(t, "cash", finalizer.lastRequest.PaymentMethod)
	require.Len(t, finalizer.lastRequest.Items, 1)
	assert.Equal(t, 2, finalizer.lastRequest.Items[0].Quantity)
	assert.True(t, finalizer.lastRequest.Items[0].UnitPrice.Equal(decimal.RequireFromString("9.99")))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, "SALE-20260901-150405-abcd1234", resp["sale_number"])
}

func TestCreateSaleRequiresBearerToken(t *testing.T) {
	finalizer := &fakeFinalizer{}
	router := newSaleRouter(finalizer)

	recorder := postSale(t, router, validSaleBody, "")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = postSale(t, router, validSaleBody, "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	assert.Equal(t, 0, finalizer.calls, "finalizer must not run without a valid credential")
}

func TestCreateSaleInsufficientStock(t *testing.T) {
	finalizer := &fakeFinalizer{
		finalizeFn: func(context.Context, services.FinalizeRequest) (*models.Sale, error) {
			return nil, fmt.Errorf("%w: %w", services.ErrInsufficientStock, &repository.StockShortageError{
				ProductID: "p1",
				Requested: 5,
				Available: 2,
			})
		},
	}
	router := newSaleRouter(finalizer)

	recorder := postSale(t, router, validSaleBody, bearerToken(t))
	require.Equal(t, http.StatusConflict, recorder.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, "insufficient_stock", resp["error"])
	assert.Equal(t, "p1", resp["product_id"])
	assert.EqualValues(t, 5, resp["requested"])
	assert.EqualValues(t, 2, resp["available"])
}

func TestCreateSaleValidationErrors(t *testing.T) {
	finalizer := &fakeFinalizer{
		finalizeFn: func(context.Context, services.FinalizeRequest) (*models.Sale, error) {
			return nil, fmt.Errorf("%w: empty item list", services.ErrValidation)
		},
	}
	router := newSaleRouter(finalizer)

	// Malformed body is rejected before the finalizer runs.
	recorder := postSale(t, router, `{"items": "nope"}`, bearerToken(t))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, 0, finalizer.calls)

	// Structurally valid but semantically bad payloads surface the
	// finalizer's validation error.
	recorder = postSale(t, router, `{"items": [], "payment_method": "cash"}`, bearerToken(t))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestCreateSaleTransientFailure(t *testing.T) {
	finalizer := &fakeFinalizer{
		finalizeFn: func(context.Context, services.FinalizeRequest) (*models.Sale, error) {
			return nil, fmt.Errorf("persist sale: storage unreachable")
		},
	}
	router := newSaleRouter(finalizer)

	recorder := postSale(t, router, validSaleBody, bearerToken(t))
	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
}
