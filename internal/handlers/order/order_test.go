package order

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"buysell_back_end/internal/models"
	"buysell_back_end/internal/services"
	"buysell_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Minimal in-memory backends so the handlers run without ScyllaDB or Redis.

type memStore struct {
	byID  map[string]*models.Order
	byTxn map[string]string
}

func newMemStore() *memStore {
	return &memStore{byID: map[string]*models.Order{}, byTxn: map[string]string{}}
}

func (m *memStore) Insert(ctx context.Context, o *models.Order) error {
	if _, taken := m.byTxn[o.TransactionID]; taken {
		return models.ErrDuplicateTransaction
	}
	cp := *o
	m.byID[o.ID] = &cp
	m.byTxn[o.TransactionID] = o.ID
	return nil
}

func (m *memStore) FindByID(ctx context.Context, orderID string) (*models.Order, error) {
	o, ok := m.byID[orderID]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memStore) FindByTransactionID(ctx context.Context, txnID string) (*models.Order, error) {
	id, ok := m.byTxn[txnID]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	return m.FindByID(ctx, id)
}

func (m *memStore) ListAll(ctx context.Context) ([]models.Order, error) {
	orders := make([]models.Order, 0, len(m.byID))
	for _, o := range m.byID {
		orders = append(orders, *o)
	}
	return orders, nil
}

func (m *memStore) CountAll(ctx context.Context) (int64, error) {
	return int64(len(m.byID)), nil
}

func (m *memStore) SumAmount(ctx context.Context) (float64, error) {
	var total float64
	for _, o := range m.byID {
		total += o.Amount
	}
	return total, nil
}

func (m *memStore) SumAmountByDay(ctx context.Context) ([]models.DailySales, error) {
	return nil, nil
}

func (m *memStore) ListByBuyerAndStatus(ctx context.Context, buyerID string, status models.OrderStatus) ([]models.Order, error) {
	var orders []models.Order
	for _, o := range m.byID {
		if o.BuyerID == buyerID && (status == "" || o.Status == status) {
			orders = append(orders, *o)
		}
	}
	return orders, nil
}

func (m *memStore) ListBySellerAndStatus(ctx context.Context, sellerID string, status models.OrderStatus) ([]models.Order, error) {
	var orders []models.Order
	for _, o := range m.byID {
		if o.ParticipantRole(sellerID) == models.ParticipantSeller && (status == "" || o.Status == status) {
			orders = append(orders, *o)
		}
	}
	return orders, nil
}

func (m *memStore) UpdateStatus(ctx context.Context, orderID string, from, to models.OrderStatus) (bool, error) {
	o, ok := m.byID[orderID]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	return true, nil
}

type memCatalog struct {
	items map[string]models.Item
}

func (m *memCatalog) ResolveItem(ctx context.Context, itemID string) (*models.Item, error) {
	item, ok := m.items[itemID]
	if !ok {
		return nil, models.ErrItemNotFound
	}
	return &item, nil
}

type memCart struct {
	lines map[string][]models.CartItem
}

func (m *memCart) ReadAll(ctx context.Context, userID string) ([]models.CartItem, error) {
	return m.lines[userID], nil
}

func (m *memCart) Clear(ctx context.Context, userID string) error {
	delete(m.lines, userID)
	return nil
}

// newTestRouter wires the order routes behind a stub auth middleware that
// injects the given user id.
func newTestRouter(userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	auth := func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	}

	api := r.Group("/api/order")
	api.GET("/", GetOrders)
	api.POST("/", auth, CreateOrder)
	api.POST("/:id/pay", auth, CompleteOrder)
	return r
}

func seedBackends(buyer string) (*memStore, *memCart) {
	store := newMemStore()
	cart := &memCart{lines: map[string][]models.CartItem{
		buyer: {
			{ItemID: "item-a", Quantity: 2},
			{ItemID: "item-b", Quantity: 1},
		},
	}}
	catalog := &memCatalog{items: map[string]models.Item{
		"item-a": {ID: "item-a", Name: "Calculator", Price: 10, SellerID: "seller-1"},
		"item-b": {ID: "item-b", Name: "Notebook", Price: 5, SellerID: "seller-2"},
	}}
	services.InitOrderService(store, catalog, cart)
	return store, cart
}

func TestCreateOrderEndpoint(t *testing.T) {
	buyer := "buyer-42"

	t.Run("empty cart is a 400", func(t *testing.T) {
		_, cart := seedBackends(buyer)
		cart.lines = map[string][]models.CartItem{}

		r := newTestRouter(buyer)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/order/", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Your cart is empty.")
	})

	t.Run("success returns the order and the one-time code", func(t *testing.T) {
		store, _ := seedBackends(buyer)

		r := newTestRouter(buyer)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/order/", nil)
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Message string       `json:"message"`
			Order   models.Order `json:"order"`
			OTP     string       `json:"otp"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

		assert.Equal(t, "Order placed successfully.", resp.Message)
		assert.Equal(t, 25.0, resp.Order.Amount)
		assert.Regexp(t, `^\d{6}$`, resp.OTP)

		persisted, err := store.FindByID(context.Background(), resp.Order.ID)
		require.NoError(t, err)
		assert.True(t, utils.VerifyOTP(resp.OTP, persisted.HashedOTP))
	})
}

func TestCompleteOrderEndpoint(t *testing.T) {
	buyer := "buyer-42"

	place := func(t *testing.T, r *gin.Engine) (models.Order, string) {
		t.Helper()
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/order/", nil)
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Order models.Order `json:"order"`
			OTP   string       `json:"otp"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp.Order, resp.OTP
	}

	pay := func(r *gin.Engine, txnID string, body gin.H) *httptest.ResponseRecorder {
		payload, _ := json.Marshal(body)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/order/"+txnID+"/pay", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("missing fields are a 400", func(t *testing.T) {
		seedBackends(buyer)
		r := newTestRouter(buyer)
		order, _ := place(t, r)

		w := pay(r, order.TransactionID, gin.H{"buyerId": buyer})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("wrong code is a 401", func(t *testing.T) {
		seedBackends(buyer)
		r := newTestRouter(buyer)
		order, otp := place(t, r)

		wrong := "000000"
		if wrong == otp {
			wrong = "000001"
		}
		w := pay(r, order.TransactionID, gin.H{"buyerId": buyer, "otp": wrong})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("buyer mismatch is a 403", func(t *testing.T) {
		seedBackends(buyer)
		r := newTestRouter(buyer)
		order, otp := place(t, r)

		w := pay(r, order.TransactionID, gin.H{"buyerId": "impostor", "otp": otp})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unknown transaction id is a 404", func(t *testing.T) {
		seedBackends(buyer)
		r := newTestRouter(buyer)

		w := pay(r, "TXN-0-0000", gin.H{"buyerId": buyer, "otp": "123456"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("correct code completes the order", func(t *testing.T) {
		store, _ := seedBackends(buyer)
		r := newTestRouter(buyer)
		order, otp := place(t, r)

		w := pay(r, order.TransactionID, gin.H{"buyerId": buyer, "otp": otp})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Order completed successfully.")

		persisted, err := store.FindByID(context.Background(), order.ID)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusCompleted, persisted.Status)

		// Paying again with the same code stays a 200
		again := pay(r, order.TransactionID, gin.H{"buyerId": buyer, "otp": otp})
		assert.Equal(t, http.StatusOK, again.Code)
	})
}
