package services

import (
	"context"
	"regexp"
	"testing"

	"buysell_back_end/internal/models"
	"buysell_back_end/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------
// In-memory fakes
// ---------------------------------------------------------------------

type fakeStore struct {
	byID  map[string]*models.Order
	byTxn map[string]string

	insertCalls   int
	failNextTxns  int      // force ErrDuplicateTransaction this many times
	seenTxns      []string // every transaction id Insert was called with
	updateApplied bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		byID:  make(map[string]*models.Order),
		byTxn: make(map[string]string),
	}
}

func (f *fakeStore) Insert(ctx context.Context, o *models.Order) error {
	f.insertCalls++
	f.seenTxns = append(f.seenTxns, o.TransactionID)
	if f.failNextTxns > 0 {
		f.failNextTxns--
		return models.ErrDuplicateTransaction
	}
	if _, taken := f.byTxn[o.TransactionID]; taken {
		return models.ErrDuplicateTransaction
	}
	cp := *o
	f.byID[o.ID] = &cp
	f.byTxn[o.TransactionID] = o.ID
	return nil
}

func (f *fakeStore) FindByID(ctx context.Context, orderID string) (*models.Order, error) {
	o, ok := f.byID[orderID]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeStore) FindByTransactionID(ctx context.Context, txnID string) (*models.Order, error) {
	id, ok := f.byTxn[txnID]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	return f.FindByID(ctx, id)
}

func (f *fakeStore) ListAll(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	for _, o := range f.byID {
		orders = append(orders, *o)
	}
	return orders, nil
}

func (f *fakeStore) CountAll(ctx context.Context) (int64, error) {
	return int64(len(f.byID)), nil
}

func (f *fakeStore) SumAmount(ctx context.Context) (float64, error) {
	var total float64
	for _, o := range f.byID {
		total += o.Amount
	}
	return total, nil
}

func (f *fakeStore) SumAmountByDay(ctx context.Context) ([]models.DailySales, error) {
	return nil, nil
}

func (f *fakeStore) ListByBuyerAndStatus(ctx context.Context, buyerID string, status models.OrderStatus) ([]models.Order, error) {
	var orders []models.Order
	for _, o := range f.byID {
		if o.BuyerID != buyerID {
			continue
		}
		if status != "" && o.Status != status {
			continue
		}
		orders = append(orders, *o)
	}
	return orders, nil
}

func (f *fakeStore) ListBySellerAndStatus(ctx context.Context, sellerID string, status models.OrderStatus) ([]models.Order, error) {
	var orders []models.Order
	for _, o := range f.byID {
		if o.ParticipantRole(sellerID) != models.ParticipantSeller {
			continue
		}
		if status != "" && o.Status != status {
			continue
		}
		orders = append(orders, *o)
	}
	return orders, nil
}

func (f *fakeStore) UpdateStatus(ctx context.Context, orderID string, from, to models.OrderStatus) (bool, error) {
	o, ok := f.byID[orderID]
	if !ok {
		return false, nil
	}
	if o.Status != from {
		f.updateApplied = false
		return false, nil
	}
	o.Status = to
	f.updateApplied = true
	return true, nil
}

type fakeCatalog struct {
	items map[string]models.Item
}

func (f *fakeCatalog) ResolveItem(ctx context.Context, itemID string) (*models.Item, error) {
	item, ok := f.items[itemID]
	if !ok {
		return nil, models.ErrItemNotFound
	}
	return &item, nil
}

type fakeCart struct {
	lines   map[string][]models.CartItem
	cleared []string
}

func (f *fakeCart) ReadAll(ctx context.Context, userID string) ([]models.CartItem, error) {
	return f.lines[userID], nil
}

func (f *fakeCart) Clear(ctx context.Context, userID string) error {
	delete(f.lines, userID)
	f.cleared = append(f.cleared, userID)
	return nil
}

func newService(store *fakeStore, catalog *fakeCatalog, cart *fakeCart) *OrderService {
	return NewOrderService(store, catalog, cart)
}

// ---------------------------------------------------------------------
// Drafting
// ---------------------------------------------------------------------

func TestBuildOrderDraft(t *testing.T) {
	t.Run("empty snapshot is rejected", func(t *testing.T) {
		_, err := BuildOrderDraft("buyer-1", nil)
		assert.Equal(t, models.ErrEmptyCart, err)
	})

	t.Run("amount is the sum of price times quantity", func(t *testing.T) {
		order, err := BuildOrderDraft("buyer-1", []models.CartSnapshotEntry{
			{ItemID: "item-a", Quantity: 2, UnitPrice: 10, SellerID: "seller-1"},
			{ItemID: "item-b", Quantity: 1, UnitPrice: 5, SellerID: "seller-2"},
		})
		require.NoError(t, err)
		assert.Equal(t, 25.0, order.Amount)
	})

	t.Run("lines are grouped per seller in first-seen order", func(t *testing.T) {
		order, err := BuildOrderDraft("buyer-1", []models.CartSnapshotEntry{
			{ItemID: "item-a", Quantity: 1, UnitPrice: 3, SellerID: "seller-2"},
			{ItemID: "item-b", Quantity: 2, UnitPrice: 4, SellerID: "seller-1"},
			{ItemID: "item-c", Quantity: 1, UnitPrice: 2, SellerID: "seller-2"},
		})
		require.NoError(t, err)

		require.Len(t, order.Sellers, 2)
		assert.Equal(t, "seller-2", order.Sellers[0].SellerID)
		assert.Equal(t, "seller-1", order.Sellers[1].SellerID)

		assert.Equal(t, []models.OrderItem{
			{ItemID: "item-a", Quantity: 1},
			{ItemID: "item-c", Quantity: 1},
		}, order.Sellers[0].Items)
		assert.Equal(t, []models.OrderItem{
			{ItemID: "item-b", Quantity: 2},
		}, order.Sellers[1].Items)
	})

	t.Run("draft starts pending with fresh ids", func(t *testing.T) {
		order, err := BuildOrderDraft("buyer-1", []models.CartSnapshotEntry{
			{ItemID: "item-a", Quantity: 1, UnitPrice: 1, SellerID: "seller-1"},
		})
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusPending, order.Status)
		assert.NotEmpty(t, order.ID)
		assert.Regexp(t, `^TXN-\d+-\d{4}$`, order.TransactionID)
	})
}

func TestNewTransactionID(t *testing.T) {
	re := regexp.MustCompile(`^TXN-\d+-\d{4}$`)
	for i := 0; i < 50; i++ {
		assert.Regexp(t, re, NewTransactionID())
	}
}

// ---------------------------------------------------------------------
// Creation
// ---------------------------------------------------------------------

func catalogWithDefaults() *fakeCatalog {
	return &fakeCatalog{items: map[string]models.Item{
		"item-a": {ID: "item-a", Name: "Calculator", Price: 10, SellerID: "3d9e4a6e-0001-4000-8000-000000000001"},
		"item-b": {ID: "item-b", Name: "Notebook", Price: 5, SellerID: "3d9e4a6e-0002-4000-8000-000000000002"},
	}}
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()
	buyer := "7b1f2c3d-0000-4000-8000-000000000042"

	t.Run("empty cart places nothing", func(t *testing.T) {
		store := newFakeStore()
		cart := &fakeCart{lines: map[string][]models.CartItem{}}
		svc := newService(store, catalogWithDefaults(), cart)

		_, _, err := svc.CreateOrder(ctx, buyer)
		assert.Equal(t, models.ErrEmptyCart, err)
		assert.Zero(t, store.insertCalls)
		assert.Empty(t, cart.cleared)
	})

	t.Run("vanished cart item aborts creation", func(t *testing.T) {
		store := newFakeStore()
		cart := &fakeCart{lines: map[string][]models.CartItem{
			buyer: {{ItemID: "item-gone", Quantity: 1}},
		}}
		svc := newService(store, catalogWithDefaults(), cart)

		_, _, err := svc.CreateOrder(ctx, buyer)
		assert.Equal(t, models.ErrItemNotFound, err)
		assert.Zero(t, store.insertCalls)
		assert.Empty(t, cart.cleared)
	})

	t.Run("places the order and clears the cart", func(t *testing.T) {
		store := newFakeStore()
		cart := &fakeCart{lines: map[string][]models.CartItem{
			buyer: {
				{ItemID: "item-a", Quantity: 2},
				{ItemID: "item-b", Quantity: 1},
			},
		}}
		svc := newService(store, catalogWithDefaults(), cart)

		order, otp, err := svc.CreateOrder(ctx, buyer)
		require.NoError(t, err)

		assert.Equal(t, 25.0, order.Amount)
		assert.Equal(t, buyer, order.BuyerID)
		assert.Equal(t, models.OrderStatusPending, order.Status)
		assert.Len(t, order.Sellers, 2)

		// The plaintext code verifies against the stored hash and is
		// never the hash itself
		assert.Regexp(t, `^\d{6}$`, otp)
		assert.True(t, utils.VerifyOTP(otp, order.HashedOTP))
		assert.NotEqual(t, otp, order.HashedOTP)

		persisted, err := store.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, order.TransactionID, persisted.TransactionID)

		assert.Equal(t, []string{buyer}, cart.cleared)
	})

	t.Run("regenerates the transaction id on a collision", func(t *testing.T) {
		store := newFakeStore()
		store.failNextTxns = 2
		cart := &fakeCart{lines: map[string][]models.CartItem{
			buyer: {{ItemID: "item-a", Quantity: 1}},
		}}
		svc := newService(store, catalogWithDefaults(), cart)

		order, _, err := svc.CreateOrder(ctx, buyer)
		require.NoError(t, err)

		assert.Equal(t, 3, store.insertCalls)
		require.Len(t, store.seenTxns, 3)
		assert.NotEqual(t, store.seenTxns[0], store.seenTxns[2])
		assert.Equal(t, store.seenTxns[2], order.TransactionID)
	})

	t.Run("gives up after too many collisions", func(t *testing.T) {
		store := newFakeStore()
		store.failNextTxns = 100
		cart := &fakeCart{lines: map[string][]models.CartItem{
			buyer: {{ItemID: "item-a", Quantity: 1}},
		}}
		svc := newService(store, catalogWithDefaults(), cart)

		_, _, err := svc.CreateOrder(ctx, buyer)
		assert.Equal(t, models.ErrDuplicateTransaction, err)
		assert.Empty(t, cart.cleared)
	})
}

// ---------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------

func placeOrder(t *testing.T, svc *OrderService, store *fakeStore, cart *fakeCart, buyer string) (*models.Order, string) {
	t.Helper()
	cart.lines[buyer] = []models.CartItem{
		{ItemID: "item-a", Quantity: 2},
		{ItemID: "item-b", Quantity: 1},
	}
	order, otp, err := svc.CreateOrder(context.Background(), buyer)
	require.NoError(t, err)
	return order, otp
}

func TestGetOrder(t *testing.T) {
	ctx := context.Background()
	buyer := "7b1f2c3d-0000-4000-8000-000000000042"

	store := newFakeStore()
	cart := &fakeCart{lines: map[string][]models.CartItem{}}
	catalog := catalogWithDefaults()
	svc := newService(store, catalog, cart)

	order, _ := placeOrder(t, svc, store, cart, buyer)

	t.Run("buyer can read", func(t *testing.T) {
		got, err := svc.GetOrder(ctx, order.ID, buyer)
		require.NoError(t, err)
		assert.Equal(t, order.ID, got.ID)
	})

	t.Run("seller can read", func(t *testing.T) {
		seller := catalog.items["item-a"].SellerID
		got, err := svc.GetOrder(ctx, order.ID, seller)
		require.NoError(t, err)
		assert.Equal(t, order.ID, got.ID)
	})

	t.Run("stranger is rejected", func(t *testing.T) {
		_, err := svc.GetOrder(ctx, order.ID, "someone-else")
		assert.Equal(t, models.ErrForbidden, err)
	})

	t.Run("unknown order", func(t *testing.T) {
		_, err := svc.GetOrder(ctx, "nope", buyer)
		assert.Equal(t, models.ErrOrderNotFound, err)
	})
}

// ---------------------------------------------------------------------
// Confirmation
// ---------------------------------------------------------------------

func TestConfirmOrder(t *testing.T) {
	ctx := context.Background()
	buyer := "7b1f2c3d-0000-4000-8000-000000000042"

	setup := func(t *testing.T) (*OrderService, *fakeStore, *models.Order, string) {
		store := newFakeStore()
		cart := &fakeCart{lines: map[string][]models.CartItem{}}
		svc := newService(store, catalogWithDefaults(), cart)
		order, otp := placeOrder(t, svc, store, cart, buyer)
		return svc, store, order, otp
	}

	t.Run("correct code completes the order", func(t *testing.T) {
		svc, store, order, otp := setup(t)

		got, err := svc.ConfirmOrder(ctx, order.TransactionID, buyer, otp)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusCompleted, got.Status)

		persisted, err := store.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusCompleted, persisted.Status)
	})

	t.Run("wrong code leaves the order pending", func(t *testing.T) {
		svc, store, order, otp := setup(t)

		wrong := "000000"
		if wrong == otp {
			wrong = "000001"
		}
		_, err := svc.ConfirmOrder(ctx, order.TransactionID, buyer, wrong)
		assert.Equal(t, models.ErrInvalidOTP, err)

		persisted, err := store.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusPending, persisted.Status)
	})

	t.Run("buyer mismatch is rejected before the code is checked", func(t *testing.T) {
		svc, store, order, otp := setup(t)

		_, err := svc.ConfirmOrder(ctx, order.TransactionID, "impostor", otp)
		assert.Equal(t, models.ErrForbidden, err)

		persisted, err := store.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusPending, persisted.Status)
	})

	t.Run("unknown transaction id", func(t *testing.T) {
		svc, _, _, otp := setup(t)
		_, err := svc.ConfirmOrder(ctx, "TXN-0-0000", buyer, otp)
		assert.Equal(t, models.ErrOrderNotFound, err)
	})

	t.Run("re-confirming a completed order is a no-op", func(t *testing.T) {
		svc, store, order, otp := setup(t)

		_, err := svc.ConfirmOrder(ctx, order.TransactionID, buyer, otp)
		require.NoError(t, err)

		got, err := svc.ConfirmOrder(ctx, order.TransactionID, buyer, otp)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusCompleted, got.Status)

		persisted, err := store.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusCompleted, persisted.Status)
	})
}

// ---------------------------------------------------------------------
// Listings and reports
// ---------------------------------------------------------------------

func TestListingsAndTotals(t *testing.T) {
	ctx := context.Background()
	buyer := "7b1f2c3d-0000-4000-8000-000000000042"

	store := newFakeStore()
	cart := &fakeCart{lines: map[string][]models.CartItem{}}
	catalog := catalogWithDefaults()
	svc := newService(store, catalog, cart)

	first, otp := placeOrder(t, svc, store, cart, buyer)
	second, _ := placeOrder(t, svc, store, cart, buyer)

	_, err := svc.ConfirmOrder(ctx, first.TransactionID, buyer, otp)
	require.NoError(t, err)

	t.Run("buyer listing filters by status", func(t *testing.T) {
		all, err := svc.ListForBuyer(ctx, buyer, "")
		require.NoError(t, err)
		assert.Len(t, all, 2)

		pending, err := svc.ListForBuyer(ctx, buyer, models.OrderStatusPending)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, second.ID, pending[0].ID)

		completed, err := svc.ListForBuyer(ctx, buyer, models.OrderStatusCompleted)
		require.NoError(t, err)
		require.Len(t, completed, 1)
		assert.Equal(t, first.ID, completed[0].ID)
	})

	t.Run("seller listing sees both orders", func(t *testing.T) {
		seller := catalog.items["item-a"].SellerID
		sold, err := svc.ListForSeller(ctx, seller, "")
		require.NoError(t, err)
		assert.Len(t, sold, 2)
	})

	t.Run("totals", func(t *testing.T) {
		count, err := svc.TotalOrders(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		total, err := svc.TotalSales(ctx)
		require.NoError(t, err)
		assert.Equal(t, 50.0, total)
	})
}
