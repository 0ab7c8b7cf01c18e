package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"time"

	"buysell_back_end/internal/models"
	"buysell_back_end/internal/utils"

	"github.com/google/uuid"
)

// How many times order creation regenerates the transaction id after a
// store-level collision before giving up.
const maxTransactionRetries = 3

// CatalogLookup resolves an item id to its price and owning seller.
type CatalogLookup interface {
	ResolveItem(ctx context.Context, itemID string) (*models.Item, error)
}

// CartReader is what the order flow needs from the cart store: read the
// pending lines and clear them once the order is durable.
type CartReader interface {
	ReadAll(ctx context.Context, userID string) ([]models.CartItem, error)
	Clear(ctx context.Context, userID string) error
}

// OrderStore is the persistence contract for orders.
type OrderStore interface {
	Insert(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, orderID string) (*models.Order, error)
	FindByTransactionID(ctx context.Context, txnID string) (*models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	CountAll(ctx context.Context) (int64, error)
	SumAmount(ctx context.Context) (float64, error)
	SumAmountByDay(ctx context.Context) ([]models.DailySales, error)
	ListByBuyerAndStatus(ctx context.Context, buyerID string, status models.OrderStatus) ([]models.Order, error)
	ListBySellerAndStatus(ctx context.Context, sellerID string, status models.OrderStatus) ([]models.Order, error)
	UpdateStatus(ctx context.Context, orderID string, from, to models.OrderStatus) (bool, error)
}

type OrderService struct {
	store   OrderStore
	catalog CatalogLookup
	cart    CartReader
}

// Orders is the process-wide order service, wired in main.
var Orders *OrderService

func InitOrderService(store OrderStore, catalog CatalogLookup, cart CartReader) {
	Orders = NewOrderService(store, catalog, cart)
	log.Println("✅ Order service initialised")
}

func NewOrderService(store OrderStore, catalog CatalogLookup, cart CartReader) *OrderService {
	return &OrderService{store: store, catalog: catalog, cart: cart}
}

// BuildOrderDraft turns a resolved cart snapshot into an order draft:
// lines grouped per seller (first-seen order), amount = Σ price×qty.
// The grouping map is local to the call, nothing is shared across requests.
func BuildOrderDraft(buyerID string, snapshot []models.CartSnapshotEntry) (*models.Order, error) {
	if len(snapshot) == 0 {
		return nil, models.ErrEmptyCart
	}

	groupIndex := make(map[string]int)
	var sellers []models.SellerGroup
	var amount float64

	for _, entry := range snapshot {
		idx, ok := groupIndex[entry.SellerID]
		if !ok {
			idx = len(sellers)
			groupIndex[entry.SellerID] = idx
			sellers = append(sellers, models.SellerGroup{SellerID: entry.SellerID})
		}
		sellers[idx].Items = append(sellers[idx].Items, models.OrderItem{
			ItemID:   entry.ItemID,
			Quantity: entry.Quantity,
		})
		amount += entry.UnitPrice * float64(entry.Quantity)
	}

	now := time.Now().UTC()
	return &models.Order{
		ID:            uuid.NewString(),
		TransactionID: NewTransactionID(),
		BuyerID:       buyerID,
		Sellers:       sellers,
		Amount:        amount,
		Status:        models.OrderStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// NewTransactionID builds the external order handle: creation timestamp
// plus a random suffix. The store still enforces uniqueness.
func NewTransactionID() string {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		// rand.Reader failing means the process is in real trouble
		panic(err)
	}
	return fmt.Sprintf("TXN-%d-%04d", time.Now().UnixMilli(), n)
}

// CreateOrder converts the buyer's cart into a persisted order and
// returns it together with the plaintext confirmation code. The code is
// exposed exactly once, here; only its bcrypt hash is stored.
//
// Side-effect ordering: the order is persisted first, the cart cleared
// after. A crash in between leaves a stale cart next to a durable order,
// never an order-less empty cart.
func (s *OrderService) CreateOrder(ctx context.Context, buyerID string) (*models.Order, string, error) {
	cartItems, err := s.cart.ReadAll(ctx, buyerID)
	if err != nil {
		return nil, "", err
	}
	if len(cartItems) == 0 {
		return nil, "", models.ErrEmptyCart
	}

	snapshot := make([]models.CartSnapshotEntry, 0, len(cartItems))
	for _, line := range cartItems {
		item, err := s.catalog.ResolveItem(ctx, line.ItemID)
		if err != nil {
			return nil, "", err
		}
		snapshot = append(snapshot, models.CartSnapshotEntry{
			ItemID:    item.ID,
			Quantity:  line.Quantity,
			UnitPrice: item.Price,
			SellerID:  item.SellerID,
		})
	}

	order, err := BuildOrderDraft(buyerID, snapshot)
	if err != nil {
		return nil, "", err
	}

	otp, err := utils.GenerateOTP()
	if err != nil {
		return nil, "", err
	}
	order.HashedOTP, err = utils.HashOTP(otp)
	if err != nil {
		return nil, "", err
	}

	// Persist, regenerating the transaction id on a collision
	for attempt := 0; ; attempt++ {
		err = s.store.Insert(ctx, order)
		if err == nil {
			break
		}
		if err == models.ErrDuplicateTransaction && attempt < maxTransactionRetries {
			order.TransactionID = NewTransactionID()
			continue
		}
		return nil, "", err
	}

	// Order is durable, now clear the cart. A failure here is logged
	// only: the buyer ends up with a stale cart, not a lost order.
	if err := s.cart.Clear(ctx, buyerID); err != nil {
		log.Printf("⚠️ cart clear failed for user %s after order %s: %v", buyerID, order.ID, err)
	}

	return order, otp, nil
}

// GetOrder returns an order to its buyer or one of its sellers.
func (s *OrderService) GetOrder(ctx context.Context, orderID, callerID string) (*models.Order, error) {
	order, err := s.store.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.ParticipantRole(callerID) == models.ParticipantNone {
		return nil, models.ErrForbidden
	}
	return order, nil
}

// ConfirmOrder marks a pending order Completed once the buyer identity
// and confirmation code both check out. Confirming an already-Completed
// order with a still-correct code is an idempotent no-op.
func (s *OrderService) ConfirmOrder(ctx context.Context, transactionID, claimedBuyerID, otp string) (*models.Order, error) {
	order, err := s.store.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if order.BuyerID != claimedBuyerID {
		return nil, models.ErrForbidden
	}

	if !utils.VerifyOTP(otp, order.HashedOTP) {
		return nil, models.ErrInvalidOTP
	}

	applied, err := s.store.UpdateStatus(ctx, order.ID, models.OrderStatusPending, models.OrderStatusCompleted)
	if err != nil {
		return nil, err
	}
	if !applied && order.Status != models.OrderStatusCompleted {
		// Lost the race against a concurrent confirmation
		fresh, err := s.store.FindByID(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		order = fresh
	}
	order.Status = models.OrderStatusCompleted

	return order, nil
}

// ListAllOrders is the unrestricted listing behind GET /api/order.
func (s *OrderService) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	return s.store.ListAll(ctx)
}

// ListForBuyer returns the caller's purchases; empty status means all.
func (s *OrderService) ListForBuyer(ctx context.Context, buyerID string, status models.OrderStatus) ([]models.Order, error) {
	return s.store.ListByBuyerAndStatus(ctx, buyerID, status)
}

// ListForSeller returns orders containing one of the caller's seller
// groups; empty status means all.
func (s *OrderService) ListForSeller(ctx context.Context, sellerID string, status models.OrderStatus) ([]models.Order, error) {
	return s.store.ListBySellerAndStatus(ctx, sellerID, status)
}

func (s *OrderService) TotalOrders(ctx context.Context) (int64, error) {
	return s.store.CountAll(ctx)
}

func (s *OrderService) TotalSales(ctx context.Context) (float64, error) {
	return s.store.SumAmount(ctx)
}

func (s *OrderService) SalesByDay(ctx context.Context) ([]models.DailySales, error) {
	return s.store.SumAmountByDay(ctx)
}
