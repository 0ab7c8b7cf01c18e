package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"buysell_back_end/internal/database"
	"buysell_back_end/internal/models"

	"github.com/gocql/gocql"
)

// OrderStore persists orders in the orders keyspace.
//
// Layout (see scripts/scylla_init.cql):
//   - orders           — the document itself, keyed by order_id. Seller
//     groups are stored as a JSON text column.
//   - orders_by_txn    — transaction_id → order_id, claimed with
//     IF NOT EXISTS. This is the authoritative uniqueness guard.
//   - orders_by_buyer  — buyer_id partition, clustered by created_at.
//   - orders_by_seller — one row per (seller, order).
//
// Status lives only in the orders table so the conditional flip stays a
// single-document LWT.
type OrderStore struct{}

func NewOrderStore() *OrderStore {
	return &OrderStore{}
}

// Insert persists a new order. Returns models.ErrDuplicateTransaction if
// the transaction id is already taken; the caller may regenerate and retry.
func (s *OrderStore) Insert(ctx context.Context, o *models.Order) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	orderID, err := gocql.ParseUUID(o.ID)
	if err != nil {
		return fmt.Errorf("invalid order id: %v", err)
	}
	buyerID, err := gocql.ParseUUID(o.BuyerID)
	if err != nil {
		return fmt.Errorf("invalid buyer id: %v", err)
	}

	// 1. Claim the transaction id first — this is the uniqueness guard
	applied, err := session.Query(
		`INSERT INTO orders_by_txn (transaction_id, order_id) VALUES (?, ?) IF NOT EXISTS`,
		o.TransactionID, orderID,
	).WithContext(ctx).MapScanCAS(map[string]interface{}{})
	if err != nil {
		return err
	}
	if !applied {
		return models.ErrDuplicateTransaction
	}

	sellersJSON, err := json.Marshal(o.Sellers)
	if err != nil {
		return err
	}

	// 2. Write the order document
	if err := session.Query(
		`INSERT INTO orders (order_id, transaction_id, buyer_id, sellers, amount, hashed_otp, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		orderID, o.TransactionID, buyerID, string(sellersJSON), o.Amount, o.HashedOTP, string(o.Status), o.CreatedAt, o.UpdatedAt,
	).WithContext(ctx).Exec(); err != nil {
		return err
	}

	// 3. Index rows for the scoped listings. A failed index write is
	// logged and tolerated, the order itself is already durable.
	if err := session.Query(
		`INSERT INTO orders_by_buyer (buyer_id, created_at, order_id) VALUES (?, ?, ?)`,
		buyerID, o.CreatedAt, orderID,
	).WithContext(ctx).Exec(); err != nil {
		log.Printf("⚠️ orders_by_buyer index write failed for %s: %v", o.ID, err)
	}
	for _, group := range o.Sellers {
		sellerID, err := gocql.ParseUUID(group.SellerID)
		if err != nil {
			log.Printf("⚠️ skipping orders_by_seller index, bad seller id %q: %v", group.SellerID, err)
			continue
		}
		if err := session.Query(
			`INSERT INTO orders_by_seller (seller_id, created_at, order_id) VALUES (?, ?, ?)`,
			sellerID, o.CreatedAt, orderID,
		).WithContext(ctx).Exec(); err != nil {
			log.Printf("⚠️ orders_by_seller index write failed for %s: %v", o.ID, err)
		}
	}

	return nil
}

// FindByID looks an order up by its internal id.
func (s *OrderStore) FindByID(ctx context.Context, orderID string) (*models.Order, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	id, err := gocql.ParseUUID(orderID)
	if err != nil {
		return nil, models.ErrOrderNotFound
	}

	var (
		txnID, sellersJSON, hashedOTP, status string
		buyerID                               gocql.UUID
		amount                                float64
		createdAt, updatedAt                  time.Time
	)

	err = session.Query(
		`SELECT transaction_id, buyer_id, sellers, amount, hashed_otp, status, created_at, updated_at
		 FROM orders WHERE order_id = ?`, id,
	).WithContext(ctx).Scan(&txnID, &buyerID, &sellersJSON, &amount, &hashedOTP, &status, &createdAt, &updatedAt)
	if err == gocql.ErrNotFound {
		return nil, models.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	return buildOrder(orderID, txnID, buyerID, sellersJSON, amount, hashedOTP, status, createdAt, updatedAt)
}

// FindByTransactionID resolves the external handle to the order document.
func (s *OrderStore) FindByTransactionID(ctx context.Context, txnID string) (*models.Order, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	var orderID gocql.UUID
	err = session.Query(
		`SELECT order_id FROM orders_by_txn WHERE transaction_id = ?`, txnID,
	).WithContext(ctx).Scan(&orderID)
	if err == gocql.ErrNotFound {
		return nil, models.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	return s.FindByID(ctx, orderID.String())
}

// ListAll returns every order, newest last. No pagination: fine at the
// scale of a campus marketplace.
func (s *OrderStore) ListAll(ctx context.Context) ([]models.Order, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(
		`SELECT order_id, transaction_id, buyer_id, sellers, amount, hashed_otp, status, created_at, updated_at FROM orders`,
	).WithContext(ctx).Iter()

	var (
		orders                                []models.Order
		orderID, buyerID                      gocql.UUID
		txnID, sellersJSON, hashedOTP, status string
		amount                                float64
		createdAt, updatedAt                  time.Time
	)

	for iter.Scan(&orderID, &txnID, &buyerID, &sellersJSON, &amount, &hashedOTP, &status, &createdAt, &updatedAt) {
		o, err := buildOrder(orderID.String(), txnID, buyerID, sellersJSON, amount, hashedOTP, status, createdAt, updatedAt)
		if err != nil {
			log.Printf("⚠️ skipping undecodable order %s: %v", orderID, err)
			continue
		}
		orders = append(orders, *o)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}

	return orders, nil
}

// CountAll returns the total number of orders.
func (s *OrderStore) CountAll(ctx context.Context) (int64, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return 0, err
	}

	var count int64
	if err := session.Query(`SELECT COUNT(*) FROM orders`).WithContext(ctx).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// SumAmount returns the all-time sales total.
func (s *OrderStore) SumAmount(ctx context.Context) (float64, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return 0, err
	}

	var total float64
	if err := session.Query(`SELECT SUM(amount) FROM orders`).WithContext(ctx).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// SumAmountByDay buckets sales per UTC calendar day, ascending. The
// grouping happens application-side: the store has no general GROUP BY.
func (s *OrderStore) SumAmountByDay(ctx context.Context) ([]models.DailySales, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT amount, created_at FROM orders`).WithContext(ctx).Iter()

	var (
		rows      []salesRow
		amount    float64
		createdAt time.Time
	)
	for iter.Scan(&amount, &createdAt) {
		rows = append(rows, salesRow{Amount: amount, CreatedAt: createdAt})
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}

	return aggregateSalesByDay(rows), nil
}

// ListByBuyerAndStatus returns the buyer's orders, optionally filtered
// by status (empty status matches everything).
func (s *OrderStore) ListByBuyerAndStatus(ctx context.Context, buyerID string, status models.OrderStatus) ([]models.Order, error) {
	return s.listByIndex(ctx, `SELECT order_id FROM orders_by_buyer WHERE buyer_id = ?`, buyerID, status)
}

// ListBySellerAndStatus returns orders one of whose seller groups belongs
// to sellerID, optionally filtered by status.
func (s *OrderStore) ListBySellerAndStatus(ctx context.Context, sellerID string, status models.OrderStatus) ([]models.Order, error) {
	return s.listByIndex(ctx, `SELECT order_id FROM orders_by_seller WHERE seller_id = ?`, sellerID, status)
}

func (s *OrderStore) listByIndex(ctx context.Context, cql, partitionID string, status models.OrderStatus) ([]models.Order, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	pid, err := gocql.ParseUUID(partitionID)
	if err != nil {
		return nil, nil
	}

	iter := session.Query(cql, pid).WithContext(ctx).Iter()

	var ids []string
	var orderID gocql.UUID
	for iter.Scan(&orderID) {
		ids = append(ids, orderID.String())
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}

	var orders []models.Order
	for _, id := range ids {
		o, err := s.FindByID(ctx, id)
		if err == models.ErrOrderNotFound {
			// Dangling index row, skip it
			continue
		}
		if err != nil {
			return nil, err
		}
		if status != "" && o.Status != status {
			continue
		}
		orders = append(orders, *o)
	}

	return orders, nil
}

// UpdateStatus flips an order's status only if its current status still
// matches the expected one. Returns whether the update applied, so two
// concurrent confirmations cannot both fire.
func (s *OrderStore) UpdateStatus(ctx context.Context, orderID string, from, to models.OrderStatus) (bool, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return false, err
	}

	id, err := gocql.ParseUUID(orderID)
	if err != nil {
		return false, models.ErrOrderNotFound
	}

	applied, err := session.Query(
		`UPDATE orders SET status = ?, updated_at = ? WHERE order_id = ? IF status = ?`,
		string(to), time.Now().UTC(), id, string(from),
	).WithContext(ctx).MapScanCAS(map[string]interface{}{})
	if err != nil {
		return false, err
	}
	return applied, nil
}

func buildOrder(orderID, txnID string, buyerID gocql.UUID, sellersJSON string, amount float64, hashedOTP, status string, createdAt, updatedAt time.Time) (*models.Order, error) {
	var sellers []models.SellerGroup
	if sellersJSON != "" {
		if err := json.Unmarshal([]byte(sellersJSON), &sellers); err != nil {
			return nil, err
		}
	}

	// Rows written before the status column existed read as Pending
	if status == "" {
		status = string(models.OrderStatusPending)
	}

	return &models.Order{
		ID:            orderID,
		TransactionID: txnID,
		BuyerID:       buyerID.String(),
		Sellers:       sellers,
		Amount:        amount,
		HashedOTP:     hashedOTP,
		Status:        models.OrderStatus(status),
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}, nil
}
