package services

import (
	"context"
	"encoding/json"
	"time"

	"buysell_back_end/internal/database"
	"buysell_back_end/internal/models"

	"github.com/redis/go-redis/v9"
)

const cartTTL = 30 * 24 * time.Hour

// RedisCartStore keeps one JSON blob of pending lines per user. Every
// mutation publishes on the user's cart-sync channel so open WebSocket
// sessions can refresh.
type RedisCartStore struct{}

func NewRedisCartStore() *RedisCartStore {
	return &RedisCartStore{}
}

func cartKey(userID string) string {
	return "cart:" + userID
}

// CartSyncChannel is the Redis pub/sub channel for a user's cart updates.
func CartSyncChannel(userID string) string {
	return "cartsync:" + userID
}

// ReadAll returns the user's pending cart lines. A missing key is an
// empty cart, not an error.
func (s *RedisCartStore) ReadAll(ctx context.Context, userID string) ([]models.CartItem, error) {
	data, err := database.Redis.Get(ctx, cartKey(userID)).Result()
	if err == redis.Nil || data == "" {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cart []models.CartItem
	if err := json.Unmarshal([]byte(data), &cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Add puts quantity of an item into the cart, accumulating onto an
// existing line for the same item.
func (s *RedisCartStore) Add(ctx context.Context, userID, itemID string, quantity int) ([]models.CartItem, error) {
	cart, err := s.ReadAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range cart {
		if cart[i].ItemID == itemID {
			cart[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		cart = append(cart, models.CartItem{ItemID: itemID, Quantity: quantity})
	}

	if err := s.save(ctx, userID, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Remove takes quantity off a cart line, dropping the line when it hits
// zero. quantity <= 0 removes the whole line.
func (s *RedisCartStore) Remove(ctx context.Context, userID, itemID string, quantity int) ([]models.CartItem, error) {
	cart, err := s.ReadAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range cart {
		if cart[i].ItemID == itemID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, models.ErrItemNotFound
	}

	if quantity > 0 && cart[idx].Quantity > quantity {
		cart[idx].Quantity -= quantity
	} else {
		cart = append(cart[:idx], cart[idx+1:]...)
	}

	if err := s.save(ctx, userID, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Clear drops the whole cart. Called by the order flow only after the
// order is durable.
func (s *RedisCartStore) Clear(ctx context.Context, userID string) error {
	if err := database.Redis.Del(ctx, cartKey(userID)).Err(); err != nil {
		return err
	}
	database.Redis.Publish(ctx, CartSyncChannel(userID), "cleared")
	return nil
}

func (s *RedisCartStore) save(ctx context.Context, userID string, cart []models.CartItem) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	if err := database.Redis.Set(ctx, cartKey(userID), data, cartTTL).Err(); err != nil {
		return err
	}
	database.Redis.Publish(ctx, CartSyncChannel(userID), "updated")
	return nil
}
