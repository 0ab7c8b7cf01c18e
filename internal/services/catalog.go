package services

import (
	"context"
	"encoding/json"
	"time"

	"buysell_back_end/internal/database"
	"buysell_back_end/internal/models"

	"github.com/gocql/gocql"
)

const itemCacheTTL = 10 * time.Minute

// ScyllaCatalog resolves items from the items keyspace with a Redis
// read-through cache in front. Order pricing always goes through here.
type ScyllaCatalog struct{}

func NewScyllaCatalog() *ScyllaCatalog {
	return &ScyllaCatalog{}
}

// ResolveItem returns the item for an id, or models.ErrItemNotFound.
func (c *ScyllaCatalog) ResolveItem(ctx context.Context, itemID string) (*models.Item, error) {
	key := "item:" + itemID

	// 1. Try Redis
	if data, err := database.Redis.Get(ctx, key).Result(); err == nil && data != "" {
		var item models.Item
		if json.Unmarshal([]byte(data), &item) == nil {
			return &item, nil
		}
	}

	// 2. Fall back to ScyllaDB
	session, err := database.GetItemsSession()
	if err != nil {
		return nil, err
	}

	id, err := gocql.ParseUUID(itemID)
	if err != nil {
		return nil, models.ErrItemNotFound
	}

	var (
		name, description, category string
		price                       float64
		sellerID                    gocql.UUID
		imageURLs                   []string
		createdAt, updatedAt        time.Time
	)

	err = session.Query(
		`SELECT name, price, description, category, seller_id, image_urls, created_at, updated_at
		 FROM items WHERE item_id = ?`, id,
	).WithContext(ctx).Scan(&name, &price, &description, &category, &sellerID, &imageURLs, &createdAt, &updatedAt)
	if err == gocql.ErrNotFound {
		return nil, models.ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}

	item := &models.Item{
		ID:          itemID,
		Name:        name,
		Price:       price,
		Description: description,
		Category:    category,
		SellerID:    sellerID.String(),
		ImageURLs:   imageURLs,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}

	// 3. Cache for the next lookup
	if data, err := json.Marshal(item); err == nil {
		database.Redis.Set(ctx, key, data, itemCacheTTL)
	}

	return item, nil
}

// InvalidateItemCache drops the cached copy of an item.
func InvalidateItemCache(ctx context.Context, itemID string) {
	database.Redis.Del(ctx, "item:"+itemID)
}
