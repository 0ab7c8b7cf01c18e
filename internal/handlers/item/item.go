package item

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"buysell_back_end/internal/database"
	"buysell_back_end/internal/models"
	"buysell_back_end/internal/services"
	"buysell_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

const allItemsCacheTTL = 2 * time.Minute

//
// 🟢 GET /api/item
//
func GetAllItems(c *gin.Context) {
	log.Println("Fetching all items...")
	ctx := context.Background()
	cacheKey := "items:all"

	// Try the Redis cache first
	if val, err := database.RedisClient.Get(ctx, cacheKey).Result(); err == nil && val != "" {
		var cached []models.Item
		if err := json.Unmarshal([]byte(val), &cached); err == nil {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	items, err := scanAllItems(ctx)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error fetching items"})
		return
	}

	if data, err := json.Marshal(items); err == nil {
		database.RedisClient.Set(ctx, cacheKey, data, allItemsCacheTTL)
	}

	c.JSON(http.StatusOK, items)
}

//
// 🟢 POST /api/item/add
//
func AddItem(c *gin.Context) {
	sellerID := c.GetString("user_id")
	if sellerID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var input struct {
		Name        string  `json:"name"`
		Price       float64 `json:"price"`
		Description string  `json:"description"`
		Category    string  `json:"category"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Name == "" || input.Price == 0 || input.Category == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name, price, and category are required."})
		return
	}
	if input.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price must not be negative."})
		return
	}
	if !models.IsValidCategory(input.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown category: " + input.Category})
		return
	}
	if input.Description == "" {
		input.Description = "No description provided."
	}

	session, err := database.GetItemsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add item."})
		return
	}

	sellerUUID, err := gocql.ParseUUID(sellerID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	item := models.Item{
		ID:          gocql.TimeUUID().String(),
		Name:        input.Name,
		Price:       input.Price,
		Description: input.Description,
		Category:    input.Category,
		SellerID:    sellerID,
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	itemUUID, _ := gocql.ParseUUID(item.ID)
	err = session.Query(
		`INSERT INTO items (item_id, name, price, description, category, seller_id, image_urls, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		itemUUID, item.Name, item.Price, item.Description, item.Category, sellerUUID, item.ImageURLs, now, now,
	).Exec()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add item.", "details": err.Error()})
		return
	}

	// The listing cache is stale now
	database.RedisClient.Del(context.Background(), "items:all")

	// 🔄 Elasticsearch indexation
	go services.IndexItem(item)

	utils.LogAction(c, utils.ActionItemCreate, item.ID)

	c.JSON(http.StatusCreated, gin.H{"message": "Item added successfully.", "item": item})
}

//
// 🟢 GET /api/item/:id
//
func GetItemByID(c *gin.Context) {
	id := c.Param("id")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	item, err := services.Catalog.ResolveItem(ctx, id)
	if err == models.ErrItemNotFound {
		c.JSON(http.StatusNotFound, gin.H{"message": "Item not found."})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error.", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, item)
}

//
// 🔎 POST /api/item/search-filter
//
func SearchFilterItems(c *gin.Context) {
	var filter services.ItemSearchFilter
	if err := c.ShouldBindJSON(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid search filters."})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	items, err := services.SearchItems(ctx, filter)
	if err != nil {
		// Elastic down or not configured: filter over a ScyllaDB scan
		log.Printf("⚠️ Elastic search unavailable (%v), falling back to scan", err)
		items, err = searchByScan(ctx, filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error.", "details": err.Error()})
			return
		}
	}

	if len(items) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "No items found matching your search and filters."})
		return
	}

	c.JSON(http.StatusOK, items)
}

// searchByScan applies the search filters application-side.
func searchByScan(ctx context.Context, filter services.ItemSearchFilter) ([]models.Item, error) {
	all, err := scanAllItems(ctx)
	if err != nil {
		return nil, err
	}

	query := strings.ToLower(filter.Query)
	categories := make(map[string]bool, len(filter.Categories))
	for _, cat := range filter.Categories {
		categories[cat] = true
	}

	var items []models.Item
	for _, item := range all {
		if query != "" &&
			!strings.Contains(strings.ToLower(item.Name), query) &&
			!strings.Contains(strings.ToLower(item.Description), query) {
			continue
		}
		if len(categories) > 0 && !categories[item.Category] {
			continue
		}
		if filter.MinPrice != nil && item.Price < *filter.MinPrice {
			continue
		}
		if filter.MaxPrice != nil && item.Price > *filter.MaxPrice {
			continue
		}
		items = append(items, item)
	}

	return items, nil
}

func scanAllItems(ctx context.Context) ([]models.Item, error) {
	session, err := database.GetItemsSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(
		`SELECT item_id, name, price, description, category, seller_id, image_urls, created_at, updated_at FROM items`,
	).WithContext(ctx).Iter()

	var (
		items                       []models.Item
		itemID, sellerID            gocql.UUID
		name, description, category string
		price                       float64
		imageURLs                   []string
		createdAt, updatedAt        time.Time
	)

	for iter.Scan(&itemID, &name, &price, &description, &category, &sellerID, &imageURLs, &createdAt, &updatedAt) {
		items = append(items, models.Item{
			ID:          itemID.String(),
			Name:        name,
			Price:       price,
			Description: description,
			Category:    category,
			SellerID:    sellerID.String(),
			ImageURLs:   imageURLs,
			CreatedAt:   createdAt,
			UpdatedAt:   updatedAt,
		})
		imageURLs = nil
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}

	return items, nil
}
