package user

import (
	"context"
	"net/http"
	"time"

	"buysell_back_end/internal/models"
	"buysell_back_end/internal/services"

	"github.com/gin-gonic/gin"
)

// cartLineView is a cart line enriched with catalog data for display.
// Prices shown here are informational, the order flow re-resolves them.
type cartLineView struct {
	ItemID   string  `json:"itemId"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

//
// 🟢 GET /api/cart
//
func GetCart(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cart, err := services.Cart.ReadAll(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error reading cart."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Cart items fetched successfully.",
		"cartItems": enrichCart(ctx, cart),
	})
}

//
// 🟢 POST /api/cart/add
//
func AddToCart(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var input struct {
		ItemID   string `json:"itemId"`
		Quantity int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.ItemID == "" || input.Quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Item ID and quantity are required, and quantity must be greater than 0."})
		return
	}

	if c.GetString("role") == "seller" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Sellers cannot add items to the cart."})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// The item must exist before it can be carted
	if _, err := services.Catalog.ResolveItem(ctx, input.ItemID); err != nil {
		if err == models.ErrItemNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}

	cart, err := services.Cart.Add(ctx, userID, input.ItemID, input.Quantity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully.",
		"cart":    enrichCart(ctx, cart),
	})
}

//
// ❌ DELETE /api/cart/remove/:itemId
//
func RemoveFromCart(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	itemID := c.Param("itemId")

	// Optional quantity: absent means remove the whole line
	var input struct {
		Quantity int `json:"quantity"`
	}
	_ = c.ShouldBindJSON(&input)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := services.Cart.Remove(ctx, userID, itemID, input.Quantity)
	if err == models.ErrItemNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found in cart."})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error removing item from cart."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart successfully."})
}

//
// 🧹 DELETE /api/cart/delete/:itemId
//
func DeleteFromCart(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	itemID := c.Param("itemId")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := services.Cart.Remove(ctx, userID, itemID, 0)
	if err == models.ErrItemNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found in cart."})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error removing item from cart."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart successfully."})
}

func enrichCart(ctx context.Context, cart []models.CartItem) []cartLineView {
	views := make([]cartLineView, 0, len(cart))
	for _, line := range cart {
		view := cartLineView{ItemID: line.ItemID, Quantity: line.Quantity}
		if item, err := services.Catalog.ResolveItem(ctx, line.ItemID); err == nil {
			view.Name = item.Name
			view.Price = item.Price
		}
		views = append(views, view)
	}
	return views
}
