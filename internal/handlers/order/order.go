package order

import (
	"context"
	"log"
	"net/http"
	"time"

	"buysell_back_end/internal/cache"
	"buysell_back_end/internal/models"
	"buysell_back_end/internal/services"
	"buysell_back_end/internal/utils"

	"github.com/gin-gonic/gin"
)

//
// 🟢 GET /api/order
//
// No auth on the unrestricted listing, matching the rest of the public
// read surface.
func GetOrders(c *gin.Context) {
	log.Println("Fetching all orders...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	orders, err := services.Orders.ListAllOrders(ctx)
	if err != nil {
		log.Println("❌ Order listing failed:", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error fetching orders"})
		return
	}

	c.JSON(http.StatusOK, orders)
}

//
// 🟢 POST /api/order
//
// Converts the caller's cart into an order. The response carries the
// plaintext OTP exactly once; only its hash survives.
func CreateOrder(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	order, otp, err := services.Orders.CreateOrder(ctx, userID)
	switch {
	case err == models.ErrEmptyCart:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Your cart is empty."})
		return
	case err == models.ErrItemNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "A cart item no longer exists."})
		return
	case err != nil:
		log.Println("❌ Order creation failed:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}

	utils.LogAction(c, utils.ActionOrderCreate, order.ID)

	c.JSON(http.StatusOK, gin.H{
		"message": "Order placed successfully.",
		"order":   order,
		"otp":     otp,
	})
}

//
// 🟢 GET /api/order/:id
//
func GetOrderByID(c *gin.Context) {
	userID := c.GetString("user_id")
	orderID := c.Param("id")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	order, err := services.Orders.GetOrder(ctx, orderID, userID)
	switch {
	case err == models.ErrOrderNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	case err == models.ErrForbidden:
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized access to this order"})
		return
	case err != nil:
		log.Println("❌ Order lookup failed:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, formatOrder(ctx, order))
}

//
// 🟢 POST /api/order/:transactionId/pay
//
func CompleteOrder(c *gin.Context) {
	// The wildcard carries the transaction id on this route
	transactionID := c.Param("id")

	var input struct {
		BuyerID string `json:"buyerId"`
		OTP     string `json:"otp"`
	}
	_ = c.ShouldBindJSON(&input)

	if transactionID == "" || input.BuyerID == "" || input.OTP == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Transaction ID, buyer ID, and OTP are required."})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	order, err := services.Orders.ConfirmOrder(ctx, transactionID, input.BuyerID, input.OTP)
	switch {
	case err == models.ErrOrderNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found."})
		return
	case err == models.ErrForbidden:
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not authorized to complete this order."})
		return
	case err == models.ErrInvalidOTP:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid OTP. Please try again."})
		return
	case err != nil:
		log.Println("❌ Order confirmation failed:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}

	utils.LogAction(c, utils.ActionOrderConfirm, order.ID)

	c.JSON(http.StatusOK, gin.H{"message": "Order completed successfully.", "order": order})
}

//
// 🟢 GET /api/order/:id/qr
//
// QR of the transaction id, shown by the buyer at handoff.
func GetOrderQR(c *gin.Context) {
	userID := c.GetString("user_id")
	orderID := c.Param("id")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	order, err := services.Orders.GetOrder(ctx, orderID, userID)
	switch {
	case err == models.ErrOrderNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	case err == models.ErrForbidden:
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized access to this order"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	qr, err := utils.GenerateTransactionQR(order.TransactionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transactionId": order.TransactionID,
		"qr":            qr,
	})
}

// formatOrder shapes an order for the detail view: ids resolved to
// usernames, items resolved to name and price.
func formatOrder(ctx context.Context, order *models.Order) gin.H {
	sellers := make([]gin.H, 0, len(order.Sellers))
	for _, group := range order.Sellers {
		items := make([]gin.H, 0, len(group.Items))
		for _, line := range group.Items {
			product := gin.H{"id": line.ItemID}
			if item, err := services.Catalog.ResolveItem(ctx, line.ItemID); err == nil {
				product["name"] = item.Name
				product["price"] = item.Price
			}
			items = append(items, gin.H{
				"product":  product,
				"quantity": line.Quantity,
			})
		}
		sellers = append(sellers, gin.H{
			"seller": gin.H{
				"id":       group.SellerID,
				"username": displayName(group.SellerID),
			},
			"items": items,
		})
	}

	status := order.Status
	if status == "" {
		status = models.OrderStatusPending
	}

	return gin.H{
		"id":            order.ID,
		"transactionId": order.TransactionID,
		"buyer": gin.H{
			"id":       order.BuyerID,
			"username": displayName(order.BuyerID),
		},
		"sellers":     sellers,
		"totalAmount": order.Amount,
		"orderStatus": status,
	}
}

func displayName(userID string) string {
	user, err := cache.GetUserFromCache(userID)
	if err != nil {
		return ""
	}
	return user.FirstName + " " + user.LastName
}
