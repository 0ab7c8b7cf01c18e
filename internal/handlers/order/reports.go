package order

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"buysell_back_end/internal/database"
	"buysell_back_end/internal/models"
	"buysell_back_end/internal/services"

	"github.com/gin-gonic/gin"
)

const salesByDayCacheTTL = 30 * time.Second

//
// 🟢 GET /api/order/bought/mine
//
func GetMyOrders(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	orders, err := services.Orders.ListForBuyer(ctx, userID, "")
	if err != nil {
		log.Println("❌ Buyer order listing failed:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}

	c.JSON(http.StatusOK, orders)
}

//
// 🟢 GET /api/order/bought/pending and /api/order/bought/completed
//

func GetPendingOrdersForBuyer(c *gin.Context) {
	listForBuyer(c, models.OrderStatusPending, "No pending orders found.", "pendingOrders")
}

func GetCompletedOrdersForBuyer(c *gin.Context) {
	listForBuyer(c, models.OrderStatusCompleted, "No completed orders found.", "completedOrders")
}

func listForBuyer(c *gin.Context, status models.OrderStatus, emptyMsg, key string) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	orders, err := services.Orders.ListForBuyer(ctx, userID, status)
	if err != nil {
		log.Println("❌ Buyer order listing failed:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}

	if len(orders) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": emptyMsg})
		return
	}

	c.JSON(http.StatusOK, gin.H{key: orders})
}

//
// 🟢 GET /api/order/sold/pending and /api/order/sold/completed
//

func GetPendingOrdersForSeller(c *gin.Context) {
	listForSeller(c, models.OrderStatusPending, "No pending orders found.", "pendingOrders")
}

func GetSoldCompletedOrders(c *gin.Context) {
	listForSeller(c, models.OrderStatusCompleted, "No completed orders found.", "completedOrders")
}

func listForSeller(c *gin.Context, status models.OrderStatus, emptyMsg, key string) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	orders, err := services.Orders.ListForSeller(ctx, userID, status)
	if err != nil {
		log.Println("❌ Seller order listing failed:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}

	if len(orders) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": emptyMsg})
		return
	}

	c.JSON(http.StatusOK, gin.H{key: orders})
}

//
// 🟢 GET /api/order/total-orders
//
func GetTotalOrders(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	total, err := services.Orders.TotalOrders(ctx)
	if err != nil {
		log.Println("❌ Order count failed:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch total orders."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"totalOrders": total})
}

//
// 🟢 GET /api/order/total-sales
//
func GetTotalSales(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	total, err := services.Orders.TotalSales(ctx)
	if err != nil {
		log.Println("❌ Sales total failed:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch total sales."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"totalSales": total})
}

//
// 🟢 GET /api/order/total-sales-by-date
//
func GetTotalSalesByDate(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cacheKey := "orders:sales_by_day"
	if val, err := database.Redis.Get(ctx, cacheKey).Result(); err == nil && val != "" {
		var cached []models.DailySales
		if json.Unmarshal([]byte(val), &cached) == nil {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	sales, err := services.Orders.SalesByDay(ctx)
	if err != nil {
		log.Println("❌ Sales-by-day report failed:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch total sales by date."})
		return
	}

	if data, err := json.Marshal(sales); err == nil {
		database.Redis.Set(ctx, cacheKey, data, salesByDayCacheTTL)
	}

	c.JSON(http.StatusOK, sales)
}
