package routes

import (
	"buysell_back_end/internal/handlers/item"
	"buysell_back_end/internal/handlers/order"
	"buysell_back_end/internal/handlers/user"
	"buysell_back_end/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")

	// Users
	users := api.Group("/user")
	{
		users.GET("/", middleware.AuthRequired(), user.GetAllUsers)
		users.POST("/register", middleware.RegisterRateLimit(), user.Register)
		users.POST("/auth", middleware.LoginRateLimit(), user.Login)
		users.POST("/refresh", user.RefreshToken)
		users.POST("/logout", middleware.AuthRequired(), user.Logout)
		users.GET("/profile", middleware.AuthRequired(), user.GetProfile)
		users.PUT("/profile", middleware.AuthRequired(), user.UpdateProfile)
	}

	// Items
	items := api.Group("/item")
	{
		items.GET("/", item.GetAllItems)
		items.POST("/add", middleware.AuthRequired(), item.AddItem)
		items.POST("/search-filter", middleware.AuthRequired(), item.SearchFilterItems)
		items.POST("/:id/image", middleware.AuthRequired(), item.UploadItemImage)
		items.GET("/:id", middleware.AuthRequired(), item.GetItemByID)
	}

	// Cart
	cart := api.Group("/cart", middleware.AuthRequired())
	{
		cart.GET("/", user.GetCart)
		cart.POST("/add", user.AddToCart)
		cart.DELETE("/remove/:itemId", user.RemoveFromCart)
		cart.DELETE("/delete/:itemId", user.DeleteFromCart)
		cart.GET("/ws", user.CartWebSocket)
	}

	// Orders
	orders := api.Group("/order")
	{
		// Unrestricted listing, kept without auth
		orders.GET("/", order.GetOrders)
		orders.POST("/", middleware.AuthRequired(), order.CreateOrder)

		orders.GET("/bought/mine", middleware.AuthRequired(), order.GetMyOrders)
		orders.GET("/bought/pending", middleware.AuthRequired(), order.GetPendingOrdersForBuyer)
		orders.GET("/bought/completed", middleware.AuthRequired(), order.GetCompletedOrdersForBuyer)
		orders.GET("/sold/pending", middleware.AuthRequired(), order.GetPendingOrdersForSeller)
		orders.GET("/sold/completed", middleware.AuthRequired(), order.GetSoldCompletedOrders)

		orders.GET("/total-orders", middleware.AuthRequired(), order.GetTotalOrders)
		orders.GET("/total-sales", middleware.AuthRequired(), order.GetTotalSales)
		orders.GET("/total-sales-by-date", middleware.AuthRequired(), order.GetTotalSalesByDate)

		// :id is the order id everywhere except /pay, where it is the
		// transaction id (gin requires one wildcard name per position)
		orders.POST("/:id/pay", middleware.AuthRequired(), order.CompleteOrder)
		orders.GET("/:id/qr", middleware.AuthRequired(), order.GetOrderQR)
		orders.GET("/:id", middleware.AuthRequired(), order.GetOrderByID)
	}
}
