package user

import (
	"context"
	"log"
	"net/http"

	"buysell_back_end/internal/database"
	"buysell_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins (tighten in production)
		return true
	},
}

// CartWebSocket streams live cart updates to the client. Every cart
// mutation publishes on the user's Redis channel; this handler relays
// the fresh cart over the socket.
func CartWebSocket(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := context.Background()

	pubsub := database.Redis.Subscribe(ctx, services.CartSyncChannel(userID))
	defer pubsub.Close()

	ch := pubsub.Channel()

	conn.WriteJSON(gin.H{
		"type":    "connected",
		"message": "Cart synchronisation active",
	})

	// Detect the client going away so the goroutine doesn't leak
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if msg.Payload != "updated" && msg.Payload != "cleared" {
				continue
			}

			cart, err := services.Cart.ReadAll(ctx, userID)
			if err != nil {
				log.Printf("⚠️ Cart read failed during sync for %s: %v", userID, err)
				continue
			}

			items := enrichCart(ctx, cart)
			count := 0
			total := 0.0
			for _, item := range items {
				count += item.Quantity
				total += item.Price * float64(item.Quantity)
			}

			if err := conn.WriteJSON(gin.H{
				"type":  "cart_updated",
				"items": items,
				"total": total,
				"count": count,
			}); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
