package main

import (
	"context"
	"log"
	"os"
	"strings"

	"buysell_back_end/internal/config"
	"buysell_back_end/internal/database"
	"buysell_back_end/internal/routes"
	"buysell_back_end/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	config.Load()

	database.ConnectDatabases()

	// ✅ Prepared statements for the hot user queries
	database.InitPreparedStatements()

	// ✅ Pre-warm the Redis connection
	warmupRedisCache()

	services.Init()

	r := gin.Default()
	r.Use(cors.New(corsConfig()))

	routes.RegisterRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("🚀 Buy-Sell server listening on port", port)
	r.Run(":" + port)
}

func corsConfig() cors.Config {
	origins := os.Getenv("CORS_ORIGINS")
	if origins == "" {
		origins = "http://localhost:5173"
	}

	cfg := cors.DefaultConfig()
	cfg.AllowOrigins = strings.Split(origins, ",")
	cfg.AllowCredentials = true
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")
	return cfg
}

// warmupRedisCache pings Redis so the first request does not pay the
// connection cost.
func warmupRedisCache() {
	ctx := context.Background()
	if err := database.Redis.Ping(ctx).Err(); err == nil {
		log.Println("✅ Redis cache warmed up")
	}
}
