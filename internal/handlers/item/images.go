package item

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"buysell_back_end/internal/database"
	"buysell_back_end/internal/models"
	"buysell_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/minio/minio-go/v7"
)

// =========================
// 🟢 ITEM IMAGE UPLOAD
// =========================
func UploadItemImage(c *gin.Context) {
	userID := c.GetString("user_id")
	itemID := c.Param("id")

	if database.MinIO == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image storage is not configured"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Only the listing seller may attach images
	item, err := services.Catalog.ResolveItem(ctx, itemID)
	if err == models.ErrItemNotFound {
		c.JSON(http.StatusNotFound, gin.H{"message": "Item not found."})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}
	if item.SellerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the seller can upload images for this item."})
		return
	}

	// 1️⃣ Grab the file
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file"})
		return
	}
	defer file.Close()

	// 2️⃣ Unique object name
	ext := filepath.Ext(header.Filename)
	objectName := fmt.Sprintf("items/%s/%d%s", itemID, time.Now().UnixNano(), ext)

	// 3️⃣ Push to MinIO
	_, err = database.MinIO.PutObject(
		ctx,
		os.Getenv("MINIO_BUCKET"),
		objectName,
		file,
		header.Size,
		minio.PutObjectOptions{ContentType: header.Header.Get("Content-Type")},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "MinIO upload failed: " + err.Error()})
		return
	}

	imageURL := fmt.Sprintf("/uploads/%s", objectName)

	// 4️⃣ Record the URL on the item
	session, err := database.GetItemsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}
	id, _ := gocql.ParseUUID(itemID)
	err = session.Query(
		`UPDATE items SET image_urls = image_urls + ?, updated_at = ? WHERE item_id = ?`,
		[]string{imageURL}, time.Now().UTC(), id,
	).WithContext(ctx).Exec()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}

	services.InvalidateItemCache(ctx, itemID)
	database.RedisClient.Del(ctx, "items:all")

	// Keep the search index in step
	item.ImageURLs = append(item.ImageURLs, imageURL)
	go services.IndexItem(*item)

	c.JSON(http.StatusOK, gin.H{
		"message":   "Image uploaded successfully",
		"image_url": imageURL,
	})
}
