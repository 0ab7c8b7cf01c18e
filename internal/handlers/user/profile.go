package user

import (
	"log"
	"net/http"
	"time"

	"buysell_back_end/internal/cache"
	"buysell_back_end/internal/database"
	"buysell_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// GetProfile returns the logged-in user's profile, password excluded.
func GetProfile(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	user, err := cache.GetUserFromCache(userID)
	if err == models.ErrUserNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found."})
		return
	}
	if err != nil {
		log.Println("❌ Profile lookup failed:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateProfile updates the mutable profile fields.
func UpdateProfile(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var input struct {
		FirstName     string `json:"firstName"`
		LastName      string `json:"lastName"`
		ContactNumber string `json:"contactNumber"`
		Age           int    `json:"age"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input or server error."})
		return
	}

	if input.ContactNumber != "" && !contactNumberRe.MatchString(input.ContactNumber) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Contact number must be a 10-digit number."})
		return
	}

	current, err := cache.GetUserFromCache(userID)
	if err == models.ErrUserNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found."})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}

	// Missing fields keep their current values
	if input.FirstName == "" {
		input.FirstName = current.FirstName
	}
	if input.LastName == "" {
		input.LastName = current.LastName
	}
	if input.ContactNumber == "" {
		input.ContactNumber = current.ContactNumber
	}
	if input.Age == 0 {
		input.Age = current.Age
	}

	uid, err := gocql.ParseUUID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found."})
		return
	}

	err = database.GetPreparedUpdateUser().Bind(
		input.FirstName, input.LastName, input.ContactNumber, input.Age, time.Now().UTC(), uid,
	).Exec()
	if err != nil {
		log.Println("❌ Profile update failed:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}

	cache.InvalidateUserCache(userID)

	current.FirstName = input.FirstName
	current.LastName = input.LastName
	current.ContactNumber = input.ContactNumber
	current.Age = input.Age

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully.", "user": current})
}

// GetAllUsers lists every registered user (passwords excluded).
func GetAllUsers(c *gin.Context) {
	log.Println("Fetching all users...")

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching users"})
		return
	}

	iter := session.Query(
		`SELECT user_id, first_name, last_name, email, age, contact_number, role, created_at, updated_at FROM users`,
	).Iter()

	var (
		users                                               []models.User
		userID                                              gocql.UUID
		firstName, lastName, email, contactNumber, roleName string
		age                                                 int
		createdAt, updatedAt                                time.Time
	)

	for iter.Scan(&userID, &firstName, &lastName, &email, &age, &contactNumber, &roleName, &createdAt, &updatedAt) {
		users = append(users, models.User{
			ID:            userID.String(),
			FirstName:     firstName,
			LastName:      lastName,
			Email:         email,
			Age:           age,
			ContactNumber: contactNumber,
			Role:          roleName,
			CreatedAt:     createdAt,
			UpdatedAt:     updatedAt,
		})
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error fetching users"})
		return
	}

	c.JSON(http.StatusOK, users)
}
