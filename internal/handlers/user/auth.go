package user

import (
	"log"
	"net/http"
	"os"
	"regexp"
	"time"

	"buysell_back_end/internal/database"
	"buysell_back_end/internal/middleware"
	"buysell_back_end/internal/models"
	"buysell_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

var (
	// Registration is restricted to campus addresses
	campusEmailRe   = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@students\.iiit\.ac\.in$`)
	contactNumberRe = regexp.MustCompile(`^[0-9]{10}$`)
)

const refreshCookieName = "refreshToken"

// ================== REGISTRATION ==================

func Register(c *gin.Context) {
	var input struct {
		FirstName     string `json:"firstName"`
		LastName      string `json:"lastName"`
		Email         string `json:"email"`
		Age           int    `json:"age"`
		ContactNumber string `json:"contactNumber"`
		Password      string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.FirstName == "" || input.LastName == "" || input.Email == "" ||
		input.Age == 0 || input.ContactNumber == "" || input.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required."})
		return
	}

	if !campusEmailRe.MatchString(input.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email must be a valid IIIT email."})
		return
	}

	if !contactNumberRe.MatchString(input.ContactNumber) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Contact number must be a 10-digit number."})
		return
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		log.Println("❌ Password hashing failed:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error. Please try again later."})
		return
	}

	userID := gocql.UUID(uuid.New())
	now := time.Now().UTC()

	// Claim the email first (LWT) so two concurrent registrations
	// cannot share an address
	applied, err := database.GetPreparedClaimEmail().Bind(input.Email, userID).
		MapScanCAS(map[string]interface{}{})
	if err != nil {
		log.Println("❌ Email claim failed:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error. Please try again later."})
		return
	}
	if !applied {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User with this email already exists."})
		return
	}

	user := models.User{
		ID:            userID.String(),
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		Email:         input.Email,
		Age:           input.Age,
		ContactNumber: input.ContactNumber,
		Role:          "buyer",
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = database.GetPreparedInsertUser().Bind(
		userID, user.FirstName, user.LastName, user.Email, user.Age,
		user.ContactNumber, hashedPassword, user.Role, now, now,
	).Exec()
	if err != nil {
		log.Println("❌ User insert failed:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error. Please try again later."})
		return
	}

	accessToken, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error. Please try again later."})
		return
	}
	refreshToken, _ := utils.GenerateRefreshJWT(user)

	utils.LogAction(c, utils.ActionUserRegister, user.ID)

	setRefreshCookie(c, refreshToken)
	c.JSON(http.StatusCreated, gin.H{
		"message":     "User registered successfully!",
		"accessToken": accessToken,
		"user":        gin.H{"id": user.ID},
	})
}

// ================== LOGIN ==================

func Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Email == "" || input.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required."})
		return
	}

	var userID gocql.UUID
	err := database.GetPreparedGetUserIDByEmail().Bind(input.Email).Scan(&userID)
	if err != nil {
		// Same answer for unknown email and bad password
		middleware.RecordFailedLogin(input.Email)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password."})
		return
	}

	var (
		firstName, lastName, email, contactNumber, password, role string
		age                                                       int
		createdAt, updatedAt                                      time.Time
	)
	err = database.GetPreparedGetUserByID().Bind(userID).
		Scan(&firstName, &lastName, &email, &age, &contactNumber, &password, &role, &createdAt, &updatedAt)
	if err != nil {
		middleware.RecordFailedLogin(input.Email)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password."})
		return
	}

	ok, err := utils.VerifyPassword(input.Password, password)
	if err != nil || !ok {
		middleware.RecordFailedLogin(input.Email)
		utils.LogFailedAction(c, utils.ActionLoginFailed, input.Email, "bad credentials")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password."})
		return
	}

	middleware.ResetLoginAttempts(input.Email)
	utils.LogAction(c, utils.ActionLoginSuccess, userID.String())

	user := models.User{
		ID:        userID.String(),
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Role:      role,
	}

	accessToken, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error. Please try again later."})
		return
	}
	refreshToken, _ := utils.GenerateRefreshJWT(user)

	setRefreshCookie(c, refreshToken)
	c.JSON(http.StatusOK, gin.H{
		"message":     "Login successful!",
		"accessToken": accessToken,
		"user":        gin.H{"id": user.ID},
	})
}

// ================== TOKEN REFRESH ==================

func RefreshToken(c *gin.Context) {
	refreshToken, err := c.Cookie(refreshCookieName)
	if err != nil || refreshToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token is missing."})
		return
	}

	claims, err := utils.ParseRefreshJWT(refreshToken)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Invalid or expired refresh token."})
		return
	}

	userID, _ := claims["user_id"].(string)
	email, _ := claims["email"].(string)
	if userID == "" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Invalid or expired refresh token."})
		return
	}

	accessToken, err := utils.GenerateJWT(models.User{ID: userID, Email: email})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error. Please try again later."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"accessToken": accessToken})
}

func Logout(c *gin.Context) {
	c.SetCookie(refreshCookieName, "", -1, "/", "", secureCookies(), true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully."})
}

func setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, token, int(utils.RefreshTokenTTL.Seconds()), "/", "", secureCookies(), true)
}

func secureCookies() bool {
	return os.Getenv("APP_ENV") == "production"
}
