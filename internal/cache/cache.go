package cache

import (
	"context"
	"encoding/json"
	"time"

	"buysell_back_end/internal/database"
	"buysell_back_end/internal/models"

	"github.com/gocql/gocql"
)

const UserCacheTTL = 5 * time.Minute

// GetUserFromCache fetches a user from Redis, falling back to ScyllaDB
// and refilling the cache on a miss. Used wherever a display name is
// needed next to an id (order views, profile reads).
func GetUserFromCache(userID string) (*models.User, error) {
	ctx := context.Background()
	key := "user:" + userID

	// 1. Try Redis
	data, err := database.Redis.Get(ctx, key).Result()
	if err == nil {
		var user models.User
		if json.Unmarshal([]byte(data), &user) == nil {
			return &user, nil
		}
	}

	// 2. Fall back to ScyllaDB
	uid, err := gocql.ParseUUID(userID)
	if err != nil {
		return nil, models.ErrUserNotFound
	}

	stmt := database.GetPreparedGetUserByID()
	if stmt == nil {
		session, err := database.GetUsersSession()
		if err != nil {
			return nil, err
		}
		stmt = session.Query(`SELECT first_name, last_name, email, age, contact_number, password, role, created_at, updated_at
			FROM users WHERE user_id = ?`)
	}

	var (
		firstName, lastName, email, contactNumber, password, role string
		age                                                       int
		createdAt, updatedAt                                      time.Time
	)

	err = stmt.Bind(uid).Scan(&firstName, &lastName, &email, &age, &contactNumber, &password, &role, &createdAt, &updatedAt)
	if err == gocql.ErrNotFound {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:            userID,
		FirstName:     firstName,
		LastName:      lastName,
		Email:         email,
		Age:           age,
		ContactNumber: contactNumber,
		Password:      password,
		Role:          role,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}

	// 3. Refill the cache
	jsonData, _ := json.Marshal(user)
	database.Redis.Set(ctx, key, jsonData, UserCacheTTL)

	return user, nil
}

// InvalidateUserCache drops a user's cached profile after an update.
func InvalidateUserCache(userID string) {
	ctx := context.Background()
	database.Redis.Del(ctx, "user:"+userID)
}
