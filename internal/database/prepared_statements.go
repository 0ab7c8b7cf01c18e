package database

import (
	"log"
	"sync"

	"github.com/gocql/gocql"
)

var (
	// Prepared statements for the hot user queries
	stmtGetUserIDByEmail *gocql.Query
	stmtGetUserByID      *gocql.Query
	stmtInsertUser       *gocql.Query
	stmtClaimEmail       *gocql.Query
	stmtUpdateUser       *gocql.Query

	preparedOnce sync.Once
)

// InitPreparedStatements builds the prepared statements once at startup.
func InitPreparedStatements() {
	preparedOnce.Do(func() {
		session, err := GetUsersSession()
		if err != nil {
			log.Printf("⚠️ Could not initialise prepared statements: %v", err)
			return
		}

		stmtGetUserIDByEmail = session.Query("SELECT user_id FROM users_by_email WHERE email = ?")

		stmtGetUserByID = session.Query(`SELECT first_name, last_name, email, age, contact_number, password, role, created_at, updated_at
			FROM users WHERE user_id = ?`)

		stmtInsertUser = session.Query(`INSERT INTO users (user_id, first_name, last_name, email, age, contact_number, password, role, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

		// LWT so two concurrent registrations cannot claim the same email
		stmtClaimEmail = session.Query("INSERT INTO users_by_email (email, user_id) VALUES (?, ?) IF NOT EXISTS")

		stmtUpdateUser = session.Query("UPDATE users SET first_name = ?, last_name = ?, contact_number = ?, age = ?, updated_at = ? WHERE user_id = ?")

		log.Println("✅ Prepared statements initialised")
	})
}

func GetPreparedGetUserIDByEmail() *gocql.Query {
	return stmtGetUserIDByEmail
}

func GetPreparedGetUserByID() *gocql.Query {
	return stmtGetUserByID
}

func GetPreparedInsertUser() *gocql.Query {
	return stmtInsertUser
}

func GetPreparedClaimEmail() *gocql.Query {
	return stmtClaimEmail
}

func GetPreparedUpdateUser() *gocql.Query {
	return stmtUpdateUser
}
