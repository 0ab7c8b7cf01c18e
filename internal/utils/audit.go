package utils

import (
	"log"
	"time"

	"buysell_back_end/internal/database"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// Audit action names
const (
	ActionUserRegister = "user.register"
	ActionLoginSuccess = "auth.login_success"
	ActionLoginFailed  = "auth.login_failed"
	ActionItemCreate   = "item.create"
	ActionOrderCreate  = "order.create"
	ActionOrderConfirm = "order.confirm"
)

// LogAction records a successful action in the audit trail. The write is
// asynchronous and must never slow down or fail the request.
func LogAction(c *gin.Context, action, resourceID string) {
	entry := captureAuditEntry(c, action, resourceID, true, "")
	go func() {
		if err := writeAuditEntry(entry); err != nil {
			log.Printf("⚠️ audit write failed for %s: %v", action, err)
		}
	}()
}

// LogFailedAction records a failed action and its error message.
func LogFailedAction(c *gin.Context, action, resourceID, errorMsg string) {
	entry := captureAuditEntry(c, action, resourceID, false, errorMsg)
	go func() {
		if err := writeAuditEntry(entry); err != nil {
			log.Printf("⚠️ audit write failed for %s: %v", action, err)
		}
	}()
}

type auditEntry struct {
	ID         gocql.UUID
	UserID     string
	UserEmail  string
	Action     string
	ResourceID string
	IPAddress  string
	UserAgent  string
	Success    bool
	ErrorMsg   string
	Timestamp  time.Time
}

// captureAuditEntry reads everything it needs from the request before the
// goroutine starts: the gin context is not safe to touch after the
// handler returns.
func captureAuditEntry(c *gin.Context, action, resourceID string, success bool, errorMsg string) auditEntry {
	return auditEntry{
		ID:         gocql.TimeUUID(),
		UserID:     c.GetString("user_id"),
		UserEmail:  c.GetString("email"),
		Action:     action,
		ResourceID: resourceID,
		IPAddress:  c.ClientIP(),
		UserAgent:  c.GetHeader("User-Agent"),
		Success:    success,
		ErrorMsg:   errorMsg,
		Timestamp:  time.Now().UTC(),
	}
}

func writeAuditEntry(entry auditEntry) error {
	session, err := database.GetUsersSession()
	if err != nil {
		return err
	}

	return session.Query(`
		INSERT INTO audit_logs (
			id, user_id, user_email, action, resource_id,
			ip_address, user_agent, success, error_msg, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, entry.UserEmail, entry.Action, entry.ResourceID,
		entry.IPAddress, entry.UserAgent, entry.Success, entry.ErrorMsg, entry.Timestamp,
	).Exec()
}
