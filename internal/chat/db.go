package chat

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"chatcontext-backend/internal/database"
)

func CreateUser(db *gorm.DB) (database.User, error) {
	user := database.User{UserID: uuid.NewString()}
	err := db.Create(&user).Error
	return user, err
}

func GetUser(db *gorm.DB, userID string) (database.User, error) {
	var user database.User
	err := db.First(&user, "user_id = ?", userID).Error
	return user, err
}

// CreateSession starts a new conversation thread. userID may be empty, in
// which case the session is anonymous.
func CreateSession(db *gorm.DB, userID string) (database.ChatSession, error) {
	session := database.ChatSession{
		SessionID: strings.ReplaceAll(uuid.NewString(), "-", ""),
		UserID:    sql.NullString{String: userID, Valid: userID != ""},
	}
	err := db.Create(&session).Error
	return session, err
}

func GetSession(db *gorm.DB, sessionID string) (database.ChatSession, error) {
	var session database.ChatSession
	err := db.First(&session, "session_id = ?", sessionID).Error
	return session, err
}

// GetHistory returns every history row for a session ordered by id ascending,
// which is the conversation order. An unknown session yields an empty slice,
// not an error.
func GetHistory(db *gorm.DB, sessionID string) ([]database.ChatHistory, error) {
	var history []database.ChatHistory
	err := db.Where("session_id = ?", sessionID).Order("id ASC").Find(&history).Error
	return history, err
}

// SaveSystemPrompt appends a system prompt row. Calling it repeatedly appends
// repeated rows; reconstruction includes all of them in order.
func SaveSystemPrompt(db *gorm.DB, sessionID, prompt string) error {
	entry := database.ChatHistory{
		SessionID:      sessionID,
		IsSystemPrompt: true,
		SystemPrompt:   sql.NullString{String: prompt, Valid: true},
	}
	return db.Create(&entry).Error
}

// SaveTurn appends one completed turn: the user's message and the bot's reply
// share a single row.
func SaveTurn(db *gorm.DB, sessionID, message, reply string) error {
	entry := database.ChatHistory{
		SessionID:   sessionID,
		MessageUser: sql.NullString{String: message, Valid: true},
		ResponseBot: sql.NullString{String: reply, Valid: true},
	}
	return db.Create(&entry).Error
}

type UserInfo struct {
	UserID        string
	CreatedAt     time.Time
	SessionsCount int64
}

func GetUsers(db *gorm.DB) ([]UserInfo, error) {
	var users []UserInfo
	err := db.Model(&database.User{}).
		Select("users.user_id, users.created_at, COUNT(chat_sessions.session_id) AS sessions_count").
		Joins("LEFT JOIN chat_sessions ON chat_sessions.user_id = users.user_id").
		Group("users.user_id").
		Order("users.created_at ASC").
		Scan(&users).Error
	return users, err
}

type SessionInfo struct {
	SessionID    string
	CreatedAt    time.Time
	HistoryCount int64
}

func GetUserSessions(db *gorm.DB, userID string) ([]SessionInfo, error) {
	var sessions []SessionInfo
	err := db.Model(&database.ChatSession{}).
		Select("chat_sessions.session_id, chat_sessions.created_at, COUNT(chat_histories.id) AS history_count").
		Joins("LEFT JOIN chat_histories ON chat_histories.session_id = chat_sessions.session_id").
		Where("chat_sessions.user_id = ?", userID).
		Group("chat_sessions.session_id").
		Order("chat_sessions.created_at ASC").
		Scan(&sessions).Error
	return sessions, err
}
