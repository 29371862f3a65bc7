package database

import (
	"database/sql"
	"time"
)

type User struct {
	UserID    string `gorm:"size:36;primaryKey"`
	CreatedAt time.Time

	Sessions []ChatSession `gorm:"foreignKey:UserID;references:UserID"`
}

type ChatSession struct {
	SessionID string         `gorm:"size:64;primaryKey"`
	UserID    sql.NullString `gorm:"size:36;index"`
	CreatedAt time.Time

	History []ChatHistory `gorm:"foreignKey:SessionID;references:SessionID"`
}

// ChatHistory is append-only. A row is either a system prompt declaration
// (IsSystemPrompt set, SystemPrompt populated) or one conversation turn
// (MessageUser and ResponseBot populated). The autoincrement ID defines
// conversation order; rows are always read back ordered by ID ascending.
type ChatHistory struct {
	ID             uint   `gorm:"primaryKey"`
	SessionID      string `gorm:"size:64;not null;index"`
	IsSystemPrompt bool   `gorm:"default:false"`
	SystemPrompt   sql.NullString
	MessageUser    sql.NullString
	ResponseBot    sql.NullString
	CreatedAt      time.Time
}
