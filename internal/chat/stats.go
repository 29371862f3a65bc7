package chat

import (
	"database/sql"

	"gorm.io/gorm"

	"chatcontext-backend/internal/database"
)

// Stats aggregates a set of sessions and their history rows. Each non-null
// user message and each non-null bot reply counts as one message, so a fully
// answered turn counts as 2. The time fields stay invalid when there are no
// sessions or no history rows.
type Stats struct {
	SessionsCount   int64
	TotalMessages   int64
	SystemPrompts   int64
	LastSessionTime sql.NullTime
	LastMessageTime sql.NullTime
}

func aggregate(sessions []database.ChatSession, history []database.ChatHistory) Stats {
	var stats Stats

	stats.SessionsCount = int64(len(sessions))
	for _, s := range sessions {
		if !stats.LastSessionTime.Valid || s.CreatedAt.After(stats.LastSessionTime.Time) {
			stats.LastSessionTime = sql.NullTime{Time: s.CreatedAt, Valid: true}
		}
	}

	for _, h := range history {
		if h.MessageUser.Valid {
			stats.TotalMessages++
		}
		if h.ResponseBot.Valid {
			stats.TotalMessages++
		}
		if h.IsSystemPrompt {
			stats.SystemPrompts++
		}
		if !stats.LastMessageTime.Valid || h.CreatedAt.After(stats.LastMessageTime.Time) {
			stats.LastMessageTime = sql.NullTime{Time: h.CreatedAt, Valid: true}
		}
	}

	return stats
}

// GetUserStats aggregates across every session owned by the user. The caller
// is responsible for checking that the user exists.
func GetUserStats(db *gorm.DB, userID string) (Stats, error) {
	var sessions []database.ChatSession
	if err := db.Where("user_id = ?", userID).Find(&sessions).Error; err != nil {
		return Stats{}, err
	}

	var history []database.ChatHistory
	if err := db.
		Joins("JOIN chat_sessions ON chat_sessions.session_id = chat_histories.session_id").
		Where("chat_sessions.user_id = ?", userID).
		Find(&history).Error; err != nil {
		return Stats{}, err
	}

	return aggregate(sessions, history), nil
}

// GlobalStats is the same aggregation with no user filter, plus the total
// user count. Anonymous sessions are included.
type GlobalStats struct {
	UsersCount int64
	Stats
}

func GetGlobalStats(db *gorm.DB) (GlobalStats, error) {
	var stats GlobalStats

	if err := db.Model(&database.User{}).Count(&stats.UsersCount).Error; err != nil {
		return stats, err
	}

	var sessions []database.ChatSession
	if err := db.Find(&sessions).Error; err != nil {
		return stats, err
	}

	var history []database.ChatHistory
	if err := db.Find(&history).Error; err != nil {
		return stats, err
	}

	stats.Stats = aggregate(sessions, history)
	return stats, nil
}
