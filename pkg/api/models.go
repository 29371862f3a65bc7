package api

import "time"

type CreateUserResponse struct {
	UserID string `json:"user_id"`
}

type UserSummary struct {
	UserID        string    `json:"user_id"`
	CreatedAt     time.Time `json:"created_at"`
	SessionsCount int64     `json:"sessions_count"`
}

type CreateSessionRequest struct {
	UserID string `schema:"user_id"`
}

type CreateSessionResponse struct {
	SessionID string  `json:"session_id"`
	UserID    *string `json:"user_id"`
}

type SessionSummary struct {
	SessionID    string    `json:"session_id"`
	CreatedAt    time.Time `json:"created_at"`
	HistoryCount int64     `json:"history_count"`
}

type SetSystemPromptRequest struct {
	SessionID string `schema:"session_id,required"`
	Prompt    string `schema:"prompt,required"`
}

type SetSystemPromptResponse struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id"`
	Prompt    string `json:"prompt"`
}

type ChatRequest struct {
	SessionID string `schema:"session_id,required"`
	Message   string `schema:"message,required"`
	Model     string `schema:"model"`
}

type ChatResponse struct {
	SessionID string  `json:"session_id"`
	User      string  `json:"user"`
	Bot       string  `json:"bot"`
	ModelUsed string  `json:"model_used"`
	UserID    *string `json:"user_id"`
}

// HistoryItem renders one history row: system prompt rows carry only the
// system field, turn rows carry user and bot.
type HistoryItem struct {
	System *string   `json:"system,omitempty"`
	User   *string   `json:"user,omitempty"`
	Bot    *string   `json:"bot,omitempty"`
	Time   time.Time `json:"time"`
}

type UserStatsResponse struct {
	UserID          string     `json:"user_id"`
	CreatedAt       time.Time  `json:"created_at"`
	SessionsCount   int64      `json:"sessions_count"`
	TotalMessages   int64      `json:"total_messages"`
	SystemPrompts   int64      `json:"system_prompts"`
	LastSessionTime *time.Time `json:"last_session_time"`
	LastMessageTime *time.Time `json:"last_message_time"`
}

type GlobalStatsResponse struct {
	UsersCount      int64      `json:"users_count"`
	SessionsCount   int64      `json:"sessions_count"`
	TotalMessages   int64      `json:"total_messages"`
	SystemPrompts   int64      `json:"system_prompts"`
	LastSessionTime *time.Time `json:"last_session_time"`
	LastMessageTime *time.Time `json:"last_message_time"`
}

type ResetResponse struct {
	Status string `json:"status"`
}
