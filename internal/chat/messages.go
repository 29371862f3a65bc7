package chat

import (
	"chatcontext-backend/internal/database"
	"chatcontext-backend/internal/llm"
)

// BuildMessages reconstructs the ordered message list for a completion call
// from the stored history, then appends the incoming user message. System
// prompt rows become system messages; a turn row contributes its user message
// followed by the assistant reply, preserving row order.
func BuildMessages(history []database.ChatHistory, userMessage string) []llm.Message {
	messages := make([]llm.Message, 0, 2*len(history)+1)

	for _, h := range history {
		if h.IsSystemPrompt {
			messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: h.SystemPrompt.String})
			continue
		}
		if h.MessageUser.Valid {
			messages = append(messages, llm.Message{Role: llm.RoleUser, Content: h.MessageUser.String})
		}
		if h.ResponseBot.Valid {
			messages = append(messages, llm.Message{Role: llm.RoleAssistant, Content: h.ResponseBot.String})
		}
	}

	return append(messages, llm.Message{Role: llm.RoleUser, Content: userMessage})
}
