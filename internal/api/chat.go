package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"chatcontext-backend/internal/chat"
	"chatcontext-backend/internal/llm"
	"chatcontext-backend/pkg/api"
)

// ChatService is the conversation engine: system prompts, chat turns, and
// history reconstruction.
type ChatService struct {
	db     *gorm.DB
	client llm.Client
}

func NewChatService(db *gorm.DB, client llm.Client) *ChatService {
	return &ChatService{db: db, client: client}
}

func (s *ChatService) AddRoutes(r chi.Router) {
	r.Route("/chat", func(r chi.Router) {
		r.Post("/", RestHandler(s.Chat))
		r.Post("/system_prompt", RestHandler(s.SetSystemPrompt))
	})
	r.Get("/history/{session_id}", RestHandler(s.GetHistory))
}

func (s *ChatService) SetSystemPrompt(r *http.Request) (any, error) {
	req, err := ParseRequestQueryParams[api.SetSystemPromptRequest](r)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(r.Context())

	if _, err := chat.GetSession(db, req.SessionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, CodedErrorf(http.StatusNotFound, "Invalid session_id")
		}
		slog.Error("error looking up session", "session_id", req.SessionID, "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "error retrieving session record")
	}

	if err := chat.SaveSystemPrompt(db, req.SessionID, req.Prompt); err != nil {
		slog.Error("error saving system prompt", "session_id", req.SessionID, "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "failed to save system prompt")
	}

	return api.SetSystemPromptResponse{
		Status:    "System prompt saved",
		SessionID: req.SessionID,
		Prompt:    req.Prompt,
	}, nil
}

// Chat runs one turn: load the session's history, rebuild the message list,
// append the new user message, call the provider, and persist the completed
// turn as a single row. There is no transaction spanning the load, the
// provider call, and the insert; a provider failure leaves the turn
// unrecorded.
func (s *ChatService) Chat(r *http.Request) (any, error) {
	req, err := ParseRequestQueryParams[api.ChatRequest](r)
	if err != nil {
		return nil, err
	}

	model, err := llm.ParseModel(req.Model)
	if err != nil {
		return nil, CodedError(http.StatusBadRequest, err)
	}

	db := s.db.WithContext(r.Context())

	session, err := chat.GetSession(db, req.SessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, CodedErrorf(http.StatusNotFound, "Invalid session_id")
		}
		slog.Error("error looking up session", "session_id", req.SessionID, "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "error retrieving session record")
	}

	history, err := chat.GetHistory(db, req.SessionID)
	if err != nil {
		slog.Error("error loading history", "session_id", req.SessionID, "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "failed to load chat history")
	}

	messages := chat.BuildMessages(history, req.Message)

	reply, err := s.client.Complete(r.Context(), string(model), messages)
	if err != nil {
		slog.Error("completion provider call failed", "session_id", req.SessionID, "model", model, "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "completion provider call failed: %v", err)
	}

	if err := chat.SaveTurn(db, req.SessionID, req.Message, reply); err != nil {
		slog.Error("error saving chat turn", "session_id", req.SessionID, "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "failed to save chat turn")
	}

	return api.ChatResponse{
		SessionID: req.SessionID,
		User:      req.Message,
		Bot:       reply,
		ModelUsed: string(model),
		UserID:    nullStringPtr(session.UserID),
	}, nil
}

// GetHistory deliberately performs no session existence check: an unknown
// session id yields an empty list rather than an error.
func (s *ChatService) GetHistory(r *http.Request) (any, error) {
	sessionID, err := URLParam(r, "session_id")
	if err != nil {
		return nil, err
	}

	history, err := chat.GetHistory(s.db.WithContext(r.Context()), sessionID)
	if err != nil {
		slog.Error("error loading history", "session_id", sessionID, "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "failed to load chat history")
	}

	resp := make([]api.HistoryItem, 0, len(history))
	for _, h := range history {
		if h.IsSystemPrompt {
			resp = append(resp, api.HistoryItem{
				System: nullStringPtr(h.SystemPrompt),
				Time:   h.CreatedAt,
			})
			continue
		}
		resp = append(resp, api.HistoryItem{
			User: nullStringPtr(h.MessageUser),
			Bot:  nullStringPtr(h.ResponseBot),
			Time: h.CreatedAt,
		})
	}
	return resp, nil
}
