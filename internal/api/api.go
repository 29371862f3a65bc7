package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"chatcontext-backend/internal/chat"
	"chatcontext-backend/internal/database"
	"chatcontext-backend/pkg/api"
)

// BackendService covers the user registry, the session registry, statistics,
// and the administrative reset.
type BackendService struct {
	db *gorm.DB
}

func NewBackendService(db *gorm.DB) *BackendService {
	return &BackendService{db: db}
}

func (s *BackendService) AddRoutes(r chi.Router) {
	r.Get("/health", RestHandler(func(r *http.Request) (any, error) { return nil, nil }))
	r.Route("/users", func(r chi.Router) {
		r.Post("/", RestHandler(s.CreateUser))
		r.Get("/", RestHandler(s.GetUsers))
	})
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", RestHandler(s.CreateSession))
		r.Get("/{user_id}", RestHandler(s.GetUserSessions))
	})
	r.Route("/stats", func(r chi.Router) {
		r.Get("/user/{user_id}", RestHandler(s.GetUserStats))
		r.Get("/global", RestHandler(s.GetGlobalStats))
	})
	r.Post("/reset", RestHandler(s.Reset))
}

func (s *BackendService) CreateUser(r *http.Request) (any, error) {
	user, err := chat.CreateUser(s.db.WithContext(r.Context()))
	if err != nil {
		slog.Error("error creating user", "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "failed to create user")
	}

	slog.Info("created user", "user_id", user.UserID)
	return api.CreateUserResponse{UserID: user.UserID}, nil
}

func (s *BackendService) GetUsers(r *http.Request) (any, error) {
	users, err := chat.GetUsers(s.db.WithContext(r.Context()))
	if err != nil {
		slog.Error("error listing users", "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "failed to list users")
	}

	resp := make([]api.UserSummary, 0, len(users))
	for _, u := range users {
		resp = append(resp, api.UserSummary{
			UserID:        u.UserID,
			CreatedAt:     u.CreatedAt,
			SessionsCount: u.SessionsCount,
		})
	}
	return resp, nil
}

func (s *BackendService) CreateSession(r *http.Request) (any, error) {
	req, err := ParseRequestQueryParams[api.CreateSessionRequest](r)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(r.Context())

	if req.UserID != "" {
		if _, err := chat.GetUser(db, req.UserID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, CodedErrorf(http.StatusNotFound, "Invalid user_id")
			}
			slog.Error("error looking up user", "user_id", req.UserID, "error", err)
			return nil, CodedErrorf(http.StatusInternalServerError, "error retrieving user record")
		}
	}

	session, err := chat.CreateSession(db, req.UserID)
	if err != nil {
		slog.Error("error creating session", "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "failed to create session")
	}

	slog.Info("created session", "session_id", session.SessionID, "user_id", req.UserID)
	return api.CreateSessionResponse{
		SessionID: session.SessionID,
		UserID:    nullStringPtr(session.UserID),
	}, nil
}

func (s *BackendService) GetUserSessions(r *http.Request) (any, error) {
	userID, err := URLParam(r, "user_id")
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(r.Context())

	if _, err := chat.GetUser(db, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, CodedErrorf(http.StatusNotFound, "User not found")
		}
		slog.Error("error looking up user", "user_id", userID, "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "error retrieving user record")
	}

	sessions, err := chat.GetUserSessions(db, userID)
	if err != nil {
		slog.Error("error listing sessions", "user_id", userID, "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "failed to list sessions")
	}

	resp := make([]api.SessionSummary, 0, len(sessions))
	for _, sess := range sessions {
		resp = append(resp, api.SessionSummary{
			SessionID:    sess.SessionID,
			CreatedAt:    sess.CreatedAt,
			HistoryCount: sess.HistoryCount,
		})
	}
	return resp, nil
}

func (s *BackendService) GetUserStats(r *http.Request) (any, error) {
	userID, err := URLParam(r, "user_id")
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(r.Context())

	user, err := chat.GetUser(db, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, CodedErrorf(http.StatusNotFound, "User not found")
		}
		slog.Error("error looking up user", "user_id", userID, "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "error retrieving user record")
	}

	stats, err := chat.GetUserStats(db, userID)
	if err != nil {
		slog.Error("error aggregating user stats", "user_id", userID, "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "failed to aggregate stats")
	}

	return api.UserStatsResponse{
		UserID:          user.UserID,
		CreatedAt:       user.CreatedAt,
		SessionsCount:   stats.SessionsCount,
		TotalMessages:   stats.TotalMessages,
		SystemPrompts:   stats.SystemPrompts,
		LastSessionTime: nullTimePtr(stats.LastSessionTime),
		LastMessageTime: nullTimePtr(stats.LastMessageTime),
	}, nil
}

func (s *BackendService) GetGlobalStats(r *http.Request) (any, error) {
	stats, err := chat.GetGlobalStats(s.db.WithContext(r.Context()))
	if err != nil {
		slog.Error("error aggregating global stats", "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "failed to aggregate stats")
	}

	return api.GlobalStatsResponse{
		UsersCount:      stats.UsersCount,
		SessionsCount:   stats.SessionsCount,
		TotalMessages:   stats.TotalMessages,
		SystemPrompts:   stats.SystemPrompts,
		LastSessionTime: nullTimePtr(stats.LastSessionTime),
		LastMessageTime: nullTimePtr(stats.LastMessageTime),
	}, nil
}

func (s *BackendService) Reset(r *http.Request) (any, error) {
	if err := database.Reset(s.db.WithContext(r.Context())); err != nil {
		slog.Error("error resetting database", "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "failed to reset database")
	}

	slog.Info("database reset")
	return api.ResetResponse{Status: "Database reset successful"}, nil
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func nullTimePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	return &nt.Time
}
