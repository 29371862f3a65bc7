package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	backend "chatcontext-backend/internal/api"
	"chatcontext-backend/internal/database"
	"chatcontext-backend/internal/llm"
	"chatcontext-backend/pkg/api"
)

func createDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, database.GetMigrator(db).Migrate())

	return db
}

// mockLLM replays canned replies in order and records the message lists it
// was called with.
type mockLLM struct {
	replies []string
	err     error
	calls   [][]llm.Message
	models  []string
}

func (m *mockLLM) Complete(ctx context.Context, model string, messages []llm.Message) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.calls = append(m.calls, messages)
	m.models = append(m.models, model)

	reply := "ok"
	if len(m.replies) > 0 {
		reply = m.replies[0]
		m.replies = m.replies[1:]
	}
	return reply, nil
}

func createRouter(db *gorm.DB, client llm.Client) chi.Router {
	router := chi.NewRouter()
	backend.NewBackendService(db).AddRoutes(router)
	backend.NewChatService(db, client).AddRoutes(router)
	return router
}

func do(t *testing.T, router chi.Router, method, endpoint string, dest any) int {
	req := httptest.NewRequest(method, endpoint, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if dest != nil && rec.Code == http.StatusOK {
		require.NoError(t, json.NewDecoder(rec.Body).Decode(dest))
	}
	return rec.Code
}

func createUser(t *testing.T, router chi.Router) string {
	var resp api.CreateUserResponse
	require.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/users", &resp))
	require.NotEmpty(t, resp.UserID)
	return resp.UserID
}

func createSession(t *testing.T, router chi.Router, userID string) api.CreateSessionResponse {
	endpoint := "/sessions"
	if userID != "" {
		endpoint += "?user_id=" + userID
	}
	var resp api.CreateSessionResponse
	require.Equal(t, http.StatusOK, do(t, router, http.MethodPost, endpoint, &resp))
	require.NotEmpty(t, resp.SessionID)
	return resp
}

func chatTurn(t *testing.T, router chi.Router, sessionID, message, model string) api.ChatResponse {
	params := url.Values{"session_id": {sessionID}, "message": {message}}
	if model != "" {
		params.Set("model", model)
	}
	var resp api.ChatResponse
	require.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/chat?"+params.Encode(), &resp))
	return resp
}

func setSystemPrompt(t *testing.T, router chi.Router, sessionID, prompt string) {
	params := url.Values{"session_id": {sessionID}, "prompt": {prompt}}
	require.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/chat/system_prompt?"+params.Encode(), nil))
}

func TestCreateUserThenSession(t *testing.T) {
	router := createRouter(createDB(t), &mockLLM{})

	userID := createUser(t, router)
	session := createSession(t, router, userID)

	require.NotNil(t, session.UserID)
	assert.Equal(t, userID, *session.UserID)
}

func TestCreateAnonymousSession(t *testing.T) {
	router := createRouter(createDB(t), &mockLLM{})

	session := createSession(t, router, "")
	assert.Nil(t, session.UserID)
}

func TestCreateSessionUnknownUser(t *testing.T) {
	router := createRouter(createDB(t), &mockLLM{})

	code := do(t, router, http.MethodPost, "/sessions?user_id=does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestGetAllUsers(t *testing.T) {
	router := createRouter(createDB(t), &mockLLM{replies: []string{"ok"}})

	first := createUser(t, router)
	second := createUser(t, router)
	createSession(t, router, first)
	createSession(t, router, first)
	createSession(t, router, second)

	var users []api.UserSummary
	require.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/users", &users))

	require.Len(t, users, 2)
	assert.Equal(t, first, users[0].UserID)
	assert.Equal(t, int64(2), users[0].SessionsCount)
	assert.Equal(t, second, users[1].UserID)
	assert.Equal(t, int64(1), users[1].SessionsCount)
}

func TestGetUserSessions(t *testing.T) {
	router := createRouter(createDB(t), &mockLLM{replies: []string{"reply"}})

	userID := createUser(t, router)
	first := createSession(t, router, userID)
	second := createSession(t, router, userID)

	setSystemPrompt(t, router, first.SessionID, "be brief")
	chatTurn(t, router, first.SessionID, "hello", "")

	var sessions []api.SessionSummary
	require.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/sessions/"+userID, &sessions))

	require.Len(t, sessions, 2)
	assert.Equal(t, first.SessionID, sessions[0].SessionID)
	assert.Equal(t, int64(2), sessions[0].HistoryCount)
	assert.Equal(t, second.SessionID, sessions[1].SessionID)
	assert.Equal(t, int64(0), sessions[1].HistoryCount)
}

func TestGetUserSessionsUnknownUser(t *testing.T) {
	router := createRouter(createDB(t), &mockLLM{})

	code := do(t, router, http.MethodGet, "/sessions/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestUserStats(t *testing.T) {
	router := createRouter(createDB(t), &mockLLM{replies: []string{"A'", "B'"}})

	userID := createUser(t, router)
	session := createSession(t, router, userID)

	setSystemPrompt(t, router, session.SessionID, "P")
	chatTurn(t, router, session.SessionID, "A", "")
	chatTurn(t, router, session.SessionID, "B", "")

	var stats api.UserStatsResponse
	require.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/stats/user/"+userID, &stats))

	assert.Equal(t, userID, stats.UserID)
	assert.Equal(t, int64(1), stats.SessionsCount)
	assert.Equal(t, int64(4), stats.TotalMessages)
	assert.Equal(t, int64(1), stats.SystemPrompts)
	assert.NotNil(t, stats.LastSessionTime)
	assert.NotNil(t, stats.LastMessageTime)
}

func TestUserStatsNoActivity(t *testing.T) {
	router := createRouter(createDB(t), &mockLLM{})

	userID := createUser(t, router)

	var stats api.UserStatsResponse
	require.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/stats/user/"+userID, &stats))

	assert.Equal(t, int64(0), stats.SessionsCount)
	assert.Equal(t, int64(0), stats.TotalMessages)
	assert.Nil(t, stats.LastSessionTime)
	assert.Nil(t, stats.LastMessageTime)
}

func TestUserStatsUnknownUser(t *testing.T) {
	router := createRouter(createDB(t), &mockLLM{})

	code := do(t, router, http.MethodGet, "/stats/user/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestGlobalStatsIncludeAnonymousSessions(t *testing.T) {
	router := createRouter(createDB(t), &mockLLM{replies: []string{"hi there", "anon reply"}})

	userID := createUser(t, router)
	owned := createSession(t, router, userID)
	anonymous := createSession(t, router, "")

	setSystemPrompt(t, router, owned.SessionID, "P")
	chatTurn(t, router, owned.SessionID, "hello", "")
	chatTurn(t, router, anonymous.SessionID, "anon hello", "")

	var global api.GlobalStatsResponse
	require.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/stats/global", &global))

	var user api.UserStatsResponse
	require.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/stats/user/"+userID, &user))

	assert.Equal(t, int64(1), global.UsersCount)
	assert.Equal(t, user.SessionsCount+1, global.SessionsCount)
	assert.Equal(t, user.TotalMessages+2, global.TotalMessages)
	assert.Equal(t, user.SystemPrompts, global.SystemPrompts)
	assert.NotNil(t, global.LastSessionTime)
	assert.NotNil(t, global.LastMessageTime)
}

func TestGlobalStatsEmptyStore(t *testing.T) {
	router := createRouter(createDB(t), &mockLLM{})

	var global api.GlobalStatsResponse
	require.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/stats/global", &global))

	assert.Equal(t, int64(0), global.UsersCount)
	assert.Equal(t, int64(0), global.SessionsCount)
	assert.Nil(t, global.LastSessionTime)
	assert.Nil(t, global.LastMessageTime)
}

func TestReset(t *testing.T) {
	router := createRouter(createDB(t), &mockLLM{replies: []string{"gone soon"}})

	userID := createUser(t, router)
	session := createSession(t, router, userID)
	chatTurn(t, router, session.SessionID, "hello", "")

	var resp api.ResetResponse
	require.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/reset", &resp))
	assert.True(t, strings.Contains(resp.Status, "reset"))

	var users []api.UserSummary
	require.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/users", &users))
	assert.Empty(t, users)

	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/stats/user/"+userID, nil))
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodPost, "/sessions?user_id="+userID, nil))

	params := url.Values{"session_id": {session.SessionID}, "message": {"anyone home?"}}
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodPost, "/chat?"+params.Encode(), nil))

	var global api.GlobalStatsResponse
	require.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/stats/global", &global))
	assert.Equal(t, int64(0), global.SessionsCount)

	var history []api.HistoryItem
	require.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/history/"+session.SessionID, &history))
	assert.Empty(t, history)
}

func TestHealth(t *testing.T) {
	router := createRouter(createDB(t), &mockLLM{})

	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/health", nil))
}
