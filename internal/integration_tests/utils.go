package integrationtests

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	backend "chatcontext-backend/internal/api"
	"chatcontext-backend/internal/database"
	"chatcontext-backend/internal/llm"
)

func setupPostgresContainer(t *testing.T, ctx context.Context) string {
	dbName, dbUser, dbPassword := "test_db", "test_user", "test_password"

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	t.Cleanup(func() {
		err := postgresContainer.Terminate(context.Background())
		require.NoError(t, err, "Failed to terminate PostgreSQL container")
	})

	connStr, err := postgresContainer.ConnectionString(ctx)
	require.NoError(t, err, "Failed to get PostgreSQL connection string")

	return connStr
}

func createDB(t *testing.T) *gorm.DB {
	uri := setupPostgresContainer(t, context.Background())
	db, err := database.NewDatabase(uri)
	require.NoError(t, err)

	return db
}

func createRouter(db *gorm.DB, client llm.Client) chi.Router {
	router := chi.NewRouter()
	backend.NewBackendService(db).AddRoutes(router)
	backend.NewChatService(db, client).AddRoutes(router)
	return router
}

func httpRequest(t *testing.T, api http.Handler, method, endpoint string, dest any) int {
	req := httptest.NewRequest(method, endpoint, nil)
	rec := httptest.NewRecorder()
	api.ServeHTTP(rec, req)

	if dest != nil && rec.Code == http.StatusOK {
		body, err := io.ReadAll(rec.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, dest))
	}
	return rec.Code
}

type scriptedLLM struct {
	replies []string
}

func (m *scriptedLLM) Complete(ctx context.Context, model string, messages []llm.Message) (string, error) {
	reply := "ok"
	if len(m.replies) > 0 {
		reply = m.replies[0]
		m.replies = m.replies[1:]
	}
	return reply, nil
}
