package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"chatcontext-backend/cmd"
	"chatcontext-backend/internal/api"
	"chatcontext-backend/internal/database"
	"chatcontext-backend/internal/llm"
)

type APIConfig struct {
	DatabaseURL   string `env:"DATABASE_URL" envDefault:""`
	Root          string `env:"ROOT" envDefault:"./chatcontext"`
	APIPort       string `env:"API_PORT" envDefault:"8001"`
	OpenAIAPIKey  string `env:"OPENAI_API_KEY" envDefault:""`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL" envDefault:""`
}

func main() {
	log.Println("Starting API Server...")

	cmd.LoadEnvFile()

	var cfg APIConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("error parsing config: %v", err)
	}

	// With no DATABASE_URL the server runs off a local sqlite file.
	if cfg.DatabaseURL == "" {
		path := filepath.Join(cfg.Root, "db", "chatcontext.db")
		if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
			log.Fatalf("Failed to create database directory: %v", err)
		}
		cfg.DatabaseURL = path
	}

	db, err := database.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	client := llm.NewOpenAI(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey)

	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	backendHandler := api.NewBackendService(db)
	chatHandler := api.NewChatService(db, client)

	r.Route("/api/v1", func(r chi.Router) {
		backendHandler.AddRoutes(r)
		chatHandler.AddRoutes(r)
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.APIPort),
		Handler: r,
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Fatalf("Server forced to shutdown: %v", err)
		}
	}()

	log.Printf("API server listening on port %s", cfg.APIPort)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on %s: %v\n", cfg.APIPort, err)
	}

	log.Println("Server stopped.")
}
