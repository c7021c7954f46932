package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fanzirfan/MyFinance/internal/auth"
	"github.com/fanzirfan/MyFinance/internal/config"
	"github.com/fanzirfan/MyFinance/internal/handlers/dashboard"
	"github.com/fanzirfan/MyFinance/internal/handlers/exports"
	telegramhandlers "github.com/fanzirfan/MyFinance/internal/handlers/telegram"
	"github.com/fanzirfan/MyFinance/internal/handlers/transactions"
	"github.com/fanzirfan/MyFinance/internal/handlers/wallets"
	api "github.com/fanzirfan/MyFinance/internal/http"
	"github.com/fanzirfan/MyFinance/internal/services/bot"
	"github.com/fanzirfan/MyFinance/internal/services/intent"
	"github.com/fanzirfan/MyFinance/internal/services/ledger"
	"github.com/fanzirfan/MyFinance/internal/services/summary"
	"github.com/fanzirfan/MyFinance/internal/store"
	"github.com/fanzirfan/MyFinance/internal/telegram"
	"github.com/fanzirfan/MyFinance/internal/version"
)

var (
	cfg      *config.Config
	db       *store.Store
	verifier *auth.Verifier

	// Set before SetupDependencies to replace the Gemini classifier or
	// the Telegram client.
	classifier intent.Classifier
	messenger  bot.Messenger
)

func main() {
	cfg = config.Load()
	info := version.Get()
	log.Printf("Starting MyFinance %s on %s", info.Short(), cfg.ListenAddr)
	if warning := info.Check(); warning != "" {
		log.Print(warning)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	cfg.EnsureDirectories()

	if err := SetupDependencies(cfg); err != nil {
		log.Fatalf("Failed to set up dependencies: %v", err)
	}
	defer db.Close()

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      2 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

// SetupDependencies opens the database (unless db is already set),
// applies the schema and default categories, and wires every handler
// package.
func SetupDependencies(c *config.Config) error {
	cfg = c
	ctx := context.Background()

	if db == nil {
		var err error
		if db, err = store.Open(ctx, c.DatabaseURL); err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		log.Printf("Connected to %s database", db.Dialect())
	}
	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if added, err := db.SeedCategories(ctx); err != nil {
		return fmt.Errorf("seed categories: %w", err)
	} else if added > 0 {
		log.Printf("Seeded %d default categories", added)
	}

	loc := c.Location()
	ledgerSvc := ledger.New(db, loc)
	summarySvc := summary.New(db, loc)

	if classifier == nil && c.GeminiAPIKey != "" {
		g, err := intent.NewGemini(ctx, c.GeminiAPIKey, c.GeminiModel, c.Debug)
		if err != nil {
			return err
		}
		classifier = g
	}
	if classifier == nil {
		log.Printf("Warning: GEMINI_API_KEY not set, the bot only answers commands and balance questions")
	}

	if messenger == nil {
		tg, err := telegram.New(c.TelegramBotToken, "", c.HTTPTimeout)
		if err != nil {
			return err
		}
		messenger = tg
	}

	verifier = auth.NewVerifier([]byte(c.JWTSecret), c.JWTAudience)

	wallets.Initialize(ledgerSvc)
	transactions.Initialize(ledgerSvc)
	dashboard.Initialize(summarySvc)
	exports.Initialize(db, loc)
	telegramhandlers.Initialize(bot.New(db, ledgerSvc, classifier, messenger), db, c.TelegramWebhookSecret)
	return nil
}

// SetupRouter creates the chi router with all routes
func SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handleHealth)
		telegramhandlers.RegisterWebhook(r)

		r.Group(func(r chi.Router) {
			r.Use(verifier.Middleware)
			wallets.RegisterRoutes(r)
			transactions.RegisterRoutes(r)
			dashboard.RegisterRoutes(r)
			exports.RegisterRoutes(r)
			telegramhandlers.RegisterRoutes(r)
		})
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	info := version.Get()
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := db.Ping(ctx); err != nil {
		log.Printf("Health check: database ping failed: %v", err)
		api.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "unavailable",
			"version": info.Short(),
		})
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"version":  info.Short(),
		"database": db.Dialect().String(),
	})
}
