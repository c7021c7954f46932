package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server settings
	ListenAddr  string        `json:"listen_addr"`
	Debug       bool          `json:"debug"`
	HTTPTimeout time.Duration `json:"http_timeout"`
	Timezone    string        `json:"timezone"`

	// Storage
	DatabaseURL     string `json:"-"`
	ExportDirectory string `json:"export_directory"`

	// Auth
	JWTSecret   string `json:"-"`
	JWTAudience string `json:"jwt_audience"`

	// Telegram
	TelegramBotToken      string `json:"-"`
	TelegramWebhookSecret string `json:"-"`
	TelegramWebhookURL    string `json:"telegram_webhook_url"`

	// Classifier
	GeminiAPIKey string `json:"-"`
	GeminiModel  string `json:"gemini_model"`
}

// DefaultConfig returns configuration with sensible defaults
func DefaultConfig() *Config {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}

	return &Config{
		ListenAddr:      ":8080",
		Debug:           false,
		HTTPTimeout:     15 * time.Second,
		Timezone:        "Asia/Jakarta",
		DatabaseURL:     "sqlite:" + filepath.Join(wd, "data", "myfinance.db"),
		ExportDirectory: filepath.Join(wd, "data", "exports"),
		GeminiModel:     "gemini-2.0-flash",
	}
}

// Load reads a .env file when present and overrides defaults from the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	cfg := DefaultConfig()

	if addr := os.Getenv("MYFIN_LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
	if debug := os.Getenv("MYFIN_DEBUG"); debug == "true" || debug == "1" {
		cfg.Debug = true
	}
	if tz := os.Getenv("MYFIN_TIMEZONE"); tz != "" {
		cfg.Timezone = tz
	}
	if d := os.Getenv("MYFIN_HTTP_TIMEOUT"); d != "" {
		if parsed, err := time.ParseDuration(d); err == nil {
			cfg.HTTPTimeout = parsed
		} else {
			log.Printf("Warning: invalid MYFIN_HTTP_TIMEOUT %q: %v", d, err)
		}
	}
	if dir := os.Getenv("MYFIN_EXPORT_DIR"); dir != "" {
		cfg.ExportDirectory = dir
	}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.DatabaseURL = dsn
	}

	cfg.JWTSecret = os.Getenv("AUTH_JWT_SECRET")
	cfg.JWTAudience = os.Getenv("AUTH_JWT_AUDIENCE")
	cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.TelegramWebhookSecret = os.Getenv("TELEGRAM_WEBHOOK_SECRET")
	cfg.TelegramWebhookURL = os.Getenv("TELEGRAM_WEBHOOK_URL")
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		cfg.GeminiModel = model
	}

	return cfg
}

// Validate reports every missing setting the server cannot start without.
func (c *Config) Validate() error {
	var missing []string
	required := []struct {
		name  string
		value string
	}{
		{"DATABASE_URL", c.DatabaseURL},
		{"AUTH_JWT_SECRET", c.JWTSecret},
		{"TELEGRAM_BOT_TOKEN", c.TelegramBotToken},
		{"TELEGRAM_WEBHOOK_SECRET", c.TelegramWebhookSecret},
		{"GEMINI_API_KEY", c.GeminiAPIKey},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid MYFIN_TIMEZONE %q: %w", c.Timezone, err)
	}
	return nil
}

// Location returns the configured time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// EnsureDirectories creates the directories the process writes into.
func (c *Config) EnsureDirectories() {
	dirs := []string{c.ExportDirectory}
	if path, ok := strings.CutPrefix(c.DatabaseURL, "sqlite:"); ok && path != ":memory:" && path != "" {
		dirs = append(dirs, filepath.Dir(path))
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Printf("Warning: could not create directory %s: %v", dir, err)
		}
	}
}
