package config

import (
	"os"
	"strconv"
	"strings"
)

// OpenRouterConfig holds the settings for the AI gateway client.
type OpenRouterConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	UseMock     bool
}

// Config carries every runtime setting the server needs. It is built once
// in main and passed to the components that use it; nothing reads the
// environment after startup.
type Config struct {
	Env         string // development, production
	Port        string
	DatabaseURL string

	JWTSecret        string
	JWTIssuer        string
	JWTExpiryMinutes int

	AllowedOrigins []string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	FrontendURL        string

	// TrackInventory enables raw-material consumption when a sale is created.
	TrackInventory bool

	OpenRouter OpenRouterConfig
}

// Load reads the environment into a Config. Call godotenv.Load first.
func Load() Config {
	return Config{
		Env:         getenv("APP_ENV", "development"),
		Port:        getenv("PORT", "8080"),
		DatabaseURL: getenv("DATABASE_URL", "host=localhost user=postgres dbname=cazuela port=5432 sslmode=disable"),

		JWTSecret:        getenv("JWT_SECRET", "change-me-in-production"),
		JWTIssuer:        getenv("JWT_ISSUER", "la-cazuela-chapina"),
		JWTExpiryMinutes: getint("JWT_EXPIRY_MINUTES", 480),

		AllowedOrigins: strings.Split(getenv("ALLOWED_ORIGINS", "http://localhost:3000"), ","),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
		FrontendURL:        getenv("FRONTEND_URL", "http://localhost:3000"),

		TrackInventory: getbool("TRACK_INVENTORY", true),

		OpenRouter: OpenRouterConfig{
			APIKey:      os.Getenv("OPENROUTER_API_KEY"),
			BaseURL:     getenv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
			Model:       getenv("OPENROUTER_MODEL", "meta-llama/llama-3.2-3b-instruct:free"),
			MaxTokens:   getint("OPENROUTER_MAX_TOKENS", 1000),
			Temperature: getfloat("OPENROUTER_TEMPERATURE", 0.7),
			UseMock:     getbool("OPENROUTER_USE_MOCK", false),
		},
	}
}

// IsProduction reports whether diagnostic detail should be suppressed in
// error responses.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getfloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getbool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
