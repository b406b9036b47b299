package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultMaxUploadSize is the per-file ceiling for image uploads (5 MiB).
const DefaultMaxUploadSize = 5 * 1024 * 1024

// Config holds the application configuration
type Config struct {
	ServerPort    string
	DatabaseURL   string
	JWTSecret     string
	FrontendURL   string
	CORSOrigin    string
	UploadDir     string
	MaxUploadSize int64

	GitHub GitHubConfig
}

// GitHubConfig holds the optional GitHub OAuth settings. OAuth routes are
// disabled when ClientID or ClientSecret is empty.
type GitHubConfig struct {
	ClientID      string
	ClientSecret  string
	CallbackURL   string
	AllowedLogins []string // empty means any GitHub login may provision an admin
}

// Load reads configuration from environment variables.
//
// DATABASE_URL and JWT_SECRET are required; their absence is a startup
// error, not a per-request one.
func Load() (*Config, error) {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	frontendURL := getEnv("FRONTEND_URL", "http://localhost:5173")

	maxUploadSize := int64(DefaultMaxUploadSize)
	if raw := os.Getenv("MAX_UPLOAD_SIZE"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("MAX_UPLOAD_SIZE must be a positive integer, got %q", raw)
		}
		maxUploadSize = parsed
	}

	cfg := &Config{
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		DatabaseURL:   databaseURL,
		JWTSecret:     jwtSecret,
		FrontendURL:   frontendURL,
		CORSOrigin:    getEnv("CORS_ORIGIN", frontendURL),
		UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
		MaxUploadSize: maxUploadSize,
		GitHub: GitHubConfig{
			ClientID:      os.Getenv("GITHUB_CLIENT_ID"),
			ClientSecret:  os.Getenv("GITHUB_CLIENT_SECRET"),
			CallbackURL:   getEnv("GITHUB_CALLBACK_URL", "http://localhost:8080/auth/github/callback"),
			AllowedLogins: splitList(os.Getenv("GITHUB_ALLOWED_LOGINS")),
		},
	}

	return cfg, nil
}

// GitHubEnabled reports whether OAuth login is configured.
func (c *Config) GitHubEnabled() bool {
	return c.GitHub.ClientID != "" && c.GitHub.ClientSecret != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
