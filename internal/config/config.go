package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string

	// DatabaseURL selects the backend: a postgres:// URL uses pgx, anything
	// else is a SQLite file path
	DatabaseURL string
	TablePrefix string

	// Upload side-channel
	UploadBackend string // "local" or "s3"
	UploadDir     string
	PublicBaseURL string
	S3Region      string
	S3Bucket      string
	S3Endpoint    string
	S3AccessKey   string
	S3SecretKey   string
	S3PublicURL   string

	// AI librarian
	AIProvider      string
	AnthropicAPIKey string
	AIModel         string

	// Auth is enabled when SupabaseURL is set
	SupabaseURL     string
	SupabaseJWKSURL string // SupabaseURL + /auth/v1/.well-known/jwks.json

	LogDir      string
	LogMaxFiles int
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	port := getEnv("PORT", "8080")
	supabaseURL := strings.TrimRight(getEnv("SUPABASE_URL", ""), "/")

	cfg := &Config{
		Port:        port,
		Environment: env,
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),

		DatabaseURL: getEnv("DATABASE_URL", "data/library.db"),
		TablePrefix: getTablePrefix(env),

		UploadBackend: getEnv("UPLOAD_BACKEND", "local"),
		UploadDir:     getEnv("UPLOAD_DIR", "data/uploads"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:"+port),
		S3Region:      getEnv("S3_REGION", "us-east-1"),
		S3Bucket:      getEnv("S3_BUCKET", ""),
		S3Endpoint:    getEnv("S3_ENDPOINT", ""),
		S3AccessKey:   getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:   getEnv("S3_SECRET_KEY", ""),
		S3PublicURL:   getEnv("S3_PUBLIC_URL", ""),

		AIProvider:      getEnv("AI_PROVIDER", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		AIModel:         getEnv("AI_MODEL", ""),

		SupabaseURL: supabaseURL,

		LogDir:      getEnv("LOG_DIR", ""),
		LogMaxFiles: getEnvInt("LOG_MAX_FILES", 10),
	}
	if supabaseURL != "" {
		cfg.SupabaseJWKSURL = supabaseURL + "/auth/v1/.well-known/jwks.json"
	}
	return cfg
}

// IsPostgres reports whether DatabaseURL points at a postgres server
func (c *Config) IsPostgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") || strings.HasPrefix(c.DatabaseURL, "postgresql://")
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
