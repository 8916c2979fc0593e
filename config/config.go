package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Config holds the runtime settings read from the environment (and .env, when present).
type Config struct {
	ServerPort  string
	GinMode     string
	Environment string
	LogLevel    string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBDatabase string
	DBUsername string
	DBPassword string
	DBSSLMode  string
	DebugSQL   bool

	JWTSecret string
	TokenTTL  time.Duration

	UploadPath     string
	StorageBackend string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	SMTPHost          string
	SMTPPort          int
	SMTPUser          string
	SMTPPass          string
	SMTPFrom          string
	SMTPSkipTLSVerify bool

	CORSOrigins []string
}

// Load reads the configuration. godotenv.Load should already have run.
func Load() Config {
	return Config{
		ServerPort:  getenv("SERVER_PORT", "8080"),
		GinMode:     getenv("GIN_MODE", "debug"),
		Environment: strings.ToLower(getenv("ENVIRONMENT", "development")),
		LogLevel:    getenv("LOG_LEVEL", ""),

		DBDriver:   strings.ToLower(getenv("DB_DRIVER", "mysql")),
		DBHost:     getenv("DB_HOST", "localhost"),
		DBPort:     getenv("DB_PORT", "3306"),
		DBDatabase: getenv("DB_DATABASE", "records_portal"),
		DBUsername: getenv("DB_USERNAME", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBSSLMode:  getenv("DB_SSLMODE", "disable"),
		DebugSQL:   strings.EqualFold(os.Getenv("DEBUG_SQL"), "true"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		TokenTTL:  time.Duration(getenvInt("JWT_EXPIRE_HOURS", 24)) * time.Hour,

		UploadPath:     getenv("UPLOAD_PATH", "./uploads"),
		StorageBackend: strings.ToLower(getenv("STORAGE_BACKEND", "local")),
		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getenv("MINIO_BUCKET", "rms-attachments"),
		MinioUseSSL:    os.Getenv("MINIO_USE_SSL") == "1",

		SMTPHost:          os.Getenv("SMTP_HOST"),
		SMTPPort:          getenvInt("SMTP_PORT", 587),
		SMTPUser:          os.Getenv("SMTP_USER"),
		SMTPPass:          os.Getenv("SMTP_PASS"),
		SMTPFrom:          os.Getenv("SMTP_FROM"),
		SMTPSkipTLSVerify: os.Getenv("SMTP_SKIP_TLS_VERIFY") == "1",

		CORSOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
	}
}

// IsProduction reports whether ENVIRONMENT=production.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// LogSummary writes the non-secret parts of the configuration.
func (c Config) LogSummary(logger *zap.Logger) {
	logger.Info("Application configuration",
		zap.String("port", c.ServerPort),
		zap.String("environment", c.Environment),
		zap.String("db_driver", c.DBDriver),
		zap.String("db_host", c.DBHost),
		zap.String("db_name", c.DBDatabase),
		zap.String("storage_backend", c.StorageBackend),
		zap.Bool("smtp_configured", c.SMTPHost != "" && c.SMTPFrom != ""),
		zap.Bool("jwt_secret_set", c.JWTSecret != ""),
		zap.Strings("cors_origins", c.CORSOrigins),
	)
}

func getenv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
