package config

import (
	"os"
	"strconv"
	"strings"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for the rendered-document cache.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// SecurityConfig holds the access-control knobs.
type SecurityConfig struct {
	// SigningSecret keys the signed-URL HMAC. Required; startup fails
	// without it.
	SigningSecret string
	// AuthTokenSecret verifies requester bearer tokens. Empty disables
	// authenticated requests (everyone is anonymous).
	AuthTokenSecret string
	// LogoutTimeoutMinutes bounds anonymous IP-matched access to an entry's
	// documents. 0 disables the timeout.
	LogoutTimeoutMinutes int
	// RestrictToAdmin requires an admin capability from every authenticated
	// requester, entry owner or not.
	RestrictToAdmin bool
	// AdminCapabilities is the capability list any one of which satisfies
	// the capability check.
	AdminCapabilities []string
	// SignedURLExpiryHours is the default lifetime of generated signed
	// links.
	SignedURLExpiryHours int
	// ServerIP is this host's own outbound address, used to reject spoofed
	// owner lookups from misconfigured proxies.
	ServerIP string
}

// RendererConfig points at the external PDF rendering service.
type RendererConfig struct {
	Endpoint   string
	TimeoutSec int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost string
	Port    string
	// BaseURL is the externally visible origin used when building document
	// URLs.
	BaseURL string
	// PrettyPermalinks selects the path URL form over the query form.
	PrettyPermalinks bool

	Database DatabaseConfig
	MinIO    MinIOConfig
	Security SecurityConfig
	Renderer RendererConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:          getEnv("APP_HOST", "localhost:8080"),
		Port:             getEnv("PORT", "8080"), // default only for non-sensitive value
		BaseURL:          getEnv("BASE_URL", "http://localhost:8080"),
		PrettyPermalinks: getEnvBool("PRETTY_PERMALINKS", true),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "pdf-cache"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Security: SecurityConfig{
			SigningSecret:        getEnv("SIGNING_SECRET", ""),
			AuthTokenSecret:      getEnv("AUTH_TOKEN_SECRET", ""),
			LogoutTimeoutMinutes: getEnvInt("LOGOUT_TIMEOUT_MINUTES", 20),
			RestrictToAdmin:      getEnvBool("RESTRICT_TO_ADMIN", false),
			AdminCapabilities:    getEnvCSV("ADMIN_CAPABILITIES", []string{"manage_documents"}),
			SignedURLExpiryHours: getEnvInt("SIGNED_URL_EXPIRY_HOURS", 24),
			ServerIP:             getEnv("SERVER_IP", ""),
		},
		Renderer: RendererConfig{
			Endpoint:   getEnv("RENDERER_ENDPOINT", ""),
			TimeoutSec: getEnvInt("RENDERER_TIMEOUT_SEC", 30),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvCSV(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
