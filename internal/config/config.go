package config

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port        string
	APIPrefix   string
	CORSOrigins []string

	MongoURI      string
	MongoDB       string
	RedisAddr     string
	RedisPassword string
	PostgresDSN   string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	MediaPublicURL string
	MediaMemory    bool
	UploadDir      string
	MaxUploadBytes int64
	ImageMaxWidth  int

	AccessTokenSecret  string
	AccessTokenExpiry  time.Duration
	RefreshTokenSecret string
	RefreshTokenExpiry time.Duration
	CookieSecure       bool
	CookieSameSite     http.SameSite

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	RateLimitRPS   float64
	RateLimitBurst int

	LogLevel  string
	LogFormat string
}

// Load reads .env (if present) and then the process environment.
func Load() *Config {
	_ = godotenv.Load() // optional in production

	cfg := &Config{
		Port:        getenv("PORT", "8000"),
		APIPrefix:   strings.TrimRight(getenv("API_PREFIX", "/api/v1"), "/"),
		CORSOrigins: splitList(getenv("CORS_ORIGINS", "http://localhost:5173")),

		MongoURI:      getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:       getenv("MONGO_DB", "canva"),
		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		PostgresDSN:   getenv("POSTGRES_DSN", ""),

		MinioEndpoint:  getenv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getenv("MINIO_BUCKET", "canva-media"),
		MinioUseSSL:    getenv("MINIO_USE_SSL", "false") == "true",
		MediaMemory:    getenv("MEDIA_MEMORY", "true") == "true",
		UploadDir:      getenv("UPLOAD_DIR", os.TempDir()),
		MaxUploadBytes: getint64("MAX_UPLOAD_BYTES", 3<<20),
		ImageMaxWidth:  int(getint64("IMAGE_MAX_WIDTH", 1080)),

		AccessTokenSecret:  getenv("ACCESS_TOKEN_SECRET", ""),
		AccessTokenExpiry:  getduration("ACCESS_TOKEN_EXPIRY", 24*time.Hour),
		RefreshTokenSecret: getenv("REFRESH_TOKEN_SECRET", ""),
		RefreshTokenExpiry: getduration("REFRESH_TOKEN_EXPIRY", 60*24*time.Hour),
		CookieSecure:       getenv("COOKIE_SECURE", "true") == "true",
		CookieSameSite:     parseSameSite(getenv("COOKIE_SAMESITE", "none")),

		GoogleClientID:     getenv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getenv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getenv("GOOGLE_REDIRECT_URL", "postmessage"),

		RateLimitRPS:   getfloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: int(getint64("RATE_LIMIT_BURST", 10)),

		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "json"),
	}
	cfg.MediaPublicURL = strings.TrimRight(getenv("MEDIA_PUBLIC_URL", defaultPublicURL(cfg)), "/")
	return cfg
}

// Validate reports configuration the server cannot run without.
func (c *Config) Validate() error {
	var errs []error
	if c.AccessTokenSecret == "" {
		errs = append(errs, errors.New("ACCESS_TOKEN_SECRET is required"))
	}
	if c.RefreshTokenSecret == "" {
		errs = append(errs, errors.New("REFRESH_TOKEN_SECRET is required"))
	}
	if c.AccessTokenSecret != "" && c.AccessTokenSecret == c.RefreshTokenSecret {
		errs = append(errs, errors.New("access and refresh token secrets must differ"))
	}
	if c.MongoURI == "" {
		errs = append(errs, errors.New("MONGO_URI is required"))
	}
	if c.AccessTokenExpiry <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_EXPIRY must be positive"))
	}
	if c.RefreshTokenExpiry <= 0 {
		errs = append(errs, errors.New("REFRESH_TOKEN_EXPIRY must be positive"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	return errors.Join(errs...)
}

func defaultPublicURL(c *Config) string {
	scheme := "http"
	if c.MinioUseSSL {
		scheme = "https"
	}
	return scheme + "://" + c.MinioEndpoint
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint64(key string, fallback int64) int64 {
	if n, err := strconv.ParseInt(os.Getenv(key), 10, 64); err == nil {
		return n
	}
	return fallback
}

func getfloat(key string, fallback float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return fallback
}

// getduration accepts Go durations plus a "d" suffix for days ("60d").
func getduration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := ParseDuration(v); err == nil {
		return d
	}
	return fallback
}

// ParseDuration is time.ParseDuration with support for whole days.
func ParseDuration(v string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(v, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, err
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(v)
}

func parseSameSite(v string) http.SameSite {
	switch strings.ToLower(v) {
	case "lax":
		return http.SameSiteLaxMode
	case "strict":
		return http.SameSiteStrictMode
	default:
		return http.SameSiteNoneMode
	}
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if s := strings.TrimRight(strings.TrimSpace(p), "/"); s != "" {
			out = append(out, s)
		}
	}
	return out
}
