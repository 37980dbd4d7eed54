package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported storage providers.
const (
	StorageLocal      = "local"
	StorageS3         = "s3"
	StorageR2         = "r2"
	StorageCloudinary = "cloudinary"
)

// Supported email providers.
const (
	EmailResend   = "resend"
	EmailSendgrid = "sendgrid"
	EmailLog      = "log"
)

// Supported search modes.
const (
	SearchFullText = "fulltext"
	SearchSimple   = "simple"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName           string
	AppEnv            string
	AppPort           string
	LogLevel          string
	CORSOrigins       string
	DatabaseURL       string
	RedisURL          string
	JWTSecret         string
	JWTTTL            time.Duration
	SessionTTL        time.Duration
	DashboardCacheTTL time.Duration
	Storage           StorageConfig
	Email             EmailConfig
	SearchMode        string
	SearchLanguage    string
	NATSURL           string
	EventsPrefix      string
}

// StorageConfig selects and configures the file storage backend.
type StorageConfig struct {
	Provider         string
	LocalDir         string
	PublicURL        string
	MaxUploadMB      int
	AWSRegion        string
	AWSAccessKey     string
	AWSSecretKey     string
	AWSBucket        string
	AWSPublicURL     string
	R2AccountID      string
	R2AccessKey      string
	R2SecretKey      string
	R2Bucket         string
	R2PublicURL      string
	CloudinaryName   string
	CloudinaryKey    string
	CloudinarySecret string
	CloudinaryFolder string
}

// EmailConfig configures the transactional email provider.
type EmailConfig struct {
	Provider       string
	ResendAPIKey   string
	SendgridAPIKey string
	From           string
	FromName       string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// IsProduction reports whether the service runs with production settings.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "CUBIS Academy API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("cors.origins", "*")
	v.SetDefault("jwt.ttl", "24h")
	v.SetDefault("session.ttl", "168h")
	v.SetDefault("dashboard.cache_ttl", "5m")
	v.SetDefault("storage.provider", StorageLocal)
	v.SetDefault("storage.local_dir", "./uploads")
	v.SetDefault("storage.public_url", "/uploads")
	v.SetDefault("storage.max_upload_mb", 10)
	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("cloudinary.folder", "cubis-academy")
	v.SetDefault("email.provider", EmailLog)
	v.SetDefault("email.from", "no-reply@cubis.academy")
	v.SetDefault("email.from_name", "CUBIS Academy")
	v.SetDefault("search.mode", SearchFullText)
	v.SetDefault("search.language", "english")
	v.SetDefault("events.subject_prefix", "cubis")

	jwtTTL, err := parseDuration(v, "jwt.ttl", "24h")
	if err != nil {
		return Config{}, fmt.Errorf("invalid jwt ttl: %w", err)
	}
	sessionTTL, err := parseDuration(v, "session.ttl", "168h")
	if err != nil {
		return Config{}, fmt.Errorf("invalid session ttl: %w", err)
	}
	dashboardTTL, err := parseDuration(v, "dashboard.cache_ttl", "5m")
	if err != nil {
		return Config{}, fmt.Errorf("invalid dashboard cache ttl: %w", err)
	}

	redisURL := v.GetString("redis.url")
	if redisURL == "" {
		redisURL = v.GetString("upstash.redis_url")
	}

	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppEnv:            v.GetString("app.env"),
		AppPort:           v.GetString("app.port"),
		LogLevel:          strings.ToLower(v.GetString("log.level")),
		CORSOrigins:       v.GetString("cors.origins"),
		DatabaseURL:       v.GetString("database.url"),
		RedisURL:          redisURL,
		JWTSecret:         v.GetString("jwt.secret"),
		JWTTTL:            jwtTTL,
		SessionTTL:        sessionTTL,
		DashboardCacheTTL: dashboardTTL,
		Storage: StorageConfig{
			Provider:         strings.ToLower(strings.TrimSpace(v.GetString("storage.provider"))),
			LocalDir:         v.GetString("storage.local_dir"),
			PublicURL:        v.GetString("storage.public_url"),
			MaxUploadMB:      v.GetInt("storage.max_upload_mb"),
			AWSRegion:        v.GetString("aws.region"),
			AWSAccessKey:     v.GetString("aws.access_key_id"),
			AWSSecretKey:     v.GetString("aws.secret_access_key"),
			AWSBucket:        v.GetString("aws.s3_bucket"),
			AWSPublicURL:     v.GetString("aws.s3_public_url"),
			R2AccountID:      v.GetString("r2.account_id"),
			R2AccessKey:      v.GetString("r2.access_key_id"),
			R2SecretKey:      v.GetString("r2.secret_access_key"),
			R2Bucket:         v.GetString("r2.bucket"),
			R2PublicURL:      v.GetString("r2.public_url"),
			CloudinaryName:   v.GetString("cloudinary.cloud_name"),
			CloudinaryKey:    v.GetString("cloudinary.api_key"),
			CloudinarySecret: v.GetString("cloudinary.api_secret"),
			CloudinaryFolder: v.GetString("cloudinary.folder"),
		},
		Email: EmailConfig{
			Provider:       strings.ToLower(strings.TrimSpace(v.GetString("email.provider"))),
			ResendAPIKey:   v.GetString("resend.api_key"),
			SendgridAPIKey: v.GetString("sendgrid.api_key"),
			From:           v.GetString("email.from"),
			FromName:       v.GetString("email.from_name"),
		},
		SearchMode:     strings.ToLower(strings.TrimSpace(v.GetString("search.mode"))),
		SearchLanguage: v.GetString("search.language"),
		NATSURL:        v.GetString("nats.url"),
		EventsPrefix:   v.GetString("events.subject_prefix"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks required settings and enumerated values.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt secret must be provided")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("database url must be provided")
	}

	switch c.Storage.Provider {
	case StorageLocal, StorageS3, StorageR2, StorageCloudinary:
	default:
		return fmt.Errorf("unsupported storage provider %q", c.Storage.Provider)
	}

	switch c.Email.Provider {
	case EmailResend, EmailSendgrid, EmailLog:
	default:
		return fmt.Errorf("unsupported email provider %q", c.Email.Provider)
	}

	switch c.SearchMode {
	case SearchFullText, SearchSimple:
	default:
		return fmt.Errorf("unsupported search mode %q", c.SearchMode)
	}

	return nil
}

func parseDuration(v *viper.Viper, key, fallback string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		raw = fallback
	}
	return time.ParseDuration(raw)
}
