package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Upload   UploadConfig
	R2       R2Config
	Redis    RedisConfig
	SMTP     SMTPConfig
	Firebase FirebaseConfig
	Stripe   StripeConfig
	Admin    AdminConfig
	SeedDemo bool
}

type ServerConfig struct {
	Port           string
	BodyLimit      int
	AllowOrigins   string
	AuthRateMax    int
	AuthRateWindow time.Duration
}

type DatabaseConfig struct {
	Driver     string // postgres | sqlite
	SQLitePath string
	URL        string
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SSLMode    string
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type UploadConfig struct {
	Driver       string // local | r2
	Dir          string
	PublicPath   string
	MaxImageSize int64
	MaxVideoSize int64
	MaxImages    int
}

type R2Config struct {
	AccountID string
	AccessKey string
	SecretKey string
	Bucket    string
	PublicURL string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

type FirebaseConfig struct {
	CredentialsFile string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

type AdminConfig struct {
	Username string
	Email    string
	Password string
}

func Load() *Config {
	godotenv.Load() // .env is optional

	return &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "5000"),
			BodyLimit:      getEnvInt("BODY_LIMIT_MB", 120) * 1024 * 1024,
			AllowOrigins:   getEnv("CORS_ORIGINS", "*"),
			AuthRateMax:    getEnvInt("AUTH_RATE_MAX", 20),
			AuthRateWindow: getEnvDuration("AUTH_RATE_WINDOW", 15*time.Minute),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			SQLitePath: getEnv("SQLITE_PATH", "./diyari.db"),
			URL:        getEnv("DATABASE_URL", ""),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", ""),
			DBName:     getEnv("DB_NAME", "diyari"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "diyari-dev-secret"),
			TTL:    getEnvDuration("JWT_TTL", 7*24*time.Hour),
		},
		Upload: UploadConfig{
			Driver:       getEnv("UPLOAD_DRIVER", "local"),
			Dir:          getEnv("UPLOAD_DIR", "./uploads"),
			PublicPath:   getEnv("UPLOAD_PUBLIC_PATH", "/uploads"),
			MaxImageSize: getEnvInt64("MAX_IMAGE_SIZE", 10*1024*1024),
			MaxVideoSize: getEnvInt64("MAX_VIDEO_SIZE", 50*1024*1024),
			MaxImages:    getEnvInt("MAX_IMAGES", 10),
		},
		R2: R2Config{
			AccountID: getEnv("R2_ACCOUNT_ID", ""),
			AccessKey: getEnv("R2_ACCESS_KEY", ""),
			SecretKey: getEnv("R2_SECRET_KEY", ""),
			Bucket:    getEnv("R2_BUCKET_NAME", ""),
			PublicURL: getEnv("R2_PUBLIC_URL", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvInt("SMTP_PORT", 587),
			User:     getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASS", ""),
			From:     getEnv("SMTP_FROM", "noreply@diyari.iq"),
			FromName: getEnv("SMTP_FROM_NAME", "Diyari"),
		},
		Firebase: FirebaseConfig{
			CredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
		},
		Stripe: StripeConfig{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
			SuccessURL:    getEnv("STRIPE_SUCCESS_URL", "http://localhost:3000/promotion/success"),
			CancelURL:     getEnv("STRIPE_CANCEL_URL", "http://localhost:3000/promotion/cancelled"),
		},
		Admin: AdminConfig{
			Username: getEnv("ADMIN_USERNAME", "admin"),
			Email:    getEnv("ADMIN_EMAIL", "admin@diyari.local"),
			Password: getEnv("ADMIN_PASSWORD", "password"),
		},
		SeedDemo: getEnvBool("SEED_DEMO", false),
	}
}

// DSN prefers DATABASE_URL and falls back to the discrete DB_* settings.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value, err := strconv.ParseInt(os.Getenv(key), 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}
