package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	HTTPAddr string

	DatabaseURL string
	RedisAddr   string
	RedisPass   string

	QueueKey string

	JWTSecret string

	WorkerPoolSize    int
	DispatchRateLimit int
	SendTimeout       time.Duration

	SendgridAPIKey    string
	SendgridFromName  string
	SendgridFromEmail string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	FirebaseCredentialsFile string

	IdentityBaseURL string
	IdentityAPIKey  string
	ContactCacheTTL time.Duration

	EmailTemplatesPath string
	SMSTemplatesPath   string
}

// Load reads configuration from the environment. Missing store or provider
// configuration is a startup failure rather than a deferred runtime error.
func Load() (AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Notification: No .env file found, relying on system env vars")
	}

	cfg := AppConfig{
		HTTPAddr: getEnv("HTTP_ADDR", ":8013"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisAddr:   getEnv("REDIS_ADDR", "redis:6379"),
		RedisPass:   getEnv("REDIS_PASS", ""),

		QueueKey: getEnv("DISPATCH_QUEUE_KEY", "notifications:dispatch"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		WorkerPoolSize:    getEnvInt("WORKER_POOL_SIZE", 8),
		DispatchRateLimit: getEnvInt("DISPATCH_RATE_LIMIT", 100),
		SendTimeout:       getEnvDuration("CHANNEL_SEND_TIMEOUT", 15*time.Second),

		SendgridAPIKey:    os.Getenv("SENDGRID_API_KEY"),
		SendgridFromName:  getEnv("SENDGRID_FROM_NAME", "Notifications"),
		SendgridFromEmail: os.Getenv("SENDGRID_FROM_EMAIL"),

		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber: os.Getenv("TWILIO_FROM_NUMBER"),

		FirebaseCredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", "firebase-adminsdk.json"),

		IdentityBaseURL: os.Getenv("IDENTITY_BASE_URL"),
		IdentityAPIKey:  os.Getenv("IDENTITY_API_KEY"),
		ContactCacheTTL: getEnvDuration("CONTACT_CACHE_TTL", 10*time.Minute),

		EmailTemplatesPath: getEnv("EMAIL_TEMPLATES_PATH", "./templates/email"),
		SMSTemplatesPath:   getEnv("SMS_TEMPLATES_PATH", "./templates/sms"),
	}

	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.IdentityBaseURL == "" {
		return cfg, fmt.Errorf("IDENTITY_BASE_URL is required")
	}
	if cfg.WorkerPoolSize <= 0 {
		return cfg, fmt.Errorf("WORKER_POOL_SIZE must be positive")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("Warning: invalid integer for %s, using default %d", key, fallback)
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("Warning: invalid duration for %s, using default %s", key, fallback)
	}
	return fallback
}
