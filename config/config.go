package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Zoom      ZoomConfig
	SMS       SMSConfig
	Scheduler SchedulerConfig
	Locale    LocaleConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is (e.g. postgres://localhost:5432/darisni?sslmode=disable)
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT signing and validation settings.
type JWTConfig struct {
	Secret      string
	ExpireHours int
}

// ZoomConfig holds Zoom server-to-server OAuth credentials and endpoints.
type ZoomConfig struct {
	AccountID    string
	ClientID     string
	ClientSecret string
	APIBaseURL   string // https://api.zoom.us/v2
	AuthBaseURL  string // https://zoom.us
	Timeout      time.Duration
}

// SMSConfig holds the SMS gateway settings for the notification side-channel.
// An empty BaseURL disables SMS delivery.
type SMSConfig struct {
	BaseURL string
	APIKey  string
	Sender  string
	Timeout time.Duration
}

// SchedulerConfig holds the session scan cadence and reminder/meeting windows.
type SchedulerConfig struct {
	ScanInterval    time.Duration // how often the scanner runs
	ReminderLead    time.Duration // reminder fires this long before session start
	MeetingLead     time.Duration // meeting is provisioned this long before start
	WindowHalfWidth time.Duration // tolerance around each lead target
}

// LocaleConfig holds platform timezone and language defaults.
type LocaleConfig struct {
	Timezone      string // IANA name, e.g. Asia/Riyadh
	DefaultLocale string // "ar" or "en"
}

// Validate checks that the scan cadence cannot skip a session's window: a
// session is only guaranteed to be seen when the full window (2 x half width)
// is at least as wide as the gap between scans.
func (c SchedulerConfig) Validate() error {
	if c.WindowHalfWidth*2 < c.ScanInterval {
		return fmt.Errorf("window width %s is narrower than scan interval %s; sessions may be skipped",
			c.WindowHalfWidth*2, c.ScanInterval)
	}
	return nil
}

// Location resolves the configured timezone, falling back to UTC.
func (c LocaleConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (e.g. DATABASE_URL env), it is used as-is; otherwise built from components.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	jwtExpire, _ := strconv.Atoi(getEnv("JWT_EXPIRE_HOURS", "24"))

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 30),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "darisni"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "change-me-in-production"),
			ExpireHours: jwtExpire,
		},
		Zoom: ZoomConfig{
			AccountID:    getEnv("ZOOM_ACCOUNT_ID", ""),
			ClientID:     getEnv("ZOOM_CLIENT_ID", ""),
			ClientSecret: getEnv("ZOOM_CLIENT_SECRET", ""),
			APIBaseURL:   getEnv("ZOOM_API_BASE_URL", "https://api.zoom.us/v2"),
			AuthBaseURL:  getEnv("ZOOM_AUTH_BASE_URL", "https://zoom.us"),
			Timeout:      getEnvSeconds("ZOOM_TIMEOUT_SEC", 30),
		},
		SMS: SMSConfig{
			BaseURL: getEnv("SMS_BASE_URL", ""),
			APIKey:  getEnv("SMS_API_KEY", ""),
			Sender:  getEnv("SMS_SENDER", "DARISNI"),
			Timeout: getEnvSeconds("SMS_TIMEOUT_SEC", 30),
		},
		Scheduler: SchedulerConfig{
			ScanInterval:    getEnvMinutes("SCAN_INTERVAL_MIN", 5),
			ReminderLead:    getEnvMinutes("REMINDER_LEAD_MIN", 120),
			MeetingLead:     getEnvMinutes("MEETING_LEAD_MIN", 60),
			WindowHalfWidth: getEnvMinutes("WINDOW_HALF_WIDTH_MIN", 5),
		},
		Locale: LocaleConfig{
			Timezone:      getEnv("PLATFORM_TIMEZONE", "Asia/Riyadh"),
			DefaultLocale: getEnv("DEFAULT_LOCALE", "ar"),
		},
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
	}
	return fallback
}

func getEnvMinutes(key string, fallback int) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * time.Minute
}

func getEnvSeconds(key string, fallback int) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * time.Second
}
