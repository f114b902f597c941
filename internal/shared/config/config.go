package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for our application
type Config struct {
	// Server configuration
	Port           string
	GinMode        string
	APIVersion     string
	APIPrefix      string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// JWT configuration
	JWT JWTConfig

	// Rate limiting
	RateLimit RateLimitConfig

	// Kafka (reservation events)
	Kafka KafkaConfig

	// Document lookup microservice
	DocumentLookup DocumentLookupConfig

	// Reservation session engine
	Reservation ReservationConfig

	// Logging
	LogLevel string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	DSN      string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Addr     string

	// TTL values for the keys this service owns
	SessionTTL      time.Duration
	LookupCacheTTL  time.Duration
	ProfileCacheTTL time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled         bool          `json:"enabled"`
	WindowDuration  time.Duration `json:"window_duration"`
	DefaultRequests int           `json:"default_requests"`
	HealthRequests  int           `json:"health_requests"`
	SessionRequests int           `json:"session_requests"`
	LookupRequests  int           `json:"lookup_requests"`
	SubmitRequests  int           `json:"submit_requests"`
	TicketRequests  int           `json:"ticket_requests"`
	WhitelistedIPs  []string      `json:"whitelisted_ips"`
}

// KafkaConfig holds the reservation event producer configuration
type KafkaConfig struct {
	Enabled  bool
	Brokers  []string
	Topic    string
	RetryMax int
}

// DocumentLookupConfig holds the national-ID lookup client configuration
type DocumentLookupConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration

	// Circuit breaker
	BreakerMaxRequests uint32
	BreakerInterval    time.Duration
	BreakerTimeout     time.Duration
}

// ReservationConfig holds the session engine settings
type ReservationConfig struct {
	HoldDuration    time.Duration
	LookupDebounce  time.Duration
	TickInterval    time.Duration
	SubmitTimeout   time.Duration
	PaymentMethods  []string
	JanitorInterval time.Duration
	IdleTTL         time.Duration
}

// Load loads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		// Server configuration
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		APIVersion:     getEnv("API_VERSION", "v1"),
		APIPrefix:      getEnv("API_PREFIX", "/api"),
		ReadTimeout:    getDurationEnv("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   getDurationEnv("WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:    getDurationEnv("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes: getIntEnv("MAX_HEADER_BYTES", 1<<20), // 1 MB

		// Database configuration
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "movitex_db"),
			User:     getEnv("DB_USER", "movitex_user"),
			Password: getEnv("DB_PASSWORD", "movitex_password"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},

		// Redis configuration
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),

			SessionTTL:      getDurationEnv("REDIS_SESSION_TTL", 2*time.Hour),
			LookupCacheTTL:  getDurationEnv("REDIS_LOOKUP_CACHE_TTL", 24*time.Hour),
			ProfileCacheTTL: getDurationEnv("REDIS_PROFILE_CACHE_TTL", 6*time.Hour),
		},

		// JWT configuration
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-super-secret-jwt-key"),
		},

		// Rate limiting
		RateLimit: RateLimitConfig{
			Enabled:         getBoolEnv("RATE_LIMIT_ENABLED", true),
			WindowDuration:  getDurationEnv("RATE_LIMIT_WINDOW_DURATION", 60*time.Second),
			DefaultRequests: getIntEnv("RATE_LIMIT_DEFAULT_REQUESTS", 60),
			HealthRequests:  getIntEnv("RATE_LIMIT_HEALTH_REQUESTS", 120),
			SessionRequests: getIntEnv("RATE_LIMIT_SESSION_REQUESTS", 300),
			LookupRequests:  getIntEnv("RATE_LIMIT_LOOKUP_REQUESTS", 60),
			SubmitRequests:  getIntEnv("RATE_LIMIT_SUBMIT_REQUESTS", 10),
			TicketRequests:  getIntEnv("RATE_LIMIT_TICKET_REQUESTS", 30),
			WhitelistedIPs:  getStringSliceEnv("RATE_LIMIT_WHITELISTED_IPS", []string{}),
		},

		// Kafka
		Kafka: KafkaConfig{
			Enabled:  getBoolEnv("KAFKA_ENABLED", false),
			Brokers:  getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:    getEnv("KAFKA_RESERVATION_TOPIC", "reservation-events"),
			RetryMax: getIntEnv("KAFKA_RETRY_MAX", 3),
		},

		// Document lookup
		DocumentLookup: DocumentLookupConfig{
			BaseURL:            getEnv("DOC_LOOKUP_BASE_URL", "http://localhost:8090"),
			Token:              getEnv("DOC_LOOKUP_TOKEN", ""),
			Timeout:            getDurationEnv("DOC_LOOKUP_TIMEOUT", 5*time.Second),
			BreakerMaxRequests: uint32(getIntEnv("DOC_LOOKUP_BREAKER_MAX_REQUESTS", 5)),
			BreakerInterval:    getDurationEnv("DOC_LOOKUP_BREAKER_INTERVAL", 60*time.Second),
			BreakerTimeout:     getDurationEnv("DOC_LOOKUP_BREAKER_TIMEOUT", 30*time.Second),
		},

		// Reservation engine
		Reservation: ReservationConfig{
			HoldDuration:    getDurationEnv("RESERVATION_HOLD_DURATION", 10*time.Minute),
			LookupDebounce:  getDurationEnv("RESERVATION_LOOKUP_DEBOUNCE", 1500*time.Millisecond),
			TickInterval:    getDurationEnv("RESERVATION_TICK_INTERVAL", time.Second),
			SubmitTimeout:   getDurationEnv("RESERVATION_SUBMIT_TIMEOUT", 20*time.Second),
			PaymentMethods:  getStringSliceEnv("RESERVATION_PAYMENT_METHODS", []string{"card", "yape", "plin"}),
			JanitorInterval: getDurationEnv("RESERVATION_JANITOR_INTERVAL", time.Minute),
			IdleTTL:         getDurationEnv("RESERVATION_IDLE_TTL", 30*time.Minute),
		},

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "debug"),
	}

	// Build composite values
	cfg.Database.DSN = buildDatabaseDSN(cfg.Database)
	cfg.Redis.Addr = cfg.Redis.Host + ":" + cfg.Redis.Port

	return cfg
}

// buildDatabaseDSN builds the database connection string
func buildDatabaseDSN(db DatabaseConfig) string {
	return "host=" + db.Host +
		" port=" + db.Port +
		" user=" + db.User +
		" password=" + db.Password +
		" dbname=" + db.Name +
		" sslmode=" + db.SSLMode
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

// getDurationEnv gets a duration environment variable with a fallback value
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

// getStringSliceEnv gets a comma-separated string environment variable as a slice
func getStringSliceEnv(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		var result []string
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GinMode == "debug"
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return ":" + c.Port
}

// GetAPIBasePath returns the API base path
func (c *Config) GetAPIBasePath() string {
	return c.APIPrefix + "/" + c.APIVersion
}
