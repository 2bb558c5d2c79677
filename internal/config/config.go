package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// SecurityConfig represents security configuration
type SecurityConfig struct {
	EnableRateLimit       bool
	RateLimitPerSecond    float64
	RateLimitBurst        int
	EnableCORS            bool
	AllowedOrigins        []string
	EnableSecurityHeaders bool
	MaxRequestSize        int64
	EnableRequestID       bool
}

// CacheConfig selects and configures the personalized feed cache
type CacheConfig struct {
	Driver        string // "memory" or "redis"
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	FeedTTL       time.Duration
}

// AuthConfig configures bearer token issuance
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type Config struct {
	Port               int
	DataDir            string
	LogLevel           string
	PollInterval       time.Duration
	EnablePoller       bool
	EnableSwagger      bool
	ArticleRetention   time.Duration
	FetchTimeout       time.Duration
	FetchLimit         int
	RateLimitPerMinute int
	Cache              CacheConfig
	Auth               AuthConfig
	Security           SecurityConfig
	Providers          []ProviderConfig
}

func Load() *Config {
	port := getEnvAsInt("PORT", 8080)
	dataDir := getEnv("DATA_DIR", "./data")
	logLevel := getEnv("LOG_LEVEL", "info")
	pollInterval := getEnvAsDuration("POLL_INTERVAL", time.Hour)
	enablePoller := getEnvAsBool("ENABLE_POLLER", true)
	enableSwagger := getEnvAsBool("ENABLE_SWAGGER", true)

	providers := DefaultProviders()
	if path := getEnv("PROVIDERS_FILE", ""); path != "" {
		loaded, err := LoadProviders(path)
		if err != nil {
			log.Printf("Warning: failed to load providers from %s, using defaults: %v", path, err)
		} else {
			providers = loaded
		}
	}

	return &Config{
		Port:               port,
		DataDir:            dataDir,
		LogLevel:           logLevel,
		PollInterval:       pollInterval,
		EnablePoller:       enablePoller,
		EnableSwagger:      enableSwagger,
		ArticleRetention:   getEnvAsDuration("ARTICLE_RETENTION", 0),
		FetchTimeout:       getEnvAsDuration("FETCH_TIMEOUT", 15*time.Second),
		FetchLimit:         getEnvAsInt("FETCH_LIMIT", 3),
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 30),
		Cache:              loadCacheConfig(),
		Auth:               loadAuthConfig(),
		Security:           loadSecurityConfig(),
		Providers:          providers,
	}
}

func loadCacheConfig() CacheConfig {
	return CacheConfig{
		Driver:        strings.ToLower(getEnv("CACHE_DRIVER", "memory")),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		FeedTTL:       getEnvAsDuration("FEED_CACHE_TTL", 60*time.Second),
	}
}

func loadAuthConfig() AuthConfig {
	secret := getEnv("JWT_SECRET", "")
	if secret == "" {
		log.Printf("Warning: JWT_SECRET is not set, using an insecure development secret")
		secret = "newsagg-dev-secret"
	}

	return AuthConfig{
		JWTSecret: secret,
		TokenTTL:  getEnvAsDuration("TOKEN_TTL", 24*time.Hour),
	}
}

func loadSecurityConfig() SecurityConfig {
	return SecurityConfig{
		EnableRateLimit:       getEnvAsBool("ENABLE_RATE_LIMIT", true),
		RateLimitPerSecond:    getEnvAsFloat("RATE_LIMIT_PER_SECOND", 10.0),
		RateLimitBurst:        getEnvAsInt("RATE_LIMIT_BURST", 20),
		EnableCORS:            getEnvAsBool("ENABLE_CORS", true),
		AllowedOrigins:        getEnvAsStringSlice("ALLOWED_ORIGINS", []string{"*"}),
		EnableSecurityHeaders: getEnvAsBool("ENABLE_SECURITY_HEADERS", true),
		MaxRequestSize:        getEnvAsInt64("MAX_REQUEST_SIZE", 1<<20), // 1MB
		EnableRequestID:       getEnvAsBool("ENABLE_REQUEST_ID", true),
	}
}

func getEnv(key string, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			return duration
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if boolVal, err := strconv.ParseBool(val); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if floatVal, err := strconv.ParseFloat(val, 64); err == nil {
			return floatVal
		}
	}
	return defaultVal
}

func getEnvAsInt64(key string, defaultVal int64) int64 {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.ParseInt(val, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsStringSlice(key string, defaultVal []string) []string {
	if val := os.Getenv(key); val != "" {
		origins := strings.Split(val, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		return origins
	}
	return defaultVal
}
