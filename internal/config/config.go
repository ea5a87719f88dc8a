package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	App      *AppConfig      `yaml:"app"`
	Storage  *StorageConfig  `yaml:"storage"`
	Redis    *RedisConfig    `yaml:"redis"`
	Identity *IdentityConfig `yaml:"identity"`
	Payment  *PaymentConfig  `yaml:"payment"`
	Security *SecurityConfig `yaml:"security"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Port        int    `yaml:"port"`
	Debug       bool   `yaml:"debug"`
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
}

type StorageConfig struct {
	// Backend selects the key-value store: memory, file or redis.
	Backend  string `yaml:"backend"`
	FilePath string `yaml:"file_path"`
}

type RedisConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	KeyPrefix    string        `yaml:"key_prefix"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type IdentityConfig struct {
	// Provider selects the identity collaborator: mock or local.
	Provider string `yaml:"provider"`
}

type PaymentConfig struct {
	// Provider selects the gateway: simulated, stripe or razorpay.
	Provider         string        `yaml:"provider"`
	Currency         string        `yaml:"currency"`
	SimulatedRate    float64       `yaml:"simulated_rate"`
	SimulatedLatency time.Duration `yaml:"simulated_latency"`
	StripeSecretKey  string        `yaml:"stripe_secret_key"`
	RazorpayKeyID    string        `yaml:"razorpay_key_id"`
	RazorpaySecret   string        `yaml:"razorpay_secret"`
}

type SecurityConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

func Load() (*Config, error) {
	config := &Config{
		App:      loadAppConfig(),
		Storage:  loadStorageConfig(),
		Redis:    loadRedisConfig(),
		Identity: loadIdentityConfig(),
		Payment:  loadPaymentConfig(),
		Security: loadSecurityConfig(),
	}

	return config, nil
}

func loadAppConfig() *AppConfig {
	return &AppConfig{
		Name:        getEnv("APP_NAME", "RideLink"),
		Environment: getEnv("APP_ENV", "development"),
		Port:        getEnvAsInt("APP_PORT", 8080),
		Debug:       getEnvAsBool("APP_DEBUG", true),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
	}
}

func loadStorageConfig() *StorageConfig {
	return &StorageConfig{
		Backend:  getEnv("STORAGE_BACKEND", "file"),
		FilePath: getEnv("STORAGE_FILE_PATH", "data/ridelink.json"),
	}
}

func loadRedisConfig() *RedisConfig {
	return &RedisConfig{
		Host:         getEnv("REDIS_HOST", "localhost"),
		Port:         getEnvAsInt("REDIS_PORT", 6379),
		Password:     getEnv("REDIS_PASSWORD", ""),
		DB:           getEnvAsInt("REDIS_DB", 0),
		KeyPrefix:    getEnv("REDIS_KEY_PREFIX", "ridelink:"),
		PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
		MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 2),
		DialTimeout:  getEnvAsDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		ReadTimeout:  getEnvAsDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		WriteTimeout: getEnvAsDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
	}
}

func loadIdentityConfig() *IdentityConfig {
	return &IdentityConfig{
		Provider: getEnv("IDENTITY_PROVIDER", "mock"),
	}
}

func loadPaymentConfig() *PaymentConfig {
	return &PaymentConfig{
		Provider:         getEnv("PAYMENT_PROVIDER", "simulated"),
		Currency:         getEnv("PAYMENT_CURRENCY", "USD"),
		SimulatedRate:    getEnvAsFloat64("PAYMENT_SIMULATED_RATE", 0.9),
		SimulatedLatency: getEnvAsDuration("PAYMENT_SIMULATED_LATENCY", 1500*time.Millisecond),
		StripeSecretKey:  getEnv("STRIPE_SECRET_KEY", ""),
		RazorpayKeyID:    getEnv("RAZORPAY_KEY_ID", ""),
		RazorpaySecret:   getEnv("RAZORPAY_KEY_SECRET", ""),
	}
}

func loadSecurityConfig() *SecurityConfig {
	return &SecurityConfig{
		JWTSecret: getEnv("JWT_SECRET", "change-me-in-production"),
		TokenTTL:  getEnvAsDuration("TOKEN_TTL", 30*24*time.Hour),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
