package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration
type Config struct {
	Environment string
	LogLevel    string

	MongoURI      string
	MongoDatabase string
	RedisAddr     string
	Port          string

	JWTSecret string
	TokenTTL  time.Duration

	CORSAllowedOrigins string
	CORSAllowedMethods string
	CORSAllowedHeaders string

	// DashboardSessionLimit caps how many sessions a dashboard load reads
	DashboardSessionLimit int
	// ResponseFetchConcurrency bounds parallel per-session response fetches
	ResponseFetchConcurrency int
}

// Load reads configuration from an optional .env file and the environment
func Load() *Config {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()
	return FromViper(NewViper())
}

// NewViper returns a viper instance bound to the environment with defaults set
func NewViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("ENVIRONMENT", "local")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "metacognition")
	v.SetDefault("REDIS_URI", "localhost:6379")
	v.SetDefault("PORT", "8080")
	v.SetDefault("JWT_SECRET", "super-secret-key-change-in-production")
	v.SetDefault("TOKEN_TTL_HOURS", 168)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("CORS_ALLOWED_METHODS", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
	v.SetDefault("CORS_ALLOWED_HEADERS", "Content-Type, Authorization")
	v.SetDefault("DASHBOARD_SESSION_LIMIT", 100)
	v.SetDefault("RESPONSE_FETCH_CONCURRENCY", 4)

	return v
}

// FromViper builds a Config from an already populated viper instance
func FromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Environment:              v.GetString("ENVIRONMENT"),
		LogLevel:                 v.GetString("LOG_LEVEL"),
		MongoURI:                 v.GetString("MONGO_URI"),
		MongoDatabase:            v.GetString("MONGO_DATABASE"),
		RedisAddr:                strings.TrimPrefix(v.GetString("REDIS_URI"), "redis://"),
		Port:                     v.GetString("PORT"),
		JWTSecret:                v.GetString("JWT_SECRET"),
		TokenTTL:                 time.Duration(v.GetInt("TOKEN_TTL_HOURS")) * time.Hour,
		CORSAllowedOrigins:       v.GetString("CORS_ALLOWED_ORIGINS"),
		CORSAllowedMethods:       v.GetString("CORS_ALLOWED_METHODS"),
		CORSAllowedHeaders:       v.GetString("CORS_ALLOWED_HEADERS"),
		DashboardSessionLimit:    v.GetInt("DASHBOARD_SESSION_LIMIT"),
		ResponseFetchConcurrency: v.GetInt("RESPONSE_FETCH_CONCURRENCY"),
	}

	if cfg.DashboardSessionLimit <= 0 {
		cfg.DashboardSessionLimit = 100
	}
	if cfg.ResponseFetchConcurrency <= 0 {
		cfg.ResponseFetchConcurrency = 1
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 168 * time.Hour
	}
	return cfg
}
