package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string        `mapstructure:"APP_PORT"`
	Env               string        `mapstructure:"ENV"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
	JWTSecret         string        `mapstructure:"JWT_SECRET"`
	SessionTTL        time.Duration `mapstructure:"SESSION_TTL"`
	MaxRequestsPerMin int           `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Academic-affairs portal.
	PortalBaseURL     string        `mapstructure:"PORTAL_BASE_URL"`
	PortalUsername    string        `mapstructure:"PORTAL_USERNAME"`
	PortalPassword    string        `mapstructure:"PORTAL_PASSWORD"`
	PortalTimeout     time.Duration `mapstructure:"PORTAL_TIMEOUT"`
	PortalConcurrency int           `mapstructure:"PORTAL_CONCURRENCY"`
	DefaultWeek       int           `mapstructure:"DEFAULT_WEEK"`

	// Circuit breaker around portal requests.
	BreakerMaxFailures  int           `mapstructure:"BREAKER_MAX_FAILURES"`
	BreakerResetTimeout time.Duration `mapstructure:"BREAKER_RESET_TIMEOUT"`

	// Redis configuration. An empty address selects the in-memory store.
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int           `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int           `mapstructure:"REDIS_QUEUE_DB"`
	CacheTTL      time.Duration `mapstructure:"CACHE_TTL"`

	// Cron spec for the background refresh; empty disables it.
	RefreshCron string `mapstructure:"REFRESH_CRON"`
}

var AppConfig Config

// LoadConfig reads .env, config.yaml and the environment into AppConfig.
func LoadConfig() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

// SetDefaults registers every default on v. AutomaticEnv only resolves keys
// viper already knows about, so each key needs a default here.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("SESSION_TTL", 12*time.Hour)
	v.SetDefault("MAX_REQUESTS_PER_MIN", 60)

	v.SetDefault("PORTAL_BASE_URL", "https://aa.bjtu.edu.cn")
	v.SetDefault("PORTAL_USERNAME", "")
	v.SetDefault("PORTAL_PASSWORD", "")
	v.SetDefault("PORTAL_TIMEOUT", 20*time.Second)
	v.SetDefault("PORTAL_CONCURRENCY", 4)
	v.SetDefault("DEFAULT_WEEK", 10)

	v.SetDefault("BREAKER_MAX_FAILURES", 3)
	v.SetDefault("BREAKER_RESET_TIMEOUT", 30*time.Second)

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_CACHE_DB", 0)
	v.SetDefault("REDIS_QUEUE_DB", 1)
	v.SetDefault("CACHE_TTL", 15*time.Minute)

	v.SetDefault("REFRESH_CRON", "")
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// HasDefaultCredentials reports whether portal credentials were configured
// for requests that arrive without a session.
func HasDefaultCredentials() bool {
	return AppConfig.PortalUsername != "" && AppConfig.PortalPassword != ""
}
