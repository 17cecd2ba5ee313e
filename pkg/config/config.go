package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Log    LogConfig
	CORS   CORSConfig
	Redis  RedisConfig
	Mirror MirrorConfig
	Sync   SyncConfig
	Query  QueryConfig
	Pulse  PulseConfig
}

type LogConfig struct {
	Level  string
	Format string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// MirrorConfig describes the optional remote mirror. The mirror is advisory:
// when disabled or unreachable the service runs on its local dataset.
type MirrorConfig struct {
	Enabled      bool
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	CallTimeout  time.Duration
	LoadTimeout  time.Duration
}

// SyncConfig tunes the fire-and-forget mirror queue.
type SyncConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
}

// QueryConfig sets paging defaults for the query engine endpoints.
type QueryConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

// PulseConfig governs course pulse caching.
type PulseConfig struct {
	CacheTTL time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("ENABLE_REDIS_CACHE"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Mirror = MirrorConfig{
		Enabled:      v.GetBool("ENABLE_MIRROR"),
		Host:         v.GetString("MIRROR_DB_HOST"),
		Port:         v.GetInt("MIRROR_DB_PORT"),
		User:         v.GetString("MIRROR_DB_USER"),
		Password:     v.GetString("MIRROR_DB_PASSWORD"),
		Name:         v.GetString("MIRROR_DB_NAME"),
		SSLMode:      v.GetString("MIRROR_DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("MIRROR_DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("MIRROR_DB_MAX_IDLE_CONNS"),
		CallTimeout:  parseDuration(v.GetString("MIRROR_CALL_TIMEOUT"), 3*time.Second),
		LoadTimeout:  parseDuration(v.GetString("MIRROR_LOAD_TIMEOUT"), 5*time.Second),
	}

	cfg.Sync = SyncConfig{
		Workers:    v.GetInt("SYNC_WORKERS"),
		BufferSize: v.GetInt("SYNC_BUFFER_SIZE"),
		MaxRetries: v.GetInt("SYNC_MAX_RETRIES"),
	}

	cfg.Query = QueryConfig{
		DefaultPageSize: v.GetInt("QUERY_DEFAULT_PAGE_SIZE"),
		MaxPageSize:     v.GetInt("QUERY_MAX_PAGE_SIZE"),
	}

	cfg.Pulse = PulseConfig{
		CacheTTL: parseDuration(v.GetString("PULSE_CACHE_TTL"), 5*time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("ALLOWED_ORIGINS", "")

	v.SetDefault("ENABLE_REDIS_CACHE", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ENABLE_MIRROR", false)
	v.SetDefault("MIRROR_DB_HOST", "localhost")
	v.SetDefault("MIRROR_DB_PORT", 5432)
	v.SetDefault("MIRROR_DB_USER", "postgres")
	v.SetDefault("MIRROR_DB_PASSWORD", "postgres")
	v.SetDefault("MIRROR_DB_NAME", "course_pulse")
	v.SetDefault("MIRROR_DB_SSL_MODE", "disable")
	v.SetDefault("MIRROR_DB_MAX_OPEN_CONNS", 5)
	v.SetDefault("MIRROR_DB_MAX_IDLE_CONNS", 2)
	v.SetDefault("MIRROR_CALL_TIMEOUT", "3s")
	v.SetDefault("MIRROR_LOAD_TIMEOUT", "5s")

	v.SetDefault("SYNC_WORKERS", 1)
	v.SetDefault("SYNC_BUFFER_SIZE", 16)
	v.SetDefault("SYNC_MAX_RETRIES", 2)

	v.SetDefault("QUERY_DEFAULT_PAGE_SIZE", 20)
	v.SetDefault("QUERY_MAX_PAGE_SIZE", 100)

	v.SetDefault("PULSE_CACHE_TTL", "5m")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
