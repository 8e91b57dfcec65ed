package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Record storage backends.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Records  RecordsConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Auth     AuthConfig
	CORS     CORSConfig
	Log      LogConfig
	Jokes    JokesConfig
	Exports  ExportsConfig
	Quiz     QuizConfig
}

// RecordsConfig selects where student marks are persisted.
type RecordsConfig struct {
	Backend string
	File    string
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig tunes the read-view cache.
type CacheConfig struct {
	TTL time.Duration
}

// AuthConfig guards mutating HTTP routes with an admin token.
type AuthConfig struct {
	Enabled      bool
	Secret       string
	Expiration   time.Duration
	Issuer       string
	PasswordHash string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

type JokesConfig struct {
	File string
}

type ExportsConfig struct {
	Dir        string
	Workers    int
	MaxRetries int
}

type QuizConfig struct {
	Questions int
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
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Records = RecordsConfig{
		Backend: strings.ToLower(strings.TrimSpace(v.GetString("RECORDS_BACKEND"))),
		File:    v.GetString("RECORDS_FILE"),
	}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Cache = CacheConfig{TTL: parseDuration(v.GetString("CACHE_TTL"), 5*time.Minute)}

	cfg.Auth = AuthConfig{
		Enabled:      v.GetBool("AUTH_ENABLED"),
		Secret:       v.GetString("JWT_SECRET"),
		Expiration:   parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:       v.GetString("JWT_ISSUER"),
		PasswordHash: v.GetString("ADMIN_PASSWORD_HASH"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Jokes = JokesConfig{File: v.GetString("JOKES_FILE")}
	cfg.Exports = ExportsConfig{
		Dir:        v.GetString("EXPORTS_DIR"),
		Workers:    v.GetInt("EXPORT_WORKERS"),
		MaxRetries: v.GetInt("EXPORT_MAX_RETRIES"),
	}

	questions := v.GetInt("QUIZ_QUESTIONS")
	if questions <= 0 {
		questions = 10
	}
	cfg.Quiz = QuizConfig{Questions: questions}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("RECORDS_BACKEND", BackendFile)
	v.SetDefault("RECORDS_FILE", "studentMarks.txt")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "sma_marks")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 5)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", "5m")

	v.SetDefault("AUTH_ENABLED", false)
	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "sma-marks")
	v.SetDefault("ADMIN_PASSWORD_HASH", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("JOKES_FILE", "randomJokes.txt")
	v.SetDefault("EXPORTS_DIR", "./exports")
	v.SetDefault("EXPORT_WORKERS", 2)
	v.SetDefault("EXPORT_MAX_RETRIES", 2)
	v.SetDefault("QUIZ_QUESTIONS", 10)
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
