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

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	Redis      RedisConfig
	CORS       CORSConfig
	Log        LogConfig
	Scheduling SchedulingConfig
	Timetable  TimetableConfig
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
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SchedulingConfig holds the registrar's scheduling rules.
type SchedulingConfig struct {
	FacultyLoadCap int
	DayStart       string
	DayEnd         string
	SlotMinutes    int
	SchoolDays     []string
}

// TimetableConfig governs grid caching and the background cache warmer.
type TimetableConfig struct {
	CacheEnabled   bool
	CacheTTL       time.Duration
	WarmerWorkers  int
	WarmerRetries  int
	WarmerQueueLen int
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
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Scheduling = SchedulingConfig{
		FacultyLoadCap: positiveOr(v.GetInt("FACULTY_LOAD_CAP"), 4),
		DayStart:       v.GetString("DAY_START"),
		DayEnd:         v.GetString("DAY_END"),
		SlotMinutes:    positiveOr(v.GetInt("SLOT_MINUTES"), 30),
		SchoolDays:     splitAndTrim(v.GetString("SCHOOL_DAYS")),
	}

	cfg.Timetable = TimetableConfig{
		CacheEnabled:   v.GetBool("ENABLE_TIMETABLE_CACHE"),
		CacheTTL:       parseDuration(v.GetString("TIMETABLE_CACHE_TTL"), 10*time.Minute),
		WarmerWorkers:  positiveOr(v.GetInt("TIMETABLE_WARMER_WORKERS"), 2),
		WarmerRetries:  v.GetInt("TIMETABLE_WARMER_RETRIES"),
		WarmerQueueLen: positiveOr(v.GetInt("TIMETABLE_WARMER_QUEUE"), 64),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "registrar")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("FACULTY_LOAD_CAP", 4)
	v.SetDefault("DAY_START", "07:30")
	v.SetDefault("DAY_END", "16:30")
	v.SetDefault("SLOT_MINUTES", 30)
	v.SetDefault("SCHOOL_DAYS", "Monday,Tuesday,Wednesday,Thursday,Friday,Saturday")

	v.SetDefault("ENABLE_TIMETABLE_CACHE", true)
	v.SetDefault("TIMETABLE_CACHE_TTL", "10m")
	v.SetDefault("TIMETABLE_WARMER_WORKERS", 2)
	v.SetDefault("TIMETABLE_WARMER_RETRIES", 3)
	v.SetDefault("TIMETABLE_WARMER_QUEUE", 64)
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

func positiveOr(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
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
