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

	Database      DatabaseConfig
	Redis         RedisConfig
	Auth          AuthConfig
	CORS          CORSConfig
	Log           LogConfig
	Geofence      GeofenceConfig
	Poller        PollerConfig
	Notifications NotificationsConfig
	Dashboard     DashboardConfig
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

// AuthConfig covers token validation and the explicit guest identity used
// when no bearer token is presented.
type AuthConfig struct {
	JWTSecret   string
	AllowGuest  bool
	GuestUserID string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// GeofenceConfig tunes campus-presence resolution.
type GeofenceConfig struct {
	DefaultRadiusMeters float64
}

// PollerConfig controls the server-side location watch.
type PollerConfig struct {
	Enabled  bool
	Interval time.Duration
}

// NotificationsConfig tunes the attendance notification policy.
type NotificationsConfig struct {
	LowAttendanceThreshold float64
	ReminderLead           time.Duration
	DispatchWorkers        int
	DispatchBuffer         int
}

// DashboardConfig governs stats cache tuning.
type DashboardConfig struct {
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

	cfg.Auth = AuthConfig{
		JWTSecret:   v.GetString("JWT_SECRET"),
		AllowGuest:  v.GetBool("AUTH_ALLOW_GUEST"),
		GuestUserID: v.GetString("AUTH_GUEST_USER_ID"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Geofence = GeofenceConfig{
		DefaultRadiusMeters: v.GetFloat64("GEOFENCE_DEFAULT_RADIUS_METERS"),
	}

	cfg.Poller = PollerConfig{
		Enabled:  v.GetBool("POLLER_ENABLED"),
		Interval: parseDuration(v.GetString("POLLER_INTERVAL"), 5*time.Minute),
	}

	cfg.Notifications = NotificationsConfig{
		LowAttendanceThreshold: v.GetFloat64("NOTIFY_LOW_ATTENDANCE_THRESHOLD"),
		ReminderLead:           parseDuration(v.GetString("NOTIFY_REMINDER_LEAD"), 5*time.Minute),
		DispatchWorkers:        v.GetInt("NOTIFY_DISPATCH_WORKERS"),
		DispatchBuffer:         v.GetInt("NOTIFY_DISPATCH_BUFFER"),
	}

	cfg.Dashboard = DashboardConfig{
		CacheTTL: parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 5*time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "campus_attend")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("AUTH_ALLOW_GUEST", true)
	v.SetDefault("AUTH_GUEST_USER_ID", "guest")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("GEOFENCE_DEFAULT_RADIUS_METERS", 100)

	v.SetDefault("POLLER_ENABLED", false)
	v.SetDefault("POLLER_INTERVAL", "5m")

	v.SetDefault("NOTIFY_LOW_ATTENDANCE_THRESHOLD", 75)
	v.SetDefault("NOTIFY_REMINDER_LEAD", "5m")
	v.SetDefault("NOTIFY_DISPATCH_WORKERS", 1)
	v.SetDefault("NOTIFY_DISPATCH_BUFFER", 16)

	v.SetDefault("DASHBOARD_CACHE_TTL", "5m")
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
