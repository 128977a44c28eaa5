package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	JWT          JWTConfig
	Storage      StorageConfig
	Tracing      TracingConfig `mapstructure:"tracing"`
	Redis        RedisConfig
	AI           AIConfig
	CORS         CORSConfig         `mapstructure:"cors"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit"`
	Gamification GamificationConfig `mapstructure:"gamification"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ForceMigrate bool `mapstructure:"-"`
	MigrateOnly  bool `mapstructure:"-"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

// AIConfig selects the text-generation provider used for hints, mistake
// explanations and translation checks. Provider "none" disables all calls.
type AIConfig struct {
	Provider          string `mapstructure:"provider"`
	BaseURL           string `mapstructure:"base_url"`
	APIKey            string `mapstructure:"api_key"`
	Model             string `mapstructure:"model"`
	GeminiAPIKey      string `mapstructure:"gemini_api_key"`
	AnthropicAPIKey   string `mapstructure:"anthropic_api_key"`
	CheckTimeoutMS    int    `mapstructure:"check_timeout_ms"`
	GenerateTimeoutMS int    `mapstructure:"generate_timeout_ms"`
}

func (c AIConfig) CheckTimeout() time.Duration {
	if c.CheckTimeoutMS <= 0 {
		return 3 * time.Second
	}
	return time.Duration(c.CheckTimeoutMS) * time.Millisecond
}

func (c AIConfig) GenerateTimeout() time.Duration {
	if c.GenerateTimeoutMS <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.GenerateTimeoutMS) * time.Millisecond
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Driver    string
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
	SSLMode   string `mapstructure:"sslmode"`
	// Path 仅用于 sqlite
	Path string
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type StorageConfig struct {
	Type          string `mapstructure:"type"`
	LocalPath     string `mapstructure:"local_path"`
	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
	MinioUseSSL   bool   `mapstructure:"minio_use_ssl"`
	PresignMins   int    `mapstructure:"presign_minutes"`
}

type TracingConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	CollectorEndpoint string  `mapstructure:"collector_endpoint"`
	Insecure          bool    `mapstructure:"insecure"`
	SampleRatio       float64 `mapstructure:"sample_ratio"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// GamificationConfig holds the tunable parts of the reward economy. The
// per-answer XP amounts are fixed and live in the reward service.
type GamificationConfig struct {
	MaxHearts           int    `mapstructure:"max_hearts"`
	HeartRestoreMinutes int    `mapstructure:"heart_restore_minutes"`
	CompletionBonusXP   int    `mapstructure:"completion_bonus_xp"`
	HeartRefillCost     int    `mapstructure:"heart_refill_cost"`
	SingleHeartCost     int    `mapstructure:"single_heart_cost"`
	SessionTTLHours     int    `mapstructure:"session_ttl_hours"`
	Timezone            string `mapstructure:"timezone"`
}

func (g GamificationConfig) HeartRestoreInterval() time.Duration {
	return time.Duration(g.HeartRestoreMinutes) * time.Minute
}

func (g GamificationConfig) SessionTTL() time.Duration {
	return time.Duration(g.SessionTTLHours) * time.Hour
}

// Location resolves the timezone used for day boundaries (streaks, quest
// periods, time-of-day achievements). Unknown names fall back to Local.
func (g GamificationConfig) Location() *time.Location {
	if g.Timezone == "" || g.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(g.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// DefaultGamification mirrors configs/config.yaml and is used for any
// zero value left after unmarshalling.
func DefaultGamification() GamificationConfig {
	return GamificationConfig{
		MaxHearts:           5,
		HeartRestoreMinutes: 240,
		CompletionBonusXP:   10,
		HeartRefillCost:     350,
		SingleHeartCost:     80,
		SessionTTLHours:     24,
		Timezone:            "Local",
	}
}

func (g *GamificationConfig) applyDefaults() {
	d := DefaultGamification()
	if g.MaxHearts <= 0 {
		g.MaxHearts = d.MaxHearts
	}
	if g.HeartRestoreMinutes <= 0 {
		g.HeartRestoreMinutes = d.HeartRestoreMinutes
	}
	if g.CompletionBonusXP < 0 {
		g.CompletionBonusXP = d.CompletionBonusXP
	}
	if g.HeartRefillCost <= 0 {
		g.HeartRefillCost = d.HeartRefillCost
	}
	if g.SingleHeartCost <= 0 {
		g.SingleHeartCost = d.SingleHeartCost
	}
	if g.SessionTTLHours <= 0 {
		g.SessionTTLHours = d.SessionTTLHours
	}
	if g.Timezone == "" {
		g.Timezone = d.Timezone
	}
}

func LoadConfig(path string) (*Config, error) {
	// .env 可选，不存在时忽略
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("LINGUA")
	v.AutomaticEnv()

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parsetime", true)
	v.SetDefault("ai.provider", "none")
	v.SetDefault("gamification.completion_bonus_xp", DefaultGamification().CompletionBonusXP)

	// Database
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")
	v.BindEnv("database.path", "DATABASE_PATH")

	// JWT
	v.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	v.BindEnv("server.mode", "SERVER_MODE")
	v.BindEnv("server.port", "SERVER_PORT")

	// AI
	v.BindEnv("ai.provider", "AI_PROVIDER")
	v.BindEnv("ai.base_url", "AI_BASE_URL")
	v.BindEnv("ai.api_key", "AI_API_KEY", "OPENAI_API_KEY")
	v.BindEnv("ai.model", "AI_MODEL")
	v.BindEnv("ai.gemini_api_key", "GEMINI_API_KEY")
	v.BindEnv("ai.anthropic_api_key", "ANTHROPIC_API_KEY")

	// Storage
	v.BindEnv("storage.type", "STORAGE_TYPE")
	v.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	v.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	v.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	v.BindEnv("storage.minio_bucket", "MINIO_BUCKET")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour
	cfg.Gamification.applyDefaults()

	// 生产环境校验 JWT Secret 强度
	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}

	if cfg.Storage.Type == "local" && cfg.Storage.LocalPath != "" {
		if _, err := os.Stat(cfg.Storage.LocalPath); os.IsNotExist(err) {
			os.MkdirAll(cfg.Storage.LocalPath, 0755)
		}
	}

	return &cfg, nil
}
