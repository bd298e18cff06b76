package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Redis    RedisConfig
	Minio    MinioConfig
	Postgres PostgresConfig
	Upload   UploadConfig
	Worker   WorkerConfig
	Provider ProviderConfig
	Tracking TrackingConfig
	App      AppConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

type RedisConfig struct {
	Addr      string
	Username  string
	Password  string
	DB        int
	QueueName string
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type UploadConfig struct {
	MaxFileSizeMB     int
	AllowedExtensions []string
}

type WorkerConfig struct {
	PollTimeout    time.Duration
	ErrorBackoff   time.Duration
	RequestTimeout time.Duration
}

type ProviderConfig struct {
	Default         string
	OpenAIAPIKey    string
	AnthropicAPIKey string
}

type TrackingConfig struct {
	Enabled    bool
	Experiment string
}

type AppConfig struct {
	ServiceName string
	Environment string
	LogLevel    string
}

// Load reads configuration from the environment, with an optional .env file.
func Load() *Config {
	// Missing .env is fine; values then come from the real environment.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 15)
	v.SetDefault("SERVER_IDLE_TIMEOUT", 60)

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_USERNAME", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_QUEUE_NAME", "cv_analysis_queue")

	v.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	v.SetDefault("MINIO_ACCESS_KEY", "minioadmin")
	v.SetDefault("MINIO_SECRET_KEY", "minioadmin")
	v.SetDefault("MINIO_BUCKET", "cv-analyzer")
	v.SetDefault("MINIO_USE_SSL", false)

	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_USER", "cvanalyzer")
	v.SetDefault("POSTGRES_PASSWORD", "cvanalyzer")
	v.SetDefault("POSTGRES_DB", "cvanalyzer")
	v.SetDefault("POSTGRES_SSLMODE", "disable")

	v.SetDefault("MAX_FILE_SIZE_MB", 10)
	v.SetDefault("ALLOWED_FILE_TYPES", ".pdf,.docx,.txt")

	v.SetDefault("WORKER_POLL_TIMEOUT", "5s")
	v.SetDefault("WORKER_ERROR_BACKOFF", "5s")
	v.SetDefault("PROVIDER_REQUEST_TIMEOUT", "60s")

	v.SetDefault("DEFAULT_PROVIDER", "openai")
	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("ANTHROPIC_API_KEY", "")

	v.SetDefault("TRACKING_ENABLED", true)
	v.SetDefault("TRACKING_EXPERIMENT", "cv-analysis")

	v.SetDefault("SERVICE_NAME", "cv-analyzer")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")

	return &Config{
		Server: ServerConfig{
			Host:         v.GetString("SERVER_HOST"),
			Port:         v.GetString("SERVER_PORT"),
			ReadTimeout:  v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout: v.GetInt("SERVER_WRITE_TIMEOUT"),
			IdleTimeout:  v.GetInt("SERVER_IDLE_TIMEOUT"),
		},
		Redis: RedisConfig{
			Addr:      v.GetString("REDIS_ADDR"),
			Username:  v.GetString("REDIS_USERNAME"),
			Password:  v.GetString("REDIS_PASSWORD"),
			DB:        v.GetInt("REDIS_DB"),
			QueueName: v.GetString("REDIS_QUEUE_NAME"),
		},
		Minio: MinioConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			Bucket:    v.GetString("MINIO_BUCKET"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
		},
		Postgres: PostgresConfig{
			Host:     v.GetString("POSTGRES_HOST"),
			Port:     v.GetString("POSTGRES_PORT"),
			User:     v.GetString("POSTGRES_USER"),
			Password: v.GetString("POSTGRES_PASSWORD"),
			DBName:   v.GetString("POSTGRES_DB"),
			SSLMode:  v.GetString("POSTGRES_SSLMODE"),
		},
		Upload: UploadConfig{
			MaxFileSizeMB:     v.GetInt("MAX_FILE_SIZE_MB"),
			AllowedExtensions: splitList(v.GetString("ALLOWED_FILE_TYPES")),
		},
		Worker: WorkerConfig{
			PollTimeout:    v.GetDuration("WORKER_POLL_TIMEOUT"),
			ErrorBackoff:   v.GetDuration("WORKER_ERROR_BACKOFF"),
			RequestTimeout: v.GetDuration("PROVIDER_REQUEST_TIMEOUT"),
		},
		Provider: ProviderConfig{
			Default:         v.GetString("DEFAULT_PROVIDER"),
			OpenAIAPIKey:    v.GetString("OPENAI_API_KEY"),
			AnthropicAPIKey: v.GetString("ANTHROPIC_API_KEY"),
		},
		Tracking: TrackingConfig{
			Enabled:    v.GetBool("TRACKING_ENABLED"),
			Experiment: v.GetString("TRACKING_EXPERIMENT"),
		},
		App: AppConfig{
			ServiceName: v.GetString("SERVICE_NAME"),
			Environment: v.GetString("APP_ENV"),
			LogLevel:    v.GetString("LOG_LEVEL"),
		},
	}
}

// MaxFileSizeBytes returns the configured upload limit in bytes.
func (c *UploadConfig) MaxFileSizeBytes() int64 {
	return int64(c.MaxFileSizeMB) * 1024 * 1024
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.ToLower(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
