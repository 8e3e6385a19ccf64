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

	StorageLocal = "local"
	StorageS3    = "s3"

	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"

	// DevJWTSecret is used only when JWT_SECRET_KEY is unset.
	DevJWTSecret = "your-secret-key-change-in-production"
)

// ErrMissingDatabaseURL is returned when no persistent store is configured.
var ErrMissingDatabaseURL = errors.New("DATABASE_URL environment variable is not set")

type Config struct {
	Env  string
	Host string
	Port int

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	LLM      LLMConfig
	Storage  StorageConfig
	Sources  SourcesConfig
	CORS     CORSConfig
	Log      LogConfig
}

type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	SeedSamples  bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	DefaultTTL time.Duration
	Issuer     string
}

// LLMConfig selects the external text-generation provider.
type LLMConfig struct {
	Provider        string
	Model           string
	OpenAIKey       string
	AnthropicKey    string
	BaseURL         string
	Timeout         time.Duration
	MaxOutputTokens int
}

// StorageConfig controls where uploaded documents are staged.
type StorageConfig struct {
	Driver         string
	UploadDir      string
	MaxUploadBytes int64
	S3Bucket       string
	S3Region       string
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string
	S3Prefix       string
}

// SourcesConfig governs the source search cache.
type SourcesConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from the environment and an optional .env file.
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

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Host = v.GetString("BACKEND_HOST")
	cfg.Port = v.GetInt("PORT")
	if cfg.Port <= 0 {
		cfg.Port = v.GetInt("BACKEND_PORT")
	}

	cfg.Database = DatabaseConfig{
		URL:          strings.TrimSpace(v.GetString("DATABASE_URL")),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		SeedSamples:  v.GetBool("SEED_SAMPLE_DATA"),
	}
	if cfg.Database.URL == "" {
		return nil, ErrMissingDatabaseURL
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET_KEY"),
		Expiration: time.Duration(v.GetInt("ACCESS_TOKEN_EXPIRE_MINUTES")) * time.Minute,
		DefaultTTL: 15 * time.Minute,
		Issuer:     v.GetString("JWT_ISSUER"),
	}
	if cfg.JWT.Expiration <= 0 {
		cfg.JWT.Expiration = 30 * time.Minute
	}

	cfg.LLM = LLMConfig{
		Provider:        strings.ToLower(strings.TrimSpace(v.GetString("LLM_PROVIDER"))),
		Model:           v.GetString("LLM_MODEL"),
		OpenAIKey:       strings.TrimSpace(v.GetString("OPENAI_API_KEY")),
		AnthropicKey:    strings.TrimSpace(v.GetString("ANTHROPIC_API_KEY")),
		BaseURL:         v.GetString("LLM_BASE_URL"),
		Timeout:         parseDuration(v.GetString("LLM_TIMEOUT"), 30*time.Second),
		MaxOutputTokens: v.GetInt("LLM_MAX_OUTPUT_TOKENS"),
	}

	maxUpload := v.GetInt64("UPLOAD_MAX_BYTES")
	if maxUpload <= 0 {
		maxUpload = 10 * 1024 * 1024
	}
	cfg.Storage = StorageConfig{
		Driver:         strings.ToLower(v.GetString("STORAGE_DRIVER")),
		UploadDir:      v.GetString("UPLOAD_DIR"),
		MaxUploadBytes: maxUpload,
		S3Bucket:       v.GetString("S3_BUCKET"),
		S3Region:       v.GetString("S3_REGION"),
		S3Endpoint:     v.GetString("S3_ENDPOINT"),
		S3AccessKey:    v.GetString("S3_ACCESS_KEY_ID"),
		S3SecretKey:    v.GetString("S3_SECRET_ACCESS_KEY"),
		S3Prefix:       v.GetString("S3_PREFIX"),
	}

	cfg.Sources = SourcesConfig{
		CacheEnabled: v.GetBool("ENABLE_SOURCE_CACHE"),
		CacheTTL:     parseDuration(v.GetString("SOURCES_CACHE_TTL"), 5*time.Minute),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg, nil
}

// UsesDevSecret reports whether tokens are signed with the built-in development secret.
func (c *Config) UsesDevSecret() bool {
	return c.JWT.Secret == DevJWTSecret
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("BACKEND_HOST", "0.0.0.0")
	v.SetDefault("BACKEND_PORT", 8000)

	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("SEED_SAMPLE_DATA", true)

	v.SetDefault("REDIS_HOST", "")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET_KEY", DevJWTSecret)
	v.SetDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 30)
	v.SetDefault("JWT_ISSUER", "academic-assignment-helper")

	v.SetDefault("LLM_PROVIDER", ProviderOpenAI)
	v.SetDefault("LLM_MODEL", "gpt-4o-mini")
	v.SetDefault("LLM_TIMEOUT", "30s")
	v.SetDefault("LLM_MAX_OUTPUT_TOKENS", 1024)

	v.SetDefault("STORAGE_DRIVER", StorageLocal)
	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("UPLOAD_MAX_BYTES", 10*1024*1024)
	v.SetDefault("S3_PREFIX", "uploads")

	v.SetDefault("ENABLE_SOURCE_CACHE", false)
	v.SetDefault("SOURCES_CACHE_TTL", "5m")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
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
