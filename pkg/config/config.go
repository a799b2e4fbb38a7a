package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "TECHHUB"

// Env var names used by tests and operational tooling.
const (
	EnvAppEnv        = "TECHHUB_APP_ENV"
	EnvPort          = "TECHHUB_APP_PORT"
	EnvProductAPIURL = "TECHHUB_PRODUCT_API_BASE_URL"
	EnvGCPProjectID  = "TECHHUB_GCP_PROJECT_ID"
	EnvGCSBucket     = "TECHHUB_GCS_BUCKET_NAME"
	EnvRedisURL      = "TECHHUB_REDIS_URL"
)

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App        AppConfig
	ProductAPI ProductAPIConfig
	GCP        GCPConfig
	GCS        GCSConfig
	Media      MediaConfig
	Sessions   SessionsConfig
	Redis      RedisConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Media.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TECHHUB_APP_ENV" required:"true"`
	Port         string `envconfig:"TECHHUB_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TECHHUB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TECHHUB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// ProductAPIConfig points the gateway at the remote TechHub REST API.
type ProductAPIConfig struct {
	BaseURL string        `envconfig:"TECHHUB_PRODUCT_API_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"TECHHUB_PRODUCT_API_TIMEOUT" default:"30s"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"TECHHUB_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"TECHHUB_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"TECHHUB_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName string        `envconfig:"TECHHUB_GCS_BUCKET_NAME" required:"true"`
	Timeout    time.Duration `envconfig:"TECHHUB_GCS_TIMEOUT" default:"30s"`
}

// MediaConfig carries the staging constraints for product images.
type MediaConfig struct {
	MinImages   int `envconfig:"TECHHUB_MEDIA_MIN_IMAGES" default:"4"`
	MaxImages   int `envconfig:"TECHHUB_MEDIA_MAX_IMAGES" default:"10"`
	MaxUploadMB int `envconfig:"TECHHUB_MEDIA_MAX_UPLOAD_MB" default:"10"`
}

func (m MediaConfig) MaxUploadBytes() int64 {
	return int64(m.MaxUploadMB) * 1024 * 1024
}

func (m MediaConfig) validate() error {
	if m.MinImages < 0 {
		return fmt.Errorf("min images must be non-negative, got %d", m.MinImages)
	}
	if m.MaxImages < m.MinImages {
		return fmt.Errorf("max images (%d) must be >= min images (%d)", m.MaxImages, m.MinImages)
	}
	if m.MaxUploadMB <= 0 {
		return fmt.Errorf("max upload MB must be positive, got %d", m.MaxUploadMB)
	}
	return nil
}

type SessionsConfig struct {
	IdleTTL       time.Duration `envconfig:"TECHHUB_SESSION_IDLE_TTL" default:"2h"`
	SweepInterval time.Duration `envconfig:"TECHHUB_SESSION_SWEEP_INTERVAL" default:"5m"`
}

// RedisConfig is optional; when URL is empty the gateway runs without the
// idempotency store.
type RedisConfig struct {
	URL          string        `envconfig:"TECHHUB_REDIS_URL"`
	PoolSize     int           `envconfig:"TECHHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TECHHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TECHHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TECHHUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TECHHUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != ""
}
