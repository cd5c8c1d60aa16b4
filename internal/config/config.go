// Package config loads process configuration from the environment. The
// pipeline itself never reads env vars; everything is resolved here once
// at startup and injected.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the immutable application configuration, constructed once
// at startup.
type Config struct {
	HTTPPort string

	// AuthToken is the optional shared secret for the access gate.
	// Empty means the gate is open.
	AuthToken string

	// BodyLimitMB caps the request body; rendered documents can be
	// large, the default matches the historical 250 MB cap.
	BodyLimitMB int64

	// RequestTimeout is the per-request deadline imposed by the
	// transport. Zero disables it.
	RequestTimeout time.Duration

	LogLevel  string
	LogFormat string

	Storage StorageConfig
	Render  RenderConfig
	Upload  UploadConfig
}

type StorageConfig struct {
	// Provider selects the object store backend: s3, localfs or gdrive.
	Provider string
	Bucket   string

	S3        S3Config
	LocalRoot string
	GDrive    GDriveConfig
}

type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

type GDriveConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	FolderID     string
}

type RenderConfig struct {
	// Workers bounds concurrent CPU-bound renders; zero means
	// GOMAXPROCS.
	Workers int
	// StrictPages aborts a request when one page fails instead of
	// silently dropping it.
	StrictPages bool
}

type UploadConfig struct {
	// CleanupOnFailure deletes sibling objects persisted by a request
	// whose fan-out partially failed.
	CleanupOnFailure bool
}

// Load reads configuration from the environment, preferring a local
// .env file when present.
func Load() Config {
	_ = godotenv.Load(".env")

	return Config{
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		AuthToken:      getEnv("AUTH_TOKEN", ""),
		BodyLimitMB:    int64(getEnvInt("BODY_LIMIT_MB", 250)),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 0)) * time.Second,
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		Storage: StorageConfig{
			Provider: getEnv("STORAGE_PROVIDER", "s3"),
			Bucket:   getEnv("STORAGE_BUCKET", ""),
			S3: S3Config{
				Endpoint:  getEnv("S3_ENDPOINT", ""),
				AccessKey: getEnv("S3_ACCESS_KEY", ""),
				SecretKey: getEnv("S3_SECRET_KEY", ""),
				Region:    getEnv("S3_REGION", ""),
				UseSSL:    getEnvBool("S3_USE_SSL", true),
			},
			LocalRoot: getEnv("STORAGE_LOCAL_ROOT", ""),
			GDrive: GDriveConfig{
				ClientID:     getEnv("GDRIVE_CLIENT_ID", ""),
				ClientSecret: getEnv("GDRIVE_CLIENT_SECRET", ""),
				RefreshToken: getEnv("GDRIVE_REFRESH_TOKEN", ""),
				FolderID:     getEnv("GDRIVE_FOLDER_ID", ""),
			},
		},
		Render: RenderConfig{
			Workers:     getEnvInt("RENDER_WORKERS", 0),
			StrictPages: getEnvBool("RENDER_STRICT_PAGES", false),
		},
		Upload: UploadConfig{
			CleanupOnFailure: getEnvBool("UPLOAD_CLEANUP_ON_FAILURE", false),
		},
	}
}

// BodyLimitBytes returns the body cap in bytes; zero disables it.
func (c Config) BodyLimitBytes() int64 {
	if c.BodyLimitMB <= 0 {
		return 0
	}
	return c.BodyLimitMB * 1024 * 1024
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
