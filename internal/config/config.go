package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Source    SourceConfig
	Mongo     MongoConfig
	Database  DatabaseConfig
	Store     StoreConfig
	S3        S3Config
	MinIO     MinIOConfig
	Valkey    ValkeyConfig
	Fetch     FetchConfig
	Transcode TranscodeConfig
	Run       RunConfig
}

// SourceConfig selects the record source and names the projected fields.
type SourceConfig struct {
	Kind      string // RECORD_SOURCE: mongo | postgres
	IDField   string // SOURCE_ID_FIELD
	NameField string // SOURCE_NAME_FIELD
	URLField  string // IMAGE_URL_FIELD
	Table     string // SOURCE_TABLE (postgres only)
}

type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// StoreConfig selects the object store backend and the key prefix shared by
// both backends.
type StoreConfig struct {
	Backend string // STORE_BACKEND: s3 | minio
	Prefix  string // S3_DIRECTORY_NAME
}

type S3Config struct {
	Region          string // AWS_REGION
	Bucket          string // S3_BUCKET_NAME
	Endpoint        string // S3_ENDPOINT (for MinIO/LocalStack compatibility)
	AccessKeyID     string // AWS_ACCESS_KEY_ID
	SecretAccessKey string // AWS_SECRET_ACCESS_KEY
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// ValkeyConfig configures the optional outcome ledger. An empty Addr
// disables it.
type ValkeyConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type FetchConfig struct {
	Timeout     time.Duration
	UserAgent   string
	InsecureTLS bool
	MaxBytes    int64
}

type TranscodeConfig struct {
	Enabled       bool
	MaxBytes      int64
	Format        string
	Quality       int
	MaxIterations int
}

type RunConfig struct {
	LogDir             string
	LogLevel           string
	AcceptedExtensions []string
	DefaultExtension   string
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

func Load() (*Config, error) {
	cfg := &Config{
		Source: SourceConfig{
			Kind:      strings.ToLower(getEnv("RECORD_SOURCE", "mongo")),
			IDField:   getEnv("SOURCE_ID_FIELD", ""),
			NameField: getEnv("SOURCE_NAME_FIELD", "name"),
			URLField:  getEnv("IMAGE_URL_FIELD", "img_url"),
			Table:     getEnv("SOURCE_TABLE", ""),
		},
		Mongo: MongoConfig{
			URI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database:   getEnv("MONGO_DB_NAME", ""),
			Collection: getEnv("MONGO_COLLECTION_NAME", ""),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "imagesync"),
			Password: getEnv("DB_PASSWORD", "imagesync"),
			Name:     getEnv("DB_NAME", "imagesync"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 4)),
		},
		Store: StoreConfig{
			Backend: strings.ToLower(getEnv("STORE_BACKEND", "s3")),
			Prefix:  strings.Trim(getEnv("S3_DIRECTORY_NAME", ""), "/"),
		},
		S3: S3Config{
			Region:          getEnv("AWS_REGION", ""),
			Bucket:          getEnv("S3_BUCKET_NAME", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			Region:    getEnv("MINIO_REGION", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Valkey: ValkeyConfig{
			Addr:     getEnv("VALKEY_ADDR", ""),
			Password: getEnv("VALKEY_PASSWORD", ""),
			DB:       getEnvInt("VALKEY_DB", 0),
			TTL:      time.Duration(getEnvInt("LEDGER_TTL_HOURS", 168)) * time.Hour,
		},
		Fetch: FetchConfig{
			Timeout:     time.Duration(getEnvInt("FETCH_TIMEOUT_SECS", 5)) * time.Second,
			UserAgent:   getEnv("FETCH_USER_AGENT", defaultUserAgent),
			InsecureTLS: getEnvBool("FETCH_INSECURE_TLS", true),
			MaxBytes:    getEnvInt64("FETCH_MAX_BYTES", 0),
		},
		Transcode: TranscodeConfig{
			Enabled:       getEnvBool("TRANSCODE_ENABLED", true),
			MaxBytes:      getEnvInt64("MAX_OUTPUT_BYTES", 1<<20),
			Format:        strings.ToLower(getEnv("TARGET_FORMAT", "webp")),
			Quality:       getEnvInt("TARGET_QUALITY", 85),
			MaxIterations: getEnvInt("MAX_RESIZE_ITERATIONS", 16),
		},
		Run: RunConfig{
			LogDir:             getEnv("LOG_DIR", "logs"),
			LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", "info")),
			AcceptedExtensions: getEnvList("ACCEPTED_EXTENSIONS", []string{".jpg", ".png"}),
			DefaultExtension:   getEnv("DEFAULT_EXTENSION", ".jpg"),
		},
	}

	if cfg.Source.IDField == "" {
		if cfg.Source.Kind == "postgres" {
			cfg.Source.IDField = "id"
		} else {
			cfg.Source.IDField = "_id"
		}
	}
	return cfg, nil
}

// Validate reports every required setting that is missing or out of range
// for the selected source and store.
func (c *Config) Validate() error {
	var errs []error

	switch c.Source.Kind {
	case "mongo":
		if c.Mongo.Database == "" {
			errs = append(errs, errors.New("MONGO_DB_NAME is required"))
		}
		if c.Mongo.Collection == "" {
			errs = append(errs, errors.New("MONGO_COLLECTION_NAME is required"))
		}
	case "postgres":
		if c.Source.Table == "" {
			errs = append(errs, errors.New("SOURCE_TABLE is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported RECORD_SOURCE %q", c.Source.Kind))
	}
	if c.Source.URLField == "" {
		errs = append(errs, errors.New("IMAGE_URL_FIELD is required"))
	}

	switch c.Store.Backend {
	case "s3":
		if c.S3.Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET_NAME is required"))
		}
	case "minio":
		if c.MinIO.Bucket == "" {
			errs = append(errs, errors.New("MINIO_BUCKET is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported STORE_BACKEND %q", c.Store.Backend))
	}

	if c.Transcode.MaxBytes <= 0 {
		errs = append(errs, errors.New("MAX_OUTPUT_BYTES must be positive"))
	}
	if c.Transcode.Quality < 0 || c.Transcode.Quality > 100 {
		errs = append(errs, errors.New("TARGET_QUALITY must be between 0 and 100"))
	}
	if c.Transcode.MaxIterations <= 0 {
		errs = append(errs, errors.New("MAX_RESIZE_ITERATIONS must be positive"))
	}
	if !strings.HasPrefix(c.Run.DefaultExtension, ".") {
		errs = append(errs, errors.New("DEFAULT_EXTENSION must start with a dot"))
	}

	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvList splits a comma-separated value, dropping empty entries.
func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
