package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// envConfig is the environment surface read by WithEnv.
//
//	DATABASE_URL - "memory", "postgres://...", "postgresql://...", "mongodb://..." or "mongodb+srv://..."
//	STORAGE_URL  - "memory://", "file:///path/to/uploads" or "s3://bucket?region=us-east-1&endpoint=http://localhost:9000"
//
// Unset variables leave the current value in place.
type envConfig struct {
	Port        string `env:"PORT" env-description:"HTTP listen port"`
	Environment string `env:"ENVIRONMENT" env-description:"development or production"`

	DatabaseURL   string `env:"DATABASE_URL" env-description:"document store connection string"`
	DBSchema      string `env:"DB_SCHEMA" env-description:"postgres schema"`
	MongoDatabase string `env:"MONGO_DATABASE" env-description:"mongodb database name"`

	StorageURL        string `env:"STORAGE_URL" env-description:"blob store location"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	AWSRegion         string `env:"AWS_REGION"`

	MaxImageMB int64 `env:"UPLOAD_MAX_IMAGE_MB"`
	MaxPDFMB   int64 `env:"UPLOAD_MAX_PDF_MB"`
	MaxVideoMB int64 `env:"UPLOAD_MAX_VIDEO_MB"`

	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-separator:","`
}

// WithEnv applies environment variable overrides.
func WithEnv() Option {
	return func(c *ServerConfig) error {
		var env envConfig
		if err := cleanenv.ReadEnv(&env); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}

		if env.Port != "" {
			c.Port = env.Port
		}
		if env.Environment != "" {
			c.Environment = env.Environment
		}
		if env.DBSchema != "" {
			c.DBSchema = env.DBSchema
		}
		if env.MongoDatabase != "" {
			c.MongoDatabase = env.MongoDatabase
		}
		if err := applyDatabaseEnv(env.DatabaseURL, c); err != nil {
			return err
		}
		if err := applyStorageEnv(env, c); err != nil {
			return err
		}

		if env.MaxImageMB > 0 {
			c.UploadLimits.MaxImageBytes = env.MaxImageMB << 20
		}
		if env.MaxPDFMB > 0 {
			c.UploadLimits.MaxPDFBytes = env.MaxPDFMB << 20
		}
		if env.MaxVideoMB > 0 {
			c.UploadLimits.MaxVideoBytes = env.MaxVideoMB << 20
		}

		var origins []string
		for _, o := range env.AllowedOrigins {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		if len(origins) > 0 {
			c.AllowedOrigins = origins
		}
		return nil
	}
}

func applyDatabaseEnv(dbURL string, c *ServerConfig) error {
	switch {
	case dbURL == "":
		return nil
	case dbURL == "memory":
		c.DatabaseType = DatabaseMemory
		c.DatabaseURL = ""
	case strings.HasPrefix(dbURL, "postgres://"), strings.HasPrefix(dbURL, "postgresql://"):
		c.DatabaseType = DatabasePostgres
		c.DatabaseURL = dbURL
	case strings.HasPrefix(dbURL, "mongodb://"), strings.HasPrefix(dbURL, "mongodb+srv://"):
		c.DatabaseType = DatabaseMongo
		c.DatabaseURL = dbURL
	default:
		return fmt.Errorf("unsupported DATABASE_URL format: %s (use 'memory', 'postgresql://...' or 'mongodb://...')", dbURL)
	}
	return nil
}

// applyStorageEnv replaces the configured blob stores with the one STORAGE_URL names.
func applyStorageEnv(env envConfig, c *ServerConfig) error {
	raw := env.StorageURL
	if raw == "" {
		return nil
	}

	var backend StorageBackendConfig
	switch {
	case raw == "memory" || raw == "memory://":
		backend = StorageBackendConfig{Name: "memory", Type: "memory", Config: map[string]interface{}{}}
	case strings.HasPrefix(raw, "file://"):
		path := strings.TrimPrefix(raw, "file://")
		if path == "" {
			return fmt.Errorf("filesystem path cannot be empty in STORAGE_URL")
		}
		backend = StorageBackendConfig{Name: "fs", Type: "fs", Config: map[string]interface{}{"base_dir": path}}
	case strings.HasPrefix(raw, "s3://"):
		var err error
		if backend, err = s3Backend(raw, env); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported STORAGE_URL format: %s (use 'memory://', 'file://...', or 's3://...')", raw)
	}

	c.StorageBackends = []StorageBackendConfig{backend}
	c.DefaultStorageBackend = backend.Name
	return nil
}

// s3Backend parses s3://bucket/prefix?region=&endpoint=&path_style=&create_bucket=
func s3Backend(raw string, env envConfig) (StorageBackendConfig, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return StorageBackendConfig{}, fmt.Errorf("invalid STORAGE_URL: %w", err)
	}
	if u.Host == "" {
		return StorageBackendConfig{}, fmt.Errorf("S3 bucket name cannot be empty in STORAGE_URL")
	}

	cfg := map[string]interface{}{
		"bucket": u.Host,
		"region": "us-east-1",
	}
	if prefix := strings.Trim(u.Path, "/"); prefix != "" {
		cfg["prefix"] = prefix
	}
	if env.AWSRegion != "" {
		cfg["region"] = env.AWSRegion
	}

	q := u.Query()
	if v := q.Get("region"); v != "" {
		cfg["region"] = v
	}
	if v := q.Get("endpoint"); v != "" {
		cfg["endpoint"] = v
		cfg["use_path_style"] = true
	}
	for param, key := range map[string]string{
		"path_style":    "use_path_style",
		"create_bucket": "create_bucket_if_not_exist",
	} {
		v := q.Get(param)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return StorageBackendConfig{}, fmt.Errorf("invalid boolean for STORAGE_URL %s: %w", param, err)
		}
		cfg[key] = b
	}

	if env.S3AccessKeyID != "" {
		cfg["access_key_id"] = env.S3AccessKeyID
	}
	if env.S3SecretAccessKey != "" {
		cfg["secret_access_key"] = env.S3SecretAccessKey
	}

	return StorageBackendConfig{Name: "s3", Type: "s3", Config: cfg}, nil
}
