package config

import (
	"fmt"

	"github.com/tendant/simple-cms/pkg/simplecms"
)

// WithPort sets the HTTP listen port.
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the runtime environment name.
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		c.Environment = env
		return nil
	}
}

// WithDatabase configures the document store type and connection URL.
func WithDatabase(dbType, url string) Option {
	return func(c *ServerConfig) error {
		c.DatabaseType = dbType
		c.DatabaseURL = url
		return nil
	}
}

// WithDatabaseSchema sets the postgres schema.
func WithDatabaseSchema(schema string) Option {
	return func(c *ServerConfig) error {
		c.DBSchema = schema
		return nil
	}
}

// WithMongoDatabase sets the mongodb database name.
func WithMongoDatabase(name string) Option {
	return func(c *ServerConfig) error {
		c.MongoDatabase = name
		return nil
	}
}

// WithDefaultStorage sets the blob store used for new uploads.
func WithDefaultStorage(name string) Option {
	return func(c *ServerConfig) error {
		c.DefaultStorageBackend = name
		return nil
	}
}

// WithMemoryStorage adds or replaces an in-memory blob store.
func WithMemoryStorage(name string) Option {
	return func(c *ServerConfig) error {
		if name == "" {
			name = "memory"
		}
		upsertStorageBackend(c, StorageBackendConfig{Name: name, Type: "memory"})
		return nil
	}
}

// WithFilesystemStorage adds or replaces a filesystem blob store.
func WithFilesystemStorage(name, baseDir, urlPrefix string) Option {
	return func(c *ServerConfig) error {
		if name == "" {
			name = "fs"
		}
		cfg := map[string]interface{}{
			"base_dir": baseDir,
		}
		if urlPrefix != "" {
			cfg["url_prefix"] = urlPrefix
		}
		upsertStorageBackend(c, StorageBackendConfig{Name: name, Type: "fs", Config: cfg})
		return nil
	}
}

// S3Options configures an S3 blob store.
type S3Options struct {
	Region                 string
	Bucket                 string
	Prefix                 string
	AccessKeyID            string
	SecretAccessKey        string
	Endpoint               string
	UsePathStyle           bool
	PresignDuration        int
	CreateBucketIfNotExist bool
}

// WithS3Storage adds or replaces an S3 blob store.
func WithS3Storage(name string, opts S3Options) Option {
	return func(c *ServerConfig) error {
		if name == "" {
			name = "s3"
		}
		if opts.Bucket == "" {
			return fmt.Errorf("s3 storage %s: bucket is required", name)
		}
		cfg := map[string]interface{}{
			"bucket":                     opts.Bucket,
			"use_path_style":             opts.UsePathStyle,
			"create_bucket_if_not_exist": opts.CreateBucketIfNotExist,
		}
		for key, val := range map[string]string{
			"region":            opts.Region,
			"prefix":            opts.Prefix,
			"access_key_id":     opts.AccessKeyID,
			"secret_access_key": opts.SecretAccessKey,
			"endpoint":          opts.Endpoint,
		} {
			if val != "" {
				cfg[key] = val
			}
		}
		if opts.PresignDuration > 0 {
			cfg["presign_duration"] = opts.PresignDuration
		}
		upsertStorageBackend(c, StorageBackendConfig{Name: name, Type: "s3", Config: cfg})
		return nil
	}
}

// WithUploadLimits replaces the per-kind upload size caps.
func WithUploadLimits(limits simplecms.UploadLimits) Option {
	return func(c *ServerConfig) error {
		c.UploadLimits = limits
		return nil
	}
}

// WithAllowedOrigins sets the CORS origins the server accepts.
func WithAllowedOrigins(origins ...string) Option {
	return func(c *ServerConfig) error {
		c.AllowedOrigins = origins
		return nil
	}
}

func upsertStorageBackend(c *ServerConfig, backend StorageBackendConfig) {
	for i, existing := range c.StorageBackends {
		if existing.Name == backend.Name {
			c.StorageBackends[i] = backend
			return
		}
	}
	c.StorageBackends = append(c.StorageBackends, backend)
}
