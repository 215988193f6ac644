package config

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-cms/pkg/simplecms"
	memoryrepo "github.com/tendant/simple-cms/pkg/simplecms/repo/memory"
	"github.com/tendant/simple-cms/pkg/simplecms/repo/mongodb"
	repopg "github.com/tendant/simple-cms/pkg/simplecms/repo/postgres"
	fsstorage "github.com/tendant/simple-cms/pkg/simplecms/storage/fs"
	memorystorage "github.com/tendant/simple-cms/pkg/simplecms/storage/memory"
	s3storage "github.com/tendant/simple-cms/pkg/simplecms/storage/s3"
)

// Database types accepted by ServerConfig.DatabaseType
const (
	DatabaseMemory   = "memory"
	DatabasePostgres = "postgres"
	DatabaseMongo    = "mongodb"
)

// ServerConfig represents server-level configuration
type ServerConfig struct {
	Port        string
	Environment string

	DatabaseType  string
	DatabaseURL   string
	DBSchema      string
	MongoDatabase string

	DefaultStorageBackend string
	StorageBackends       []StorageBackendConfig

	UploadLimits   simplecms.UploadLimits
	AllowedOrigins []string
}

// StorageBackendConfig represents configuration for a blob store
type StorageBackendConfig struct {
	Name   string
	Type   string // "memory", "fs", "s3"
	Config map[string]interface{}
}

// Option configures the server config
type Option func(*ServerConfig) error

// Load builds a ServerConfig from defaults and the given options, then validates it.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *ServerConfig {
	return &ServerConfig{
		Port:                  "8080",
		Environment:           "development",
		DatabaseType:          DatabaseMemory,
		DBSchema:              "simple_cms",
		MongoDatabase:         "simple_cms",
		DefaultStorageBackend: "fs",
		StorageBackends: []StorageBackendConfig{
			{
				Name: "fs",
				Type: "fs",
				Config: map[string]interface{}{
					"base_dir": "./data/uploads",
				},
			},
		},
		UploadLimits: simplecms.DefaultUploadLimits(),
	}
}

// IsProduction reports whether the server runs in production mode
func (c *ServerConfig) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}

	switch c.DatabaseType {
	case DatabaseMemory:
	case DatabasePostgres, DatabaseMongo:
		if c.DatabaseURL == "" {
			return fmt.Errorf("database_url is required for %s database", c.DatabaseType)
		}
	default:
		return fmt.Errorf("invalid database_type: %s", c.DatabaseType)
	}

	if len(c.StorageBackends) == 0 {
		return fmt.Errorf("at least one storage backend must be configured")
	}

	found := false
	for _, backend := range c.StorageBackends {
		if backend.Name == c.DefaultStorageBackend {
			found = true
		}
		switch backend.Type {
		case "memory":
		case "fs":
			if getString(backend.Config, "base_dir") == "" {
				return fmt.Errorf("storage backend %s: base_dir is required", backend.Name)
			}
		case "s3":
			if getString(backend.Config, "bucket") == "" {
				return fmt.Errorf("storage backend %s: bucket is required", backend.Name)
			}
		default:
			return fmt.Errorf("storage backend %s: unsupported type %s", backend.Name, backend.Type)
		}
	}
	if !found {
		return fmt.Errorf("default storage backend '%s' not found in configured backends", c.DefaultStorageBackend)
	}

	l := c.UploadLimits
	if l.MaxImageBytes <= 0 || l.MaxPDFBytes <= 0 || l.MaxVideoBytes <= 0 {
		return fmt.Errorf("upload limits must be positive")
	}
	return nil
}

// BuildService creates the repository and blob stores described by c and
// returns the service with a function that releases their connections.
func (c *ServerConfig) BuildService(ctx context.Context) (simplecms.Service, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	repo, closeRepo, err := c.buildRepository(ctx)
	if err != nil {
		return nil, nil, err
	}
	closers = append(closers, closeRepo)

	opts := []simplecms.Option{
		simplecms.WithRepository(repo),
		simplecms.WithUploadLimits(c.UploadLimits),
	}
	for _, backendCfg := range c.StorageBackends {
		backend, err := buildStorageBackend(ctx, backendCfg)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to create storage backend %s: %w", backendCfg.Name, err)
		}
		opts = append(opts, simplecms.WithBlobStore(backendCfg.Name, backend))
	}
	opts = append(opts, simplecms.WithDefaultBlobStore(c.DefaultStorageBackend))

	svc, err := simplecms.New(opts...)
	if err != nil {
		closeAll()
		return nil, nil, err
	}
	return svc, closeAll, nil
}

func (c *ServerConfig) buildRepository(ctx context.Context) (simplecms.Repository, func(), error) {
	switch c.DatabaseType {
	case DatabaseMemory:
		return memoryrepo.New(), func() {}, nil
	case DatabasePostgres:
		poolConfig, err := pgxpool.ParseConfig(c.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse database url: %w", err)
		}
		if c.DBSchema != "" {
			schema := pgx.Identifier{c.DBSchema}.Sanitize()
			poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
				_, err := conn.Exec(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s; SET search_path TO %s", schema, schema))
				return err
			}
		}
		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to ping postgres: %w", err)
		}
		repo := repopg.NewWithPool(pool)
		if err := repo.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		slog.Info("Connected to postgres", "schema", c.DBSchema)
		return repo, pool.Close, nil
	case DatabaseMongo:
		client, repo, err := mongodb.Connect(ctx, c.DatabaseURL, c.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		disconnect := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				slog.Warn("Failed to disconnect from mongodb", "error", err)
			}
		}
		if err := repo.EnsureIndexes(ctx); err != nil {
			disconnect()
			return nil, nil, err
		}
		slog.Info("Connected to mongodb", "database", c.MongoDatabase)
		return repo, disconnect, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

func buildStorageBackend(ctx context.Context, config StorageBackendConfig) (simplecms.BlobStore, error) {
	switch config.Type {
	case "memory":
		return memorystorage.New(), nil
	case "fs":
		return fsstorage.New(fsstorage.Config{
			BaseDir:   getString(config.Config, "base_dir"),
			URLPrefix: getString(config.Config, "url_prefix"),
		})
	case "s3":
		return s3storage.New(ctx, s3storage.Config{
			Region:                 getString(config.Config, "region"),
			Bucket:                 getString(config.Config, "bucket"),
			Prefix:                 getString(config.Config, "prefix"),
			AccessKeyID:            getString(config.Config, "access_key_id"),
			SecretAccessKey:        getString(config.Config, "secret_access_key"),
			Endpoint:               getString(config.Config, "endpoint"),
			UsePathStyle:           getBool(config.Config, "use_path_style"),
			PresignDuration:        getInt(config.Config, "presign_duration"),
			EnableSSE:              getBool(config.Config, "enable_sse"),
			SSEAlgorithm:           getString(config.Config, "sse_algorithm"),
			SSEKMSKeyID:            getString(config.Config, "sse_kms_key_id"),
			CreateBucketIfNotExist: getBool(config.Config, "create_bucket_if_not_exist"),
		})
	default:
		return nil, fmt.Errorf("unsupported storage backend type: %s", config.Type)
	}
}

func getString(config map[string]interface{}, key string) string {
	if val, ok := config[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

func getBool(config map[string]interface{}, key string) bool {
	if val, ok := config[key]; ok {
		if b, ok := val.(bool); ok {
			return b
		}
	}
	return false
}

func getInt(config map[string]interface{}, key string) int {
	if val, ok := config[key]; ok {
		switch v := val.(type) {
		case int:
			return v
		case int64:
			return int(v)
		case float64:
			return int(v)
		}
	}
	return 0
}
