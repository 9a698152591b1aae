package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Backend names accepted by Open.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// DefaultTTL is how long generated mind maps stay cached.
const DefaultTTL = 24 * time.Hour

// Config selects and configures a backend.
type Config struct {
	Backend       string
	Dir           string // file backend; empty means DefaultDir
	RedisAddr     string
	RedisPrefix   string
	MongoURI      string
	MongoDatabase string
}

// Open returns the configured backend. An empty backend means file.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", BackendFile:
		dir := cfg.Dir
		if dir == "" {
			d, err := DefaultDir()
			if err != nil {
				return nil, err
			}
			dir = d
		}
		return NewFileCache(dir)
	case BackendRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("redis cache needs an address")
		}
		prefix := cfg.RedisPrefix
		if prefix == "" {
			prefix = "mindmap:"
		}
		return NewRedisCache(ctx, cfg.RedisAddr, prefix)
	case BackendMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("mongo cache needs a uri")
		}
		db := cfg.MongoDatabase
		if db == "" {
			db = "mindmap"
		}
		return NewMongoCache(ctx, cfg.MongoURI, db)
	case BackendNone:
		return NewNullCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
