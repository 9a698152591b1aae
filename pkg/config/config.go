package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/unixblacksteel/mindmap/pkg/cache"
	"github.com/unixblacksteel/mindmap/pkg/errors"
	"github.com/unixblacksteel/mindmap/pkg/genai"
	"github.com/unixblacksteel/mindmap/pkg/layout"
)

// Config is the full application configuration.
type Config struct {
	API    APIConfig    `toml:"api"`
	Render RenderConfig `toml:"render"`
	Export ExportConfig `toml:"export"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// APIConfig configures the generation service.
type APIConfig struct {
	Endpoint   string        `toml:"endpoint" validate:"required,url"`
	APIKey     string        `toml:"api_key"`
	TextModel  string        `toml:"text_model" validate:"required"`
	ImageModel string        `toml:"image_model" validate:"required"`
	Timeout    time.Duration `toml:"timeout" validate:"gte=0"`
	RateLimit  float64       `toml:"rate_limit" validate:"gte=0"`
	Burst      int           `toml:"burst" validate:"gte=0"`
}

// RenderConfig sets the canvas.
type RenderConfig struct {
	Width      int    `toml:"width" validate:"gt=0,lte=8192"`
	Height     int    `toml:"height" validate:"gt=0,lte=8192"`
	Background string `toml:"background" validate:"hexcolor"`
	Rasterizer string `toml:"rasterizer" validate:"oneof=native rsvg"`
}

// ExportConfig sets where exports land.
type ExportConfig struct {
	Dir string `toml:"dir"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend       string        `toml:"backend" validate:"oneof=file redis mongo none"`
	Dir           string        `toml:"dir"`
	RedisAddr     string        `toml:"redis_addr" validate:"required_if=Backend redis"`
	MongoURI      string        `toml:"mongo_uri" validate:"required_if=Backend mongo"`
	MongoDatabase string        `toml:"mongo_database"`
	TTL           time.Duration `toml:"ttl" validate:"gte=0"`
}

// ServerConfig configures `mindmap serve`.
type ServerConfig struct {
	Addr string `toml:"addr" validate:"required"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			Endpoint:   genai.DefaultEndpoint,
			TextModel:  genai.DefaultTextModel,
			ImageModel: genai.DefaultImageModel,
			Timeout:    60 * time.Second,
			RateLimit:  2,
			Burst:      4,
		},
		Render: RenderConfig{
			Width:      layout.DefaultWidth,
			Height:     layout.DefaultHeight,
			Background: "#121214",
			Rasterizer: "native",
		},
		Export: ExportConfig{Dir: "."},
		Cache: CacheConfig{
			Backend:       cache.BackendFile,
			MongoDatabase: "mindmap",
			TTL:           cache.DefaultTTL,
		},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// DefaultPath is $XDG_CONFIG_HOME/mindmap/config.toml, or the platform
// equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "mindmap", "config.toml"), nil
}

// Load reads defaults, then path (or the default path when empty), then the
// environment, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}
	if path != "" {
		if err := cfg.merge(path); err != nil {
			if !explicit && os.IsNotExist(err) {
				err = nil
			}
			if err != nil {
				return nil, err
			}
		}
	}

	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) merge(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %s", path, undecoded[0])
	}
	return nil
}

// ApplyEnv overrides settings from the environment. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	for _, name := range []string{"MINDMAP_API_KEY", "GEMINI_API_KEY", "API_KEY"} {
		if v, ok := lookup(name); ok && v != "" {
			c.API.APIKey = v
			break
		}
	}
	if v, ok := lookup("MINDMAP_ENDPOINT"); ok && v != "" {
		c.API.Endpoint = v
	}
	if v, ok := lookup("MINDMAP_CACHE"); ok && v != "" {
		c.Cache.Backend = v
	}
}

// GenAI returns the generation client settings.
func (c *Config) GenAI() genai.Config {
	return genai.Config{
		Endpoint:   c.API.Endpoint,
		APIKey:     c.API.APIKey,
		TextModel:  c.API.TextModel,
		ImageModel: c.API.ImageModel,
		Timeout:    c.API.Timeout,
		RateLimit:  c.API.RateLimit,
		Burst:      c.API.Burst,
	}
}

// CacheBackend returns the cache settings.
func (c *Config) CacheBackend() cache.Config {
	return cache.Config{
		Backend:       c.Cache.Backend,
		Dir:           c.Cache.Dir,
		RedisAddr:     c.Cache.RedisAddr,
		MongoURI:      c.Cache.MongoURI,
		MongoDatabase: c.Cache.MongoDatabase,
	}
}
