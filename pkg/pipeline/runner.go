package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/unixblacksteel/mindmap/pkg/cache"
	"github.com/unixblacksteel/mindmap/pkg/errors"
	"github.com/unixblacksteel/mindmap/pkg/mindmap"
	"github.com/unixblacksteel/mindmap/pkg/observability"
)

// DefaultGenerateTimeout bounds one shared upstream generation.
const DefaultGenerateTimeout = 2 * time.Minute

// Cache key types reported to observability hooks.
const (
	keyTypeTree     = "mindmap"
	keyTypeArtifact = "artifact"
)

// Generator produces mind-map trees from topics. *genai.Client satisfies it.
type Generator interface {
	GenerateMindMapData(ctx context.Context, topic string) (*mindmap.Node, error)
	TextModel() string
}

// Runner executes pipeline operations with caching.
// It is the shared entry point for both the CLI and the HTTP server.
type Runner struct {
	Generator Generator
	Cache     cache.Cache
	Keyer     cache.Keyer
	Logger    *log.Logger
	TTL       time.Duration
	// GenerateTimeout bounds a generation shared by concurrent callers,
	// which outlives any one caller's context.
	GenerateTimeout time.Duration

	group singleflight.Group
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer uses
// cache.DefaultKeyer and a nil logger uses log.Default(). The generator may be
// nil when only local trees are rendered.
func NewRunner(gen Generator, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Generator: gen,
		Cache:     c,
		Keyer:     keyer,
		Logger:    logger,
		TTL:       cache.DefaultTTL,

		GenerateTimeout: DefaultGenerateTimeout,
	}
}

// Execute generates the tree for topic and renders it.
func (r *Runner) Execute(ctx context.Context, topic string, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	start := time.Now()
	tree, hit, err := r.MindMap(ctx, topic, opts.Refresh)
	if err != nil {
		return nil, err
	}
	generateTime := time.Since(start)

	result, err := r.Render(ctx, tree, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.GenerateTime = generateTime
	result.CacheInfo.TreeHit = hit
	return result, nil
}

// MindMap returns the tree for topic, from cache unless refresh is set.
// Concurrent calls for the same topic share one upstream request. A caller
// whose ctx ends stops waiting; the request keeps running for the others.
func (r *Runner) MindMap(ctx context.Context, topic string, refresh bool) (*mindmap.Node, bool, error) {
	if err := errors.ValidateTopic(topic); err != nil {
		return nil, false, err
	}
	if r.Generator == nil {
		return nil, false, errors.New(errors.ErrCodeInvalidConfig, "no generator configured (set an API key)")
	}

	key := r.Keyer.MindMapKey(r.Generator.TextModel(), topic)
	if !refresh {
		if tree, ok := r.cachedTree(ctx, key); ok {
			return tree, true, nil
		}
	}

	ch := r.group.DoChan(key, func() (any, error) {
		timeout := r.GenerateTimeout
		if timeout <= 0 {
			timeout = DefaultGenerateTimeout
		}
		gctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		tree, err := r.Generator.GenerateMindMapData(gctx, topic)
		if err != nil {
			return nil, err
		}
		r.storeTree(gctx, key, tree)
		return tree, nil
	})
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		if res.Shared {
			r.Logger.Debug("shared in-flight generation", "topic", topic)
		}
		return res.Val.(*mindmap.Node), false, nil
	}
}

func (r *Runner) cachedTree(ctx context.Context, key string) (*mindmap.Node, bool) {
	data, ok, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "err", err)
		return nil, false
	}
	if !ok {
		observability.Cache().OnCacheMiss(ctx, keyTypeTree)
		return nil, false
	}
	tree, err := mindmap.Parse(data)
	if err != nil {
		r.Logger.Warn("discarding corrupt cached tree", "key", key, "err", err)
		_ = r.Cache.Delete(ctx, key)
		observability.Cache().OnCacheMiss(ctx, keyTypeTree)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyTypeTree)
	return tree, true
}

func (r *Runner) storeTree(ctx context.Context, key string, tree *mindmap.Node) {
	data, err := mindmap.Marshal(tree)
	if err != nil {
		r.Logger.Warn("encode tree for cache", "err", err)
		return
	}
	r.store(ctx, key, keyTypeTree, data)
}

func (r *Runner) store(ctx context.Context, key, keyType string, data []byte) {
	if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// loggerFor returns the per-call logger if set, otherwise the runner's.
func (r *Runner) loggerFor(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}
