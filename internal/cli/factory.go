package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/sideeye"
	"github.com/aretw0/sideeye/internal/config"
	"github.com/aretw0/sideeye/internal/logging"
	"github.com/aretw0/sideeye/pkg/adapters/file"
	loamAdapter "github.com/aretw0/sideeye/pkg/adapters/loam"
	"github.com/aretw0/sideeye/pkg/adapters/memory"
	"github.com/aretw0/sideeye/pkg/adapters/process"
	redisAdapter "github.com/aretw0/sideeye/pkg/adapters/redis"
	"github.com/aretw0/sideeye/pkg/domain"
	"github.com/aretw0/sideeye/pkg/observability"
	"github.com/aretw0/sideeye/pkg/persistence/middleware"
	"github.com/aretw0/sideeye/pkg/ports"
	"github.com/aretw0/sideeye/pkg/registry"
)

// Options configures NewAnalyzer.
type Options struct {
	Config *config.Config
	Logger *slog.Logger

	// Items are added in front of the configured catalogue (e.g. the items of a trial file).
	Items []*domain.Item

	// Hooks are combined with the logging hooks.
	Hooks []domain.LifecycleHooks
}

// NewLogger configures the application logger from the log section.
func NewLogger(cfg config.LogConfig) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	return logging.New(level, cfg.Format), nil
}

// NewStore creates the trial store selected by the store section.
// The returned close function releases the backend connection.
func NewStore(cfg config.StoreConfig) (ports.TrialStore, ports.DistributedLocker, func() error, error) {
	noop := func() error { return nil }

	codec, err := NewCodec(cfg.Encryption)
	if err != nil {
		return nil, nil, nil, err
	}

	switch cfg.Driver {
	case config.DriverMemory, "":
		return memory.NewStore(), nil, noop, nil
	case config.DriverFile:
		var opts []file.Option
		if codec != nil {
			opts = append(opts, file.WithCodec(codec))
		}
		return file.New(cfg.Path, opts...), nil, noop, nil
	case config.DriverRedis:
		opts := []redisAdapter.Option{redisAdapter.WithPrefix(cfg.Redis.Prefix)}
		if codec != nil {
			opts = append(opts, redisAdapter.WithCodec(codec))
		}
		if cfg.Redis.TTL > 0 {
			opts = append(opts, redisAdapter.WithTTL(cfg.Redis.TTL))
		}
		store := redisAdapter.New(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, opts...)
		locker := redisAdapter.NewLocker(store.Client(), cfg.Redis.Prefix)
		return store, locker, store.Close, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// NewMeasures builds the measure registry from the external measure commands in cfg.
func NewMeasures(cfg config.MeasuresConfig) (*registry.Registry, error) {
	reg := registry.NewRegistry()
	if cfg.Path == "" {
		return reg, nil
	}
	defs, err := process.LoadMeasures(cfg.Path)
	if err != nil {
		return nil, err
	}
	runner := process.NewRunner(
		process.WithRegistry(defs),
		process.WithBaseDir(filepath.Dir(cfg.Path)),
		process.WithTimeout(cfg.Timeout),
	)
	runner.Install(reg)
	return reg, nil
}

// NewCodec returns an encrypting trial codec, or nil when no key is configured.
// The memory store keeps trials in-process and never encodes them.
func NewCodec(cfg config.EncryptionConfig) (middleware.Codec, error) {
	if cfg.Key == "" {
		return nil, nil
	}
	keys, err := middleware.ParseEncryptionConfig(cfg.Key, cfg.FallbackKeys)
	if err != nil {
		return nil, err
	}
	mw, err := middleware.NewEncryptionMiddleware(keys)
	if err != nil {
		return nil, err
	}
	return middleware.Chain(middleware.JSONCodec{}, mw), nil
}

// NewAnalyzer wires an analyzer with standard CLI conventions: store and item
// catalogue from config, logging hooks, and inline items layered over the catalogue.
func NewAnalyzer(opts Options) (*sideeye.Analyzer, func() error, error) {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	store, locker, closeStore, err := NewStore(cfg.Store)
	if err != nil {
		return nil, nil, err
	}

	var loaders layeredLoader
	if len(opts.Items) > 0 {
		inline, err := memory.NewLoader(opts.Items...)
		if err != nil {
			_ = closeStore()
			return nil, nil, fmt.Errorf("invalid inline item: %w", err)
		}
		loaders = append(loaders, inline)
	}
	if cfg.Items.Path != "" {
		catalogue, err := loamAdapter.Open(cfg.Items.Path)
		if err != nil {
			_ = closeStore()
			return nil, nil, err
		}
		loaders = append(loaders, catalogue)
	}

	measures, err := NewMeasures(cfg.Measures)
	if err != nil {
		_ = closeStore()
		return nil, nil, err
	}

	hooks := append([]domain.LifecycleHooks{observability.LogHooks(logger)}, opts.Hooks...)

	analyzerOpts := []sideeye.Option{
		sideeye.WithLogger(logger),
		sideeye.WithStore(store),
		sideeye.WithItemLoader(loaders),
		sideeye.WithBuildOptions(cfg.Analysis),
		sideeye.WithMeasures(measures),
		sideeye.WithLifecycleHooks(observability.Combine(hooks...)),
	}
	if locker != nil {
		analyzerOpts = append(analyzerOpts, sideeye.WithLocker(locker), sideeye.WithLockTTL(cfg.Store.Redis.LockTTL))
	}

	analyzer, err := sideeye.New(cfg.Items.Path, analyzerOpts...)
	if err != nil {
		_ = closeStore()
		return nil, nil, fmt.Errorf("error initializing analyzer: %w", err)
	}
	return analyzer, closeStore, nil
}
