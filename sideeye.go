package sideeye

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/aretw0/sideeye/internal/logging"
	"github.com/aretw0/sideeye/internal/validator"
	loamAdapter "github.com/aretw0/sideeye/pkg/adapters/loam"
	"github.com/aretw0/sideeye/pkg/adapters/memory"
	"github.com/aretw0/sideeye/pkg/domain"
	"github.com/aretw0/sideeye/pkg/ports"
	"github.com/aretw0/sideeye/pkg/registry"
	"github.com/aretw0/sideeye/pkg/session"
)

// Analyzer is the high-level entry point for the sideeye library.
// It builds trials from fixation sequences, persists them and runs registered measures.
type Analyzer struct {
	loader   ports.ItemLoader
	store    ports.TrialStore
	sessions *session.Manager
	measures *registry.Registry
	locker   ports.DistributedLocker
	lockTTL  time.Duration
	options  domain.BuildOptions
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	Name     string
}

var _ ports.Analyzer = (*Analyzer)(nil)

// Option defines a functional option for configuring the Analyzer.
type Option func(*Analyzer)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(a *Analyzer) {
		a.hooks = hooks
	}
}

// WithItemLoader injects a custom ItemLoader, bypassing the default Loam initialization.
func WithItemLoader(l ports.ItemLoader) Option {
	return func(a *Analyzer) {
		a.loader = l
	}
}

// WithStore sets where trials are persisted (default: in memory).
func WithStore(s ports.TrialStore) Option {
	return func(a *Analyzer) {
		a.store = s
	}
}

// WithLocker enables distributed locking of trials during measure passes.
func WithLocker(l ports.DistributedLocker) Option {
	return func(a *Analyzer) {
		a.locker = l
	}
}

// WithMeasures sets the registry of measures applied to every built trial.
func WithMeasures(r *registry.Registry) Option {
	return func(a *Analyzer) {
		a.measures = r
	}
}

// WithBuildOptions sets the default handling of excluded fixations.
// A BuildRequest may override it per trial.
func WithBuildOptions(opts domain.BuildOptions) Option {
	return func(a *Analyzer) {
		a.options = opts
	}
}

// WithLockTTL bounds how long a distributed trial lock is held before it expires.
func WithLockTTL(ttl time.Duration) Option {
	return func(a *Analyzer) {
		a.lockTTL = ttl
	}
}

// WithLogger sets a custom structured logger for the analyzer.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// New initializes a new Analyzer.
// By default, items are read from a Loam repository at itemsPath.
// If WithItemLoader is provided, itemsPath can be empty and Loam is skipped; with neither,
// the analyzer starts with an empty in-memory catalogue and requests must carry their items.
func New(itemsPath string, opts ...Option) (*Analyzer, error) {
	a := &Analyzer{}

	for _, opt := range opts {
		opt(a)
	}

	if a.loader == nil {
		if itemsPath == "" {
			l, err := memory.NewLoader()
			if err != nil {
				return nil, err
			}
			a.loader = l
		} else {
			absPath, err := filepath.Abs(itemsPath)
			if err != nil {
				return nil, fmt.Errorf("invalid path: %w", err)
			}
			a.Name = filepath.Base(absPath)

			l, err := loamAdapter.Open(absPath)
			if err != nil {
				return nil, err
			}
			a.loader = l
		}
	} else if itemsPath != "" {
		a.Name = filepath.Base(itemsPath)
	}

	if a.store == nil {
		a.store = memory.NewStore()
	}
	if a.measures == nil {
		a.measures = registry.NewRegistry()
	}
	if a.logger == nil {
		a.logger = logging.NewNop()
	}
	if a.Name != "" {
		a.logger = a.logger.With("items", a.Name)
	}

	sessionOpts := []session.Option{session.WithLogger(a.logger)}
	if a.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(a.locker))
	}
	if a.lockTTL > 0 {
		sessionOpts = append(sessionOpts, session.WithLockTTL(a.lockTTL))
	}
	a.sessions = session.NewManager(a.store, sessionOpts...)

	return a, nil
}

// Build constructs a trial from the request, applies the registered measures and
// persists it under req.Key (default "<item>.<index>").
//
// Item resolution failures return domain.ErrItemNotFound; construction failures wrap
// domain.ErrInvalidArgument and are reported through OnTrialRejected.
func (a *Analyzer) Build(ctx context.Context, req ports.BuildRequest) (*domain.Trial, error) {
	item := req.Item
	if item == nil && req.ItemNumber != "" {
		var err error
		item, err = a.loader.GetItem(ctx, req.ItemNumber)
		if err != nil {
			return nil, err
		}
	}

	options := a.options
	if req.Options != nil {
		options = *req.Options
	}

	key := req.Key
	if key != "" {
		clean, err := validator.SanitizeKey(key)
		if err != nil {
			a.emit(ctx, a.hooks.OnTrialRejected, domain.EventTrialRejected, "", item, req.Fixations, nil, err)
			return nil, err
		}
		key = clean
	}
	if key == "" && item != nil {
		key = domain.TrialKey(item.Number, req.Index)
	}

	trial, err := domain.NewTrial(req.Index, req.Time, item, req.Fixations, domain.WithBuildOptions(options))
	if err != nil {
		a.emit(ctx, a.hooks.OnTrialRejected, domain.EventTrialRejected, key, item, req.Fixations, nil, err)
		a.logger.Debug("trial rejected", "trial_key", key, "err", err)
		return nil, err
	}
	assignRegions(trial)

	measured := a.measures.Len() > 0
	if measured {
		if err := a.measures.Apply(ctx, trial); err != nil {
			a.emit(ctx, a.hooks.OnTrialRejected, domain.EventTrialRejected, key, item, trial.Fixations, nil, err)
			return nil, err
		}
	}

	if err := a.sessions.Save(ctx, key, trial); err != nil {
		err = fmt.Errorf("failed to store trial %s: %w", key, err)
		a.emit(ctx, a.hooks.OnTrialRejected, domain.EventTrialRejected, key, item, trial.Fixations, nil, err)
		return nil, err
	}

	// Hooks only see trials that reached the store.
	a.emit(ctx, a.hooks.OnTrialBuilt, domain.EventTrialBuilt, key, item, trial.Fixations, trial, nil)
	if measured {
		a.emit(ctx, a.hooks.OnTrialMeasured, domain.EventTrialMeasured, key, item, trial.Fixations, trial, nil)
	}
	return trial, nil
}

// Measure re-runs the registered measures on a stored trial and saves the result.
func (a *Analyzer) Measure(ctx context.Context, key string) (*domain.Trial, error) {
	trial, err := a.sessions.Update(ctx, key, a.measures.Apply)
	if err != nil {
		return nil, err
	}
	a.emit(ctx, a.hooks.OnTrialMeasured, domain.EventTrialMeasured, key, trial.Item, trial.Fixations, trial, nil)
	return trial, nil
}

// Trial loads a stored trial.
func (a *Analyzer) Trial(ctx context.Context, key string) (*domain.Trial, error) {
	return a.sessions.Load(ctx, key)
}

// Trials lists the keys of stored trials.
func (a *Analyzer) Trials(ctx context.Context) ([]string, error) {
	return a.sessions.List(ctx)
}

// DeleteTrial removes a stored trial.
func (a *Analyzer) DeleteTrial(ctx context.Context, key string) error {
	return a.sessions.Delete(ctx, key)
}

// Items lists the available item numbers.
func (a *Analyzer) Items(ctx context.Context) ([]string, error) {
	return a.loader.ListItems(ctx)
}

// Item resolves one item.
func (a *Analyzer) Item(ctx context.Context, number string) (*domain.Item, error) {
	return a.loader.GetItem(ctx, number)
}

// Loader returns the underlying ItemLoader used by the analyzer.
func (a *Analyzer) Loader() ports.ItemLoader {
	return a.loader
}

// Store returns the underlying TrialStore used by the analyzer.
func (a *Analyzer) Store() ports.TrialStore {
	return a.store
}

// Measures returns the measure registry, so callers can register measures after New.
func (a *Analyzer) Measures() *registry.Registry {
	return a.measures
}

// assignRegions links each localized fixation without a region to the item region
// that contains it.
func assignRegions(t *domain.Trial) {
	for i := range t.Fixations {
		f := &t.Fixations[i]
		if f.Region != nil {
			continue
		}
		if p, ok := f.Position(); ok {
			f.Region = t.Item.RegionAt(p)
		}
	}
}

// StorageKey reports the key under which Build stored trial for req.
func StorageKey(req ports.BuildRequest, trial *domain.Trial) string {
	if req.Key != "" {
		if key, err := validator.SanitizeKey(req.Key); err == nil && key != "" {
			return key
		}
	}
	return trial.Key()
}

func (a *Analyzer) emit(ctx context.Context, hook func(context.Context, *domain.TrialEvent), typ domain.EventType,
	key string, item *domain.Item, fixations []domain.Fixation, trial *domain.Trial, err error) {
	if hook == nil {
		return
	}
	evt := &domain.TrialEvent{
		EventBase: domain.EventBase{
			Timestamp: time.Now(),
			Type:      typ,
			TrialKey:  key,
		},
		Fixations: len(fixations),
		Trial:     trial,
		Err:       err,
	}
	if item != nil {
		evt.ItemNumber = item.Number
	}
	for _, f := range fixations {
		if f.Excluded {
			evt.Excluded++
		}
	}
	if trial != nil {
		evt.Saccades = len(trial.Saccades)
	}
	hook(ctx, evt)
}
