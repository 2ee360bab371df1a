package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/aretw0/sideeye/internal/logging"
	"github.com/aretw0/sideeye/pkg/domain"
	"github.com/aretw0/sideeye/pkg/ports"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager serialises access to stored trials, so that concurrent measure passes on the
// same trial do not overwrite each other.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.TrialStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger // Logger for internal events (like deferred errors)
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets how long a distributed lock is held before it expires on its own.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Manager over the given trial store.
func NewManager(store ports.TrialStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: 30 * time.Second,
		logger:  logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(key) after unlocking.
func (m *Manager) acquire(key string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		entry = &lockEntry{}
		m.locks[key] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, key)
	}
}

// Load retrieves a stored trial.
func (m *Manager) Load(ctx context.Context, key string) (*domain.Trial, error) {
	var trial *domain.Trial
	err := m.WithLock(ctx, key, func(ctx context.Context) error {
		var err error
		trial, err = m.store.Load(ctx, key)
		return err
	})
	return trial, err
}

// Save persists the trial.
func (m *Manager) Save(ctx context.Context, key string, trial *domain.Trial) error {
	return m.WithLock(ctx, key, func(ctx context.Context) error {
		return m.store.Save(ctx, key, trial)
	})
}

// Update loads the trial, applies fn and saves the result, all under the trial's lock.
// If fn fails nothing is saved.
func (m *Manager) Update(ctx context.Context, key string, fn func(context.Context, *domain.Trial) error) (*domain.Trial, error) {
	var trial *domain.Trial
	err := m.WithLock(ctx, key, func(ctx context.Context) error {
		loaded, err := m.store.Load(ctx, key)
		if err != nil {
			return err
		}
		if err := fn(ctx, loaded); err != nil {
			return err
		}
		if err := m.store.Save(ctx, key, loaded); err != nil {
			return fmt.Errorf("failed to save trial %s: %w", key, err)
		}
		trial = loaded
		return nil
	})
	return trial, err
}

// Delete removes the trial from the store.
func (m *Manager) Delete(ctx context.Context, key string) error {
	return m.WithLock(ctx, key, func(ctx context.Context) error {
		return m.store.Delete(ctx, key)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying trial store.
func (m *Manager) Store() ports.TrialStore {
	return m.store
}

// WithLock executes a function while holding the lock for the trial key.
func (m *Manager) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	entry := m.acquire(key)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(key)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, key, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"trial_key", key,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
