package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/JustJay7/barangay-case-dashboard/internal/cases"
	"github.com/JustJay7/barangay-case-dashboard/internal/metrics"
	"github.com/JustJay7/barangay-case-dashboard/pkg/logger"
)

// Repository holds the case set in memory and persists it through a primary
// store (the cases file, when available) and the fallback store. The
// fallback is written on every mutation whatever happens to the primary.
type Repository struct {
	primary  Store
	fallback Store
	logger   *logger.Logger
	metrics  *metrics.Metrics

	mu                 sync.RWMutex
	cases              []cases.Case
	active             string
	migrationAttempted bool
	// loadFailed is set when no store could be read. The in-memory set is
	// then empty only by accident, so writes are refused until a load succeeds.
	loadFailed bool
	// generation changes whenever the in-memory set is replaced or mutated.
	generation uint64
}

// NewRepository wires the stores. primary may be nil when the host cannot
// offer file storage; fallback is required.
func NewRepository(primary, fallback Store, log *logger.Logger, m *metrics.Metrics) *Repository {
	active := fallback.Name()
	if primary != nil {
		active = primary.Name()
	}
	return &Repository{
		primary:  primary,
		fallback: fallback,
		logger:   log,
		metrics:  m,
		cases:    []cases.Case{},
		active:   active,
	}
}

// HasPrimary reports whether a primary store was selected at start.
func (r *Repository) HasPrimary() bool {
	return r.primary != nil
}

// Init runs the one-shot migration and then loads the case set.
func (r *Repository) Init(ctx context.Context) (int, error) {
	migrated, err := r.Migrate(ctx)
	if err != nil {
		r.logger.Error("Migration from fallback store failed", "error", err)
	}
	return migrated, r.Load(ctx)
}

// Load replaces the in-memory set with the primary store's contents, or the
// fallback's when the primary is absent or unreadable. Corrupt data is
// treated as an empty set.
func (r *Repository) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.primary != nil {
		all, err := r.primary.Load(ctx)
		r.metrics.StorageLoad(r.primary.Name(), err)
		switch {
		case err == nil:
			r.replaceLocked(all, r.primary.Name())
			r.logger.Info("Cases loaded", "store", r.active, "count", len(all))
			return nil
		case errors.Is(err, ErrCorrupt):
			r.logger.Warn("Cases file is corrupt, starting with an empty set", "error", err)
			r.replaceLocked([]cases.Case{}, r.primary.Name())
			return nil
		default:
			r.logger.Error("Error loading from primary store, using fallback", "error", err)
		}
	}

	all, err := r.fallback.Load(ctx)
	r.metrics.StorageLoad(r.fallback.Name(), err)
	if errors.Is(err, ErrCorrupt) {
		r.logger.Warn("Fallback store is corrupt, starting with an empty set", "error", err)
		all, err = []cases.Case{}, nil
	}
	if err != nil {
		r.replaceLocked([]cases.Case{}, r.fallback.Name())
		r.loadFailed = true
		return fmt.Errorf("failed to load cases: %w", err)
	}

	r.replaceLocked(all, r.fallback.Name())
	r.logger.Info("Cases loaded", "store", r.active, "count", len(all))
	return nil
}

// Migrate copies records that exist only in the fallback store into the
// primary store, keyed by identifier. Primary records are never overwritten.
// It runs at most once per Repository; later calls return 0.
func (r *Repository) Migrate(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.migrationAttempted {
		return 0, nil
	}
	r.migrationAttempted = true

	if r.primary == nil {
		r.logger.Debug("No primary store, skipping migration")
		return 0, nil
	}

	saved, err := r.fallback.Load(ctx)
	if errors.Is(err, ErrCorrupt) {
		r.logger.Warn("Fallback store is corrupt, nothing to migrate", "error", err)
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read fallback store: %w", err)
	}
	if len(saved) == 0 {
		r.logger.Debug("No data in fallback store to migrate")
		return 0, nil
	}

	current, err := r.primary.Load(ctx)
	if errors.Is(err, ErrCorrupt) {
		current = []cases.Case{}
	} else if err != nil {
		return 0, fmt.Errorf("failed to read primary store: %w", err)
	}

	known := make(map[string]struct{}, len(current))
	for _, c := range current {
		known[c.ID] = struct{}{}
	}
	var fresh []cases.Case
	for _, c := range saved {
		if _, ok := known[c.ID]; ok {
			continue
		}
		known[c.ID] = struct{}{}
		fresh = append(fresh, c)
	}
	if len(fresh) == 0 {
		r.logger.Debug("No new cases to add from fallback store")
		return 0, nil
	}

	merged := append(append([]cases.Case{}, current...), fresh...)
	err = r.primary.Save(ctx, merged)
	r.metrics.StorageWrite(r.primary.Name(), err)
	if err != nil {
		return 0, fmt.Errorf("failed to save migrated cases: %w", err)
	}

	r.metrics.Migrated(len(fresh))
	r.logger.Info("Migrated cases from fallback store", "count", len(fresh), "total", len(merged))
	if r.active == r.primary.Name() {
		r.replaceLocked(merged, r.primary.Name())
	}
	return len(fresh), nil
}

// Snapshot returns a deep copy of the current set in stored order.
func (r *Repository) Snapshot() []cases.Case {
	all, _ := r.VersionedSnapshot()
	return all
}

// VersionedSnapshot returns a deep copy of the current set together with its
// generation. Two snapshots with the same generation hold the same cases.
func (r *Repository) VersionedSnapshot() ([]cases.Case, uint64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneAll(r.cases), r.generation
}

// Generation is the version of the in-memory set.
func (r *Repository) Generation() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.generation
}

// LoadFailed reports whether the last load could not read any store.
func (r *Repository) LoadFailed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loadFailed
}

// Get returns the case with the given id.
func (r *Repository) Get(id string) (cases.Case, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := cases.IndexOf(r.cases, id); i >= 0 {
		return r.cases[i].Clone(), true
	}
	return cases.Case{}, false
}

// StorageType is the store the current set was last loaded from or written to.
func (r *Repository) StorageType() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// Mutate applies fn to a copy of the set and persists the result. When fn
// fails nothing changes. When persisting fails the new set is still kept in
// memory and the error is returned. After a failed load Mutate returns
// ErrNotLoaded without calling fn.
func (r *Repository) Mutate(ctx context.Context, fn func([]cases.Case) ([]cases.Case, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loadFailed {
		return ErrNotLoaded
	}

	next, err := fn(cloneAll(r.cases))
	if err != nil {
		return err
	}
	if next == nil {
		next = []cases.Case{}
	}
	r.cases = next
	r.generation++
	r.metrics.CasesStored(len(next))

	return r.persistLocked(ctx)
}

func (r *Repository) persistLocked(ctx context.Context) error {
	var primaryErr error
	if r.primary != nil {
		primaryErr = r.primary.Save(ctx, r.cases)
		r.metrics.StorageWrite(r.primary.Name(), primaryErr)
		if primaryErr != nil {
			r.logger.Error("Error saving to primary store", "error", primaryErr)
		} else {
			r.active = r.primary.Name()
		}
	}

	fallbackErr := r.fallback.Save(ctx, r.cases)
	r.metrics.StorageWrite(r.fallback.Name(), fallbackErr)
	if fallbackErr == nil {
		return nil
	}

	r.logger.Error("Error saving to fallback store", "error", fallbackErr)
	if r.primary != nil && primaryErr == nil {
		return nil
	}
	return fmt.Errorf("failed to persist cases: %w", errors.Join(primaryErr, fallbackErr))
}

func (r *Repository) replaceLocked(all []cases.Case, store string) {
	r.cases = all
	r.active = store
	r.loadFailed = false
	r.generation++
	r.metrics.CasesStored(len(all))
}

func cloneAll(all []cases.Case) []cases.Case {
	out := make([]cases.Case, len(all))
	for i, c := range all {
		out[i] = c.Clone()
	}
	return out
}
