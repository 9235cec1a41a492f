package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/JustJay7/barangay-case-dashboard/internal/analytics"
	"github.com/JustJay7/barangay-case-dashboard/internal/cache"
	"github.com/JustJay7/barangay-case-dashboard/internal/cases"
	"github.com/JustJay7/barangay-case-dashboard/internal/csvio"
	"github.com/JustJay7/barangay-case-dashboard/internal/database"
	"github.com/JustJay7/barangay-case-dashboard/internal/metrics"
	"github.com/JustJay7/barangay-case-dashboard/internal/storage"
	"github.com/JustJay7/barangay-case-dashboard/pkg/logger"
	"gorm.io/gorm"
)

// MaxImportSize caps the CSV text read by one import.
const MaxImportSize = 10 << 20

// errNothingImported aborts the import write when no row was accepted.
var errNothingImported = errors.New("nothing imported")

// ErrImportTooLarge is returned when the CSV text exceeds MaxImportSize.
var ErrImportTooLarge = fmt.Errorf("CSV file is larger than %d bytes", MaxImportSize)

// Service is the case lifecycle: creation, edits, status changes, bulk
// operations and CSV transfer. Every mutation goes through the repository
// as one read-mutate-write step.
type Service struct {
	repo    *storage.Repository
	db      *gorm.DB
	cache   cache.Cache
	metrics *metrics.Metrics
	logger  *logger.Logger
	now     func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService builds the service. db is used for import history and may be nil.
func NewService(repo *storage.Repository, db *gorm.DB, c cache.Cache, m *metrics.Metrics, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		db:      db,
		cache:   c,
		metrics: m,
		logger:  log,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) today() string {
	return cases.Today(s.now())
}

// StorageType reports the store currently backing the case set.
func (s *Service) StorageType() string {
	return s.repo.StorageType()
}

func (s *Service) List(f cases.Filter) []cases.Case {
	return f.Apply(s.repo.Snapshot())
}

func (s *Service) Get(id string) (cases.Case, error) {
	c, ok := s.repo.Get(id)
	if !ok {
		return cases.Case{}, fmt.Errorf("%w: %s", cases.ErrNotFound, id)
	}
	return c, nil
}

// Recent returns the n most recently filed cases.
func (s *Service) Recent(n int) []cases.Case {
	return cases.Recent(s.repo.Snapshot(), n)
}

// Create validates d and stores it under a freshly generated identifier.
func (s *Service) Create(ctx context.Context, d cases.Draft) (cases.Case, error) {
	if err := d.Validate(); err != nil {
		return cases.Case{}, err
	}

	var created cases.Case
	err := s.repo.Mutate(ctx, func(all []cases.Case) ([]cases.Case, error) {
		t := d.Type
		if t == "" {
			t = cases.TypeOther
		}
		created = d.Build(cases.NextID(t, all, s.now()), s.today())
		return append(all, created), nil
	})
	if err != nil {
		return created, s.mutationError("create", err)
	}

	s.mutated("create")
	s.logger.Info("Case created", "id", created.ID, "type", created.Type)
	return created, nil
}

// Update applies an edit to one case.
func (s *Service) Update(ctx context.Context, id string, p cases.Patch) (cases.Case, error) {
	var updated cases.Case
	err := s.repo.Mutate(ctx, func(all []cases.Case) ([]cases.Case, error) {
		i := cases.IndexOf(all, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", cases.ErrNotFound, id)
		}
		c, err := p.Apply(all[i], s.today())
		if err != nil {
			return nil, err
		}
		all[i] = c
		updated = c
		return all, nil
	})
	if err != nil {
		return updated, s.mutationError("update", err)
	}

	s.mutated("update")
	return updated, nil
}

// UpdateStatus moves one case to status.
func (s *Service) UpdateStatus(ctx context.Context, id string, status cases.Status) (cases.Case, error) {
	if !status.IsValid() {
		return cases.Case{}, &cases.ValidationError{Field: "status", Message: "must be pending, ongoing, resolved or dismissed"}
	}

	var updated cases.Case
	err := s.repo.Mutate(ctx, func(all []cases.Case) ([]cases.Case, error) {
		i := cases.IndexOf(all, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", cases.ErrNotFound, id)
		}
		all[i] = cases.ApplyStatus(all[i], status, s.today())
		updated = all[i]
		return all, nil
	})
	if err != nil {
		return updated, s.mutationError("status", err)
	}

	s.mutated("status")
	s.logger.Info("Case status updated", "id", id, "status", status)
	return updated, nil
}

// Delete removes one case for good.
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.repo.Mutate(ctx, func(all []cases.Case) ([]cases.Case, error) {
		i := cases.IndexOf(all, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", cases.ErrNotFound, id)
		}
		return append(all[:i], all[i+1:]...), nil
	})
	if err != nil {
		return s.mutationError("delete", err)
	}

	s.mutated("delete")
	s.logger.Info("Case deleted", "id", id)
	return nil
}

// BulkUpdateStatus applies the single case status rule to every selected id
// independently. Unknown ids are skipped; the number of cases changed is returned.
func (s *Service) BulkUpdateStatus(ctx context.Context, ids []string, status cases.Status) (int, error) {
	if len(ids) == 0 {
		return 0, cases.ErrEmptySelection
	}
	if !status.IsValid() {
		return 0, &cases.ValidationError{Field: "status", Message: "must be pending, ongoing, resolved or dismissed"}
	}

	selected := toSet(ids)
	updated := 0
	err := s.repo.Mutate(ctx, func(all []cases.Case) ([]cases.Case, error) {
		today := s.today()
		for i := range all {
			if _, ok := selected[all[i].ID]; ok {
				all[i] = cases.ApplyStatus(all[i], status, today)
				updated++
			}
		}
		return all, nil
	})
	if err != nil {
		return updated, s.mutationError("bulk_status", err)
	}

	if skipped := len(selected) - updated; skipped > 0 {
		s.logger.Warn("Bulk status change skipped unknown cases", "skipped", skipped)
	}
	s.mutated("bulk_status")
	s.logger.Info("Bulk status change", "count", updated, "status", status)
	return updated, nil
}

// BulkDelete removes the selected cases once confirmation equals the number
// of selected ids. A mismatch returns ErrConfirmationMismatch and changes nothing.
func (s *Service) BulkDelete(ctx context.Context, ids []string, confirmation string) (int, error) {
	if len(ids) == 0 {
		return 0, cases.ErrEmptySelection
	}
	if strings.TrimSpace(confirmation) != strconv.Itoa(len(ids)) {
		return 0, cases.ErrConfirmationMismatch
	}

	selected := toSet(ids)
	removed := 0
	err := s.repo.Mutate(ctx, func(all []cases.Case) ([]cases.Case, error) {
		kept := all[:0]
		for _, c := range all {
			if _, ok := selected[c.ID]; ok {
				removed++
				continue
			}
			kept = append(kept, c)
		}
		return kept, nil
	})
	if err != nil {
		return removed, s.mutationError("bulk_delete", err)
	}

	s.mutated("bulk_delete")
	s.logger.Info("Bulk delete", "count", removed)
	return removed, nil
}

// Import parses CSV from r and appends every accepted row in one write.
// source names the upload in the import history. r is read to the end
// before the case set is locked, so a slow upload never blocks other writes.
func (s *Service) Import(ctx context.Context, r io.Reader, source string) (*csvio.ImportReport, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImportSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(data) > MaxImportSize {
		return nil, ErrImportTooLarge
	}

	var report *csvio.ImportReport
	err = s.repo.Mutate(ctx, func(all []cases.Case) ([]cases.Case, error) {
		var err error
		report, err = csvio.Import(bytes.NewReader(data), all, s.now())
		if err != nil {
			return nil, err
		}
		if len(report.Imported) == 0 {
			return nil, errNothingImported
		}
		return append(all, report.Imported...), nil
	})
	if err != nil && !errors.Is(err, errNothingImported) {
		if report == nil {
			return nil, err
		}
		s.recordImport(report, source)
		return report, s.mutationError("import", err)
	}

	s.metrics.ImportRows(len(report.Imported), len(report.Errors))
	if len(report.Imported) > 0 {
		s.mutated("import")
	}
	s.recordImport(report, source)
	s.logger.Info("CSV import finished",
		"batch_id", report.BatchID,
		"imported", len(report.Imported),
		"errors", len(report.Errors),
	)
	return report, nil
}

// Export writes the selected cases, or every case when ids is empty, as CSV.
func (s *Service) Export(w io.Writer, ids []string) (int, error) {
	all := s.repo.Snapshot()
	if len(ids) > 0 {
		selected := toSet(ids)
		filtered := all[:0]
		for _, c := range all {
			if _, ok := selected[c.ID]; ok {
				filtered = append(filtered, c)
			}
		}
		all = filtered
	}
	if err := csvio.Export(w, all); err != nil {
		return 0, fmt.Errorf("failed to export cases: %w", err)
	}
	return len(all), nil
}

// Summary returns chart data for the cases matching f, cached until the next
// mutation. The cache key carries the generation of the snapshot the summary
// was computed from, so a summary finished after a concurrent write is never
// served for the newer set.
func (s *Service) Summary(f cases.Filter) *analytics.Summary {
	all, generation := s.repo.VersionedSnapshot()
	key := cache.GenerateCacheKey(f, generation)
	if summary, found := s.cache.Get(key); found {
		return summary
	}

	summary := analytics.Summarize(f.Apply(all), s.now())
	if err := s.cache.Set(key, summary); err != nil {
		s.logger.Warn("Failed to cache summary", "key", key, "error", err)
	}
	return summary
}

// StatusTrend returns the per status chart of cases filed within rangeName.
func (s *Service) StatusTrend(rangeName string) ([]analytics.TrendPoint, error) {
	return analytics.StatusTrend(s.repo.Snapshot(), rangeName, s.now())
}

// Imports lists recorded import batches, newest first.
func (s *Service) Imports(page, limit int) ([]database.ImportLog, int64, error) {
	if s.db == nil {
		return []database.ImportLog{}, 0, nil
	}
	return database.ListImports(s.db, page, limit)
}

func (s *Service) recordImport(report *csvio.ImportReport, source string) {
	if s.db == nil {
		return
	}
	errs, err := json.Marshal(report.Errors)
	if err != nil {
		s.logger.Warn("Failed to encode import errors", "error", err)
	}
	entry := &database.ImportLog{
		BatchID:    report.BatchID,
		Source:     source,
		Imported:   len(report.Imported),
		Failed:     len(report.Errors),
		Errors:     string(errs),
		StoredIn:   s.repo.StorageType(),
		ImportedAt: s.now(),
	}
	if err := database.RecordImport(s.db, entry); err != nil {
		s.logger.Warn("Failed to record import", "error", err)
	}
}

// mutated runs after every successful write.
func (s *Service) mutated(op string) {
	s.cache.Clear()
	s.metrics.Mutation(op)
}

// mutationError logs persistence failures. The in-memory set has already
// changed in that case, so caches are dropped as well.
func (s *Service) mutationError(op string, err error) error {
	var verr *cases.ValidationError
	if errors.Is(err, cases.ErrNotFound) || errors.As(err, &verr) {
		return err
	}
	s.cache.Clear()
	s.logger.Error("Failed to persist cases", "operation", op, "error", err)
	return err
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
