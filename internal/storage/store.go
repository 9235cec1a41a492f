package storage

import (
	"context"
	"errors"

	"github.com/JustJay7/barangay-case-dashboard/internal/cases"
)

// Store names reported to callers.
const (
	TypeFile         = "file"
	TypeLocalStorage = "localStorage"
)

// ErrCorrupt means a store held data that is not a JSON array of cases.
var ErrCorrupt = errors.New("stored case data is corrupt")

// ErrNotLoaded is returned by writes after no store could be read, so that an
// empty in-memory set never overwrites cases that are still on disk.
var ErrNotLoaded = errors.New("cases could not be loaded; refusing to overwrite stored data")

// Store persists the whole case set in one piece.
type Store interface {
	// Name is TypeFile or TypeLocalStorage.
	Name() string
	// Probe checks that the store can be read and written.
	Probe(ctx context.Context) error
	Load(ctx context.Context) ([]cases.Case, error)
	Save(ctx context.Context, all []cases.Case) error
}
