package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/JustJay7/barangay-case-dashboard/internal/cases"
	"github.com/JustJay7/barangay-case-dashboard/pkg/logger"
)

// BackupSuffix is appended to the cases file path for the previous snapshot.
const BackupSuffix = ".backup"

// FileStore keeps the case set as one JSON document on disk. Before each
// write the current document is copied to path+BackupSuffix, so a single
// previous generation is retained.
type FileStore struct {
	path   string
	logger *logger.Logger
}

func NewFileStore(path string, log *logger.Logger) *FileStore {
	return &FileStore{path: path, logger: log}
}

func (f *FileStore) Name() string { return TypeFile }

// Path is the location of the cases document.
func (f *FileStore) Path() string { return f.path }

// Probe prepares the document: the directory is created, a missing file is
// initialised with an empty array and a file holding invalid JSON is reset.
func (f *FileStore) Probe(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	data, err := os.ReadFile(f.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		f.logger.Debug("Cases file does not exist, creating it", "path", f.path)
		if err := writeFileAtomic(f.path, []byte("[]")); err != nil {
			return fmt.Errorf("failed to initialize cases file: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to read cases file: %w", err)
	default:
		if !json.Valid(data) {
			f.logger.Warn("Cases file contains invalid JSON, resetting it", "path", f.path)
			if err := writeFileAtomic(f.path, []byte("[]")); err != nil {
				return fmt.Errorf("failed to reset cases file: %w", err)
			}
		}
	}

	file, err := os.OpenFile(f.path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("cases file is not readable and writable: %w", err)
	}
	return file.Close()
}

// Load reads the document. A missing file is an empty set.
func (f *FileStore) Load(ctx context.Context) ([]cases.Case, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []cases.Case{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cases file: %w", err)
	}
	return decodeCases(data)
}

// Save backs up the current document and writes all in its place.
func (f *FileStore) Save(ctx context.Context, all []cases.Case) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encodeCases(all)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	if _, err := os.Stat(f.path); err == nil {
		if err := copyFile(f.path, f.path+BackupSuffix); err != nil {
			return fmt.Errorf("failed to back up cases file: %w", err)
		}
		f.logger.Debug("Created backup", "path", f.path+BackupSuffix)
	}

	if err := writeFileAtomic(f.path, data); err != nil {
		return fmt.Errorf("failed to write cases file: %w", err)
	}
	f.logger.Debug("Cases saved to file", "path", f.path, "count", len(all))
	return nil
}

func encodeCases(all []cases.Case) ([]byte, error) {
	if all == nil {
		all = []cases.Case{}
	}
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode cases: %w", err)
	}
	return data, nil
}

func decodeCases(data []byte) ([]cases.Case, error) {
	var all []cases.Case
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if all == nil {
		all = []cases.Case{}
	}
	return all, nil
}

// writeFileAtomic streams to a temp file in the same directory and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
