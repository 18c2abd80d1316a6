package source

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/vinodismyname/sheetaudit/internal/security"
)

var (
	// ErrNotFound is returned when a name resolves to no document.
	ErrNotFound = errors.New("source: document not found")
	// ErrTooLarge is returned when a resolved file exceeds the configured size.
	ErrTooLarge = errors.New("source: document too large")
)

// Source resolves a workbook filename into its bytes.
type Source interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// DirSource serves workbooks from allow-listed local directories.
type DirSource struct {
	mgr      *security.Manager
	maxBytes int64
}

// NewDirSource builds a DirSource over dirs. maxBytes <= 0 disables the size check.
func NewDirSource(dirs []string, maxBytes int64) (*DirSource, error) {
	mgr, err := security.NewManager(dirs, nil)
	if err != nil {
		return nil, err
	}
	if err := mgr.ValidateConfig(); err != nil {
		return nil, err
	}
	return &DirSource{mgr: mgr, maxBytes: maxBytes}, nil
}

// Roots returns the canonical directories searched by Fetch.
func (s *DirSource) Roots() []string {
	return s.mgr.AllowedDirectories()
}

// Fetch reads the first allow-listed file named name.
func (s *DirSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.mgr.ResolveName(name)
	if err != nil {
		if errors.Is(err, security.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, err
	}
	if s.maxBytes > 0 {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("source: stat %s: %w", name, err)
		}
		if info.Size() > s.maxBytes {
			return nil, fmt.Errorf("source: %s is %d bytes, limit %d: %w", name, info.Size(), s.maxBytes, ErrTooLarge)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("source: read %s: %w", name, err)
	}
	return data, nil
}
