package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vinodismyname/sheetaudit/internal/security"
)

func TestDirSourceFetch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "budget.xlsx"), []byte("payload"), 0o644))

	src, err := NewDirSource([]string{dir}, 0)
	require.NoError(t, err)
	require.Len(t, src.Roots(), 1)

	data, err := src.Fetch(context.Background(), "budget.xlsx")
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), data)

	_, err = src.Fetch(context.Background(), "missing.xlsx")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = src.Fetch(context.Background(), "../budget.xlsx")
	require.ErrorIs(t, err, security.ErrNotAllowed)
}

func TestDirSourceSizeLimit(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "big.xlsx"), make([]byte, 32), 0o644))

	src, err := NewDirSource([]string{dir}, 16)
	require.NoError(t, err)
	_, err = src.Fetch(context.Background(), "big.xlsx")
	require.ErrorIs(t, err, ErrTooLarge)
}

func TestNewDirSourceRequiresDirs(t *testing.T) {
	_, err := NewDirSource(nil, 0)
	require.Error(t, err)
}

func TestFetchHonorsCanceledContext(t *testing.T) {
	src, err := NewDirSource([]string{t.TempDir()}, 0)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.Fetch(ctx, "any.xlsx")
	require.ErrorIs(t, err, context.Canceled)
}
