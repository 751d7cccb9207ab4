package migrate

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeMigration(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestListFilesOrdersByVersion(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "20260901090100_second.sql", "-- +goose Up\n-- +goose Down\n")
	writeMigration(t, dir, "20260901090000_first.sql", "-- +goose Up\n-- +goose Down\n")
	writeMigration(t, dir, "README.md", "ignored")

	files, err := ListFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	require.Equal(t, int64(20260901090000), files[0].Version)
	require.Equal(t, "first", files[0].Name)
	require.Equal(t, "second", files[1].Name)
}

func TestValidateDirRejectsDuplicateVersionsAndMissingSections(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "20260901090000_a.sql", "-- +goose Up\n-- +goose Down\n")
	writeMigration(t, dir, "20260901090000_b.sql", "-- +goose Up\n-- +goose Down\n")
	require.ErrorContains(t, ValidateDir(dir), "duplicate migration version")

	dir = t.TempDir()
	writeMigration(t, dir, "20260901090000_a.sql", "-- +goose Up\nSELECT 1;\n")
	require.ErrorContains(t, ValidateDir(dir), "-- +goose Down")
}

func TestCreateAtRefusesVersionCollision(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 10, 1, 8, 30, 0, 0, time.UTC)

	path, err := createAt(dir, "  Add  Sales-Index ", now)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "20261001083000_add_sales_index.sql"), path)

	_, err = createAt(dir, "another", now)
	require.ErrorContains(t, err, "already used")

	_, err = createAt(dir, "!!!", now.Add(time.Second))
	require.Error(t, err)
}

func TestNewRunnerRequiresDB(t *testing.T) {
	_, err := NewRunner(nil, DefaultDir)
	require.Error(t, err)
}
