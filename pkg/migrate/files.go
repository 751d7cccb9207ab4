package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	fileNameRe = regexp.MustCompile(`^(\d{14})_([a-z0-9_]+)\.sql$`)
	slugRe     = regexp.MustCompile(`[^a-z0-9]+`)
)

// File is one goose SQL migration on disk.
type File struct {
	Version int64
	Name    string
	Path    string
}

// ListFiles returns the .sql migrations in dir ordered by version. Any .sql
// file not named YYYYMMDDHHMMSS_name.sql is an error.
func ListFiles(dir string) ([]File, error) {
	if dir == "" {
		return nil, fmt.Errorf("dir is required")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}

	var files []File
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".sql" {
			continue
		}
		m := fileNameRe.FindStringSubmatch(e.Name())
		if m == nil {
			return nil, fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", e.Name())
		}
		version, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("migration %q: %w", e.Name(), err)
		}
		files = append(files, File{Version: version, Name: m[2], Path: filepath.Join(dir, e.Name())})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Version < files[j].Version })
	return files, nil
}

// ValidateDir checks names, version uniqueness and that each file carries
// both goose sections.
func ValidateDir(dir string) error {
	files, err := ListFiles(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no migrations found in %q", dir)
	}
	for i, f := range files {
		if i > 0 && files[i-1].Version == f.Version {
			return fmt.Errorf("duplicate migration version %d in %q and %q", f.Version, files[i-1].Path, f.Path)
		}
		body, err := os.ReadFile(f.Path)
		if err != nil {
			return fmt.Errorf("read file %q: %w", f.Path, err)
		}
		for _, marker := range []string{"-- +goose Up", "-- +goose Down"} {
			if !strings.Contains(string(body), marker) {
				return fmt.Errorf("migration %q missing %q", filepath.Base(f.Path), marker)
			}
		}
	}
	return nil
}

// CreateSQLMigration writes an empty Up/Down migration stamped with the
// current UTC time and returns its path.
func CreateSQLMigration(dir, name string) (string, error) {
	return createAt(dir, name, time.Now().UTC())
}

func createAt(dir, name string, now time.Time) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	slug := strings.Trim(slugRe.ReplaceAllString(strings.ToLower(name), "_"), "_")
	if slug == "" {
		return "", fmt.Errorf("name %q results in empty sanitized filename", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	existing, err := ListFiles(dir)
	if err != nil {
		return "", err
	}
	version := now.Format("20060102150405")
	for _, f := range existing {
		if strconv.FormatInt(f.Version, 10) == version {
			return "", fmt.Errorf("migration version %s already used by %s", version, f.Path)
		}
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s.sql", version, slug))
	body := fmt.Sprintf("-- +goose Up\n-- +goose StatementBegin\n-- %[1]s\n-- +goose StatementEnd\n\n-- +goose Down\n-- +goose StatementBegin\n-- revert %[1]s\n-- +goose StatementEnd\n", slug)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("write migration %q: %w", path, err)
	}
	return path, nil
}
