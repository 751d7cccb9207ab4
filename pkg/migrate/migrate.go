package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"

	"github.com/pressly/goose/v3"
)

// DefaultDir holds the Postgres migrations. SQLite builds its schema on open.
const DefaultDir = "pkg/migrate/migrations"

// Runner applies the migrations in one directory against one database.
type Runner struct {
	provider *goose.Provider
}

func NewRunner(db *sql.DB, dir string) (*Runner, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	if dir == "" {
		return nil, fmt.Errorf("dir is required")
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, db, os.DirFS(dir))
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	return &Runner{provider: provider}, nil
}

// Exec runs up, down or status and returns one line per migration touched.
func (r *Runner) Exec(ctx context.Context, command string) ([]string, error) {
	switch command {
	case "up":
		results, err := r.provider.Up(ctx)
		return describeResults(results), wrap("up", err)
	case "down":
		result, err := r.provider.Down(ctx)
		if result == nil {
			return nil, wrap("down", err)
		}
		return describeResults([]*goose.MigrationResult{result}), wrap("down", err)
	case "status":
		statuses, err := r.provider.Status(ctx)
		if err != nil {
			return nil, wrap("status", err)
		}
		lines := make([]string, 0, len(statuses))
		for _, st := range statuses {
			line := fmt.Sprintf("%d %s %s", st.Source.Version, st.State, st.Source.Path)
			if !st.AppliedAt.IsZero() {
				line += " applied_at=" + st.AppliedAt.UTC().Format("2006-01-02T15:04:05Z")
			}
			lines = append(lines, line)
		}
		return lines, nil
	default:
		return nil, fmt.Errorf("unknown migrate command %q", command)
	}
}

// MigrateTo moves the schema up or down to the given YYYYMMDDHHMMSS version.
func (r *Runner) MigrateTo(ctx context.Context, targetVersion string) ([]string, error) {
	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}
	current, err := r.provider.GetDBVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("get db version: %w", err)
	}

	var results []*goose.MigrationResult
	switch {
	case current == target:
		return nil, nil
	case current < target:
		results, err = r.provider.UpTo(ctx, target)
	default:
		results, err = r.provider.DownTo(ctx, target)
	}
	return describeResults(results), wrap(fmt.Sprintf("migrate to %d", target), err)
}

func describeResults(results []*goose.MigrationResult) []string {
	lines := make([]string, 0, len(results))
	for _, res := range results {
		if res == nil || res.Source == nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s %d %s (%s)", res.Direction, res.Source.Version, res.Source.Path, res.Duration))
	}
	return lines
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("goose %s: %w", op, err)
}
