package db

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
)

//go:embed schema_sqlite.sql
var sqliteSchema string

// ApplySQLiteSchema creates the tables the Postgres migrations define, in
// SQLite syntax. It is idempotent.
func (c *Client) ApplySQLiteSchema(ctx context.Context) error {
	if !c.IsSQLite() {
		return fmt.Errorf("sqlite schema requested on %s client", c.Driver())
	}
	for _, stmt := range strings.Split(sqliteSchema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if err := c.conn.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("apply sqlite schema: %w", err)
		}
	}
	return nil
}
