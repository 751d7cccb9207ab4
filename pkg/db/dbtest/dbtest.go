// Package dbtest opens isolated in-memory SQLite clients for package tests.
package dbtest

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/db"
)

// New returns a client backed by a fresh shared-cache memory database with
// foreign keys enforced and the full schema applied.
func New(t *testing.T) *db.Client {
	t.Helper()

	name := strings.ReplaceAll(uuid.NewString(), "-", "")
	dsn := fmt.Sprintf("file:pos_%s?mode=memory&cache=shared&_foreign_keys=on", name)

	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	client := db.NewFromConn(conn)
	if err := client.ApplySQLiteSchema(context.Background()); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}
