package db

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/logger"
)

func TestQueryLoggerReportsSlowAndFailedQueries(t *testing.T) {
	buf := &bytes.Buffer{}
	ql := newQueryLogger(logger.New(logger.Options{ServiceName: "db-test", Output: buf}), 50*time.Millisecond)
	ctx := context.Background()
	sql := func() (string, int64) { return "SELECT 1", 1 }

	ql.Trace(ctx, time.Now(), sql, nil)
	if buf.Len() != 0 {
		t.Fatalf("fast query should not be logged: %s", buf.String())
	}

	ql.Trace(ctx, time.Now(), sql, gorm.ErrRecordNotFound)
	if buf.Len() != 0 {
		t.Fatalf("record not found should not be logged: %s", buf.String())
	}

	ql.Trace(ctx, time.Now().Add(-time.Second), sql, nil)
	if !strings.Contains(buf.String(), "db.slow_query") {
		t.Fatalf("expected slow query entry, got %s", buf.String())
	}

	buf.Reset()
	ql.Trace(ctx, time.Now(), sql, errors.New("relation does not exist"))
	if !strings.Contains(buf.String(), "db.query_failed") || !strings.Contains(buf.String(), "SELECT 1") {
		t.Fatalf("expected failure entry with sql, got %s", buf.String())
	}

	buf.Reset()
	ql.LogMode(gormlogger.Silent).Trace(ctx, time.Now(), sql, errors.New("boom"))
	if buf.Len() != 0 {
		t.Fatalf("silent mode should not log: %s", buf.String())
	}
}

func TestQueryLoggerWithoutServiceLogger(t *testing.T) {
	if newQueryLogger(nil, time.Second) != gormlogger.Discard {
		t.Fatalf("expected discard logger")
	}
}
