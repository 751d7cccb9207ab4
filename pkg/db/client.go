// Package db owns the GORM connection pool shared by every repository.
package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/config"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Client struct {
	conn   *gorm.DB
	driver string
}

// Pinger is the health check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New opens the pool. With useSQLite the embedded store is used instead of
// Postgres and its schema is applied before New returns.
func New(ctx context.Context, cfg config.DBConfig, useSQLite bool, logg *logger.Logger) (*Client, error) {
	if cfg.DSN == "" {
		return nil, errors.New("db: dsn is required")
	}
	driver, dialector := DriverPostgres, postgres.New(postgres.Config{DSN: cfg.DSN, PreferSimpleProtocol: true})
	if useSQLite {
		driver, dialector = DriverSQLite, sqlite.Open(cfg.DSN)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 newQueryLogger(logg, cfg.SlowQueryThreshold),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("db: open %s: %w", driver, err)
	}
	client := &Client{conn: conn, driver: driver}
	if err := client.configurePool(cfg); err != nil {
		return nil, err
	}
	if useSQLite {
		if err := client.ApplySQLiteSchema(ctx); err != nil {
			return nil, errors.Join(err, client.Close())
		}
	}

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"driver":         driver,
			"max_open_conns": cfg.MaxOpenConns,
		}), "db.connected")
	}
	return client, nil
}

// NewFromConn wraps a handle opened elsewhere, e.g. by dbtest.
func NewFromConn(conn *gorm.DB) *Client {
	driver := DriverPostgres
	if conn != nil && conn.Dialector.Name() == DriverSQLite {
		driver = DriverSQLite
	}
	return &Client{conn: conn, driver: driver}
}

func (c *Client) configurePool(cfg config.DBConfig) error {
	pool, err := c.conn.DB()
	if err != nil {
		return fmt.Errorf("db: pool handle: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		pool.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		pool.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		pool.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		pool.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
	return nil
}

func (c *Client) DB() *gorm.DB { return c.conn }

func (c *Client) Driver() string { return c.driver }

func (c *Client) IsSQLite() bool { return c.driver == DriverSQLite }

func (c *Client) Ping(ctx context.Context) error {
	pool, err := c.conn.DB()
	if err != nil {
		return err
	}
	return pool.PingContext(ctx)
}

func (c *Client) Close() error {
	pool, err := c.conn.DB()
	if err != nil {
		return err
	}
	return pool.Close()
}

func (c *Client) Exec(ctx context.Context, query string, args ...any) *gorm.DB {
	return c.conn.WithContext(ctx).Exec(query, args...)
}

func (c *Client) Raw(ctx context.Context, query string, args ...any) *gorm.DB {
	return c.conn.WithContext(ctx).Raw(query, args...)
}

// WithTx runs fn in a transaction. fn's error or panic rolls it back; the
// panic is re-raised after the rollback.
func (c *Client) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) (err error) {
	tx := c.conn.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("db: begin: %w", tx.Error)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
		tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("db: commit: %w", err)
	}
	committed = true
	return nil
}
