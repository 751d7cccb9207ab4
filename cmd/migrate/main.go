package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/config"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/db"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/logger"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/migrate"
)

type options struct {
	command string
	dir     string
	name    string
	target  string
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.StringVar(&opts.command, "cmd", "up", "up|down|status|version|create|validate")
	fs.StringVar(&opts.dir, "dir", migrate.DefaultDir, "goose migrations directory")
	fs.StringVar(&opts.name, "name", "", "migration name for -cmd=create")
	fs.StringVar(&opts.target, "version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	switch {
	case opts.command == "create" && opts.name == "":
		return options{}, fmt.Errorf("-cmd=create needs -name")
	case opts.command == "version" && opts.target == "":
		return options{}, fmt.Errorf("-cmd=version needs -version")
	}
	return opts, nil
}

func main() {
	_ = godotenv.Load()

	opts, err := parseFlags(os.Args[1:])
	if err == nil {
		err = run(context.Background(), opts, os.Stdout)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, out io.Writer) error {
	switch opts.command {
	case "create":
		path, err := migrate.CreateSQLMigration(opts.dir, opts.name)
		if err != nil {
			return fmt.Errorf("create migration: %w", err)
		}
		fmt.Fprintln(out, "created", path)
		return nil
	case "validate":
		if err := migrate.ValidateDir(opts.dir); err != nil {
			return fmt.Errorf("validate %s: %w", opts.dir, err)
		}
		fmt.Fprintln(out, "migrations ok")
		return nil
	}
	return runAgainstDatabase(ctx, opts, out)
}

func runAgainstDatabase(ctx context.Context, opts options, out io.Writer) (err error) {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	// SQLite builds its schema when the client opens.
	if cfg.FeatureFlags.UseSQLite {
		return fmt.Errorf("goose migrations only run against postgres")
	}

	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "cmd": opts.command, "dir": opts.dir})

	dbClient, err := db.New(ctx, cfg.DB, false, logg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		return fmt.Errorf("sql handle: %w", err)
	}
	runner, err := migrate.NewRunner(sqlDB, opts.dir)
	if err != nil {
		return err
	}

	var applied []string
	if opts.command == "version" {
		applied, err = runner.MigrateTo(ctx, opts.target)
	} else {
		applied, err = runner.Exec(ctx, opts.command)
	}
	for _, line := range applied {
		fmt.Fprintln(out, line)
	}
	if err != nil {
		return err
	}
	logg.Info(logg.WithField(ctx, "migrations", len(applied)), "migrate.completed")
	return nil
}
