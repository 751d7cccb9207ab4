// Package logger wraps zerolog so request-scoped fields ride along on the
// context instead of being threaded through every call.
package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/env"
)

const (
	envLogFormat  = "POS_LOG_FORMAT"
	envLogNoColor = "POS_LOG_NO_COLOR"
)

type Options struct {
	ServiceName string
	Level       zerolog.Level
	// WarnStack attaches a goroutine stack to warn entries as well as errors.
	WarnStack bool
	Output    io.Writer
}

type Logger struct {
	root      zerolog.Logger
	warnStack bool
}

func New(opts Options) *Logger {
	if opts.Level == zerolog.NoLevel {
		opts.Level = zerolog.InfoLevel
	}
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if strings.EqualFold(env.String(envLogFormat, "json"), "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen, NoColor: env.Bool(envLogNoColor, false)}
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano

	return &Logger{
		root: zerolog.New(out).Level(opts.Level).With().
			Timestamp().
			Str("service", opts.ServiceName).
			Logger(),
		warnStack: opts.WarnStack,
	}
}

// ParseLevel accepts any zerolog level name, case-insensitively. Blank or
// unknown input yields info.
func ParseLevel(value string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(value)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// entry returns the logger stored on ctx, falling back to the root logger.
func (l *Logger) entry(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if scoped := zerolog.Ctx(ctx); scoped.GetLevel() != zerolog.Disabled {
			return scoped
		}
	}
	return &l.root
}

func (l *Logger) extend(ctx context.Context, apply func(zerolog.Context) zerolog.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	scoped := apply(l.entry(ctx).With()).Logger()
	return scoped.WithContext(ctx)
}

func (l *Logger) WithField(ctx context.Context, key string, value any) context.Context {
	return l.extend(ctx, func(c zerolog.Context) zerolog.Context { return c.Interface(key, value) })
}

func (l *Logger) WithFields(ctx context.Context, fields map[string]any) context.Context {
	return l.extend(ctx, func(c zerolog.Context) zerolog.Context { return c.Fields(fields) })
}

func (l *Logger) WithRequestID(ctx context.Context, requestID string) context.Context {
	return l.WithField(ctx, "request_id", requestID)
}

func (l *Logger) WithEmployeeID(ctx context.Context, employeeID int64) context.Context {
	return l.extend(ctx, func(c zerolog.Context) zerolog.Context { return c.Int64("employee_id", employeeID) })
}

func (l *Logger) WithOrderID(ctx context.Context, orderID int64) context.Context {
	return l.extend(ctx, func(c zerolog.Context) zerolog.Context { return c.Int64("order_id", orderID) })
}

func (l *Logger) WithActorRole(ctx context.Context, role string) context.Context {
	return l.WithField(ctx, "actor_role", role)
}

func (l *Logger) Debug(ctx context.Context, msg string) { l.entry(ctx).Debug().Msg(msg) }

func (l *Logger) Info(ctx context.Context, msg string) { l.entry(ctx).Info().Msg(msg) }

func (l *Logger) Warn(ctx context.Context, msg string) {
	ev := l.entry(ctx).Warn()
	if l.warnStack {
		ev.Str("stack", stack())
	}
	ev.Msg(msg)
}

// Error always carries a stack.
func (l *Logger) Error(ctx context.Context, msg string, err error) {
	l.entry(ctx).Error().Err(err).Str("stack", stack()).Msg(msg)
}

func stack() string {
	return strings.TrimSpace(string(debug.Stack()))
}
