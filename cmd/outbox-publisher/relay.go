package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/config"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/db/models"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/logger"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/metrics"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/outbox/registry"
)

const (
	publishTimeout = 15 * time.Second
	maxIdleBackoff = 10 * time.Second
	jitterWindow   = 250 * time.Millisecond
)

type txRunner interface {
	Ping(context.Context) error
	WithTx(context.Context, func(tx *gorm.DB) error) error
}

type outboxStore interface {
	FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error
	MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error
	MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error
}

type eventResolver interface {
	Resolve(models.OutboxEvent) (*registry.ResolvedEvent, error)
}

// topicSender publishes one message and waits for the server ack.
type topicSender interface {
	Send(ctx context.Context, topic string, msg *gcppubsub.Message) error
	Ping(context.Context) error
}

type RelayParams struct {
	Outbox   config.OutboxConfig
	Logger   *logger.Logger
	DB       txRunner
	Store    outboxStore
	Registry eventResolver
	Sender   topicSender
	Metrics  *metrics.OutboxMetrics
}

// Relay moves committed outbox rows to Pub/Sub.
type Relay struct {
	logg        *logger.Logger
	db          txRunner
	store       outboxStore
	registry    eventResolver
	sender      topicSender
	metrics     *metrics.OutboxMetrics
	batchSize   int
	maxAttempts int
	interval    time.Duration
}

func NewRelay(params RelayParams) (*Relay, error) {
	switch {
	case params.Logger == nil:
		return nil, errors.New("logger is required")
	case params.DB == nil:
		return nil, errors.New("database client is required")
	case params.Store == nil:
		return nil, errors.New("outbox repository is required")
	case params.Registry == nil:
		return nil, errors.New("event registry is required")
	case params.Sender == nil:
		return nil, errors.New("pubsub sender is required")
	}

	cfg := params.Outbox
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.PollIntervalMS <= 0 {
		cfg.PollIntervalMS = 500
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 10
	}

	return &Relay{
		logg:        params.Logger,
		db:          params.DB,
		store:       params.Store,
		registry:    params.Registry,
		sender:      params.Sender,
		metrics:     params.Metrics,
		batchSize:   cfg.BatchSize,
		maxAttempts: cfg.MaxAttempts,
		interval:    time.Duration(cfg.PollIntervalMS) * time.Millisecond,
	}, nil
}

// Run polls until ctx is canceled. A failing batch backs off exponentially;
// an empty batch waits one poll interval.
func (r *Relay) Run(ctx context.Context) error {
	for name, ping := range map[string]func(context.Context) error{"database": r.db.Ping, "pubsub": r.sender.Ping} {
		if err := ping(ctx); err != nil {
			return fmt.Errorf("%s ping failed: %w", name, err)
		}
	}

	wait := r.interval
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := r.drain(ctx)
		switch {
		case err != nil:
			r.logg.Error(ctx, "outbox.batch_failed", err)
			wait = min(wait*2, maxIdleBackoff)
		case n > 0:
			wait = r.interval
			continue
		default:
			wait = r.interval
		}

		if err := sleep(ctx, wait+rand.N(jitterWindow)); err != nil {
			return err
		}
	}
}

type disposition int

const (
	dispositionPublished disposition = iota
	dispositionRetry
	dispositionParked
)

// drain handles one locked batch and returns how many rows it saw.
func (r *Relay) drain(ctx context.Context) (int, error) {
	started := time.Now()
	var seen int
	err := r.db.WithTx(ctx, func(tx *gorm.DB) error {
		events, err := r.store.FetchUnpublishedForPublish(tx, r.batchSize, r.maxAttempts)
		if err != nil {
			return err
		}
		seen = len(events)
		for _, event := range events {
			if err := r.settle(ctx, tx, event); err != nil {
				return err
			}
		}
		return nil
	})
	if seen > 0 {
		r.metrics.ObserveBatch(time.Since(started))
	}
	return seen, err
}

// settle publishes one row and records the outcome on it. Only a failure to
// record the outcome aborts the batch.
func (r *Relay) settle(ctx context.Context, tx *gorm.DB, event models.OutboxEvent) error {
	fields := map[string]any{
		"outbox_id":      event.ID.String(),
		"event_type":     event.EventType,
		"aggregate_type": event.AggregateType,
		"aggregate_id":   event.AggregateID,
		"attempt_count":  event.AttemptCount,
	}

	outcome, pubErr := r.publish(ctx, event, fields)
	logCtx := r.logg.WithFields(ctx, fields)
	eventType := string(event.EventType)

	switch outcome {
	case dispositionPublished:
		if err := r.store.MarkPublishedTx(tx, event.ID); err != nil {
			return fmt.Errorf("mark published %s: %w", event.ID, err)
		}
		r.metrics.IncPublished(eventType)
		r.logg.Info(logCtx, "outbox.published")
	case dispositionRetry:
		r.metrics.IncFailed(eventType)
		r.logg.Warn(r.logg.WithField(logCtx, "error", pubErr.Error()), "outbox.publish_failed")
		if err := r.store.MarkFailedTx(tx, event.ID, pubErr); err != nil {
			return fmt.Errorf("mark failure %s: %w", event.ID, err)
		}
	case dispositionParked:
		r.metrics.IncFailed(eventType)
		r.logg.Warn(r.logg.WithField(logCtx, "error", pubErr.Error()), "outbox.parked")
		if err := r.store.MarkTerminalTx(tx, event.ID, pubErr, r.maxAttempts); err != nil {
			return fmt.Errorf("mark terminal %s: %w", event.ID, err)
		}
	}
	return nil
}

func (r *Relay) publish(ctx context.Context, event models.OutboxEvent, fields map[string]any) (disposition, error) {
	resolved, err := r.registry.Resolve(event)
	if err != nil {
		fields["terminal_reason"] = "non_retryable"
		return dispositionParked, err
	}
	fields["topic"] = resolved.Route.Topic
	fields["event_id"] = resolved.Envelope.EventID

	msg := &gcppubsub.Message{
		Data: event.Payload,
		Attributes: map[string]string{
			"event_id":       resolved.Envelope.EventID,
			"event_type":     string(event.EventType),
			"aggregate_type": string(event.AggregateType),
			"aggregate_id":   event.AggregateID,
			"created_at":     event.CreatedAt.UTC().Format(time.RFC3339Nano),
		},
	}

	sendCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	err = r.sender.Send(sendCtx, resolved.Route.Topic, msg)
	if err == nil {
		return dispositionPublished, nil
	}

	if registry.IsNonRetryable(err) {
		fields["terminal_reason"] = "non_retryable"
		return dispositionParked, err
	}
	if event.AttemptCount+1 >= r.maxAttempts {
		fields["terminal_reason"] = "max_attempts"
		return dispositionParked, fmt.Errorf("max publish attempts reached: %w", err)
	}
	return dispositionRetry, err
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
