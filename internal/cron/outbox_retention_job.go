package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/logger"
)

const defaultOutboxRetention = 30 * 24 * time.Hour

type outboxPruner interface {
	DeleteSettledBefore(tx *gorm.DB, cutoff time.Time, terminalAttempts int) (int64, error)
}

type OutboxRetentionJobParams struct {
	Logger    *logger.Logger
	DB        txRunner
	Outbox    outboxPruner
	Retention time.Duration
	// TerminalAttempts is the publisher's attempt ceiling; rows parked there
	// are pruned alongside published ones.
	TerminalAttempts int
}

// OutboxRetentionJob removes outbox rows that no publisher will touch again.
type OutboxRetentionJob struct {
	logg             *logger.Logger
	db               txRunner
	outbox           outboxPruner
	retention        time.Duration
	terminalAttempts int
	now              func() time.Time
}

func NewOutboxRetentionJob(params OutboxRetentionJobParams) (*OutboxRetentionJob, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = defaultOutboxRetention
	}
	return &OutboxRetentionJob{
		logg:             params.Logger,
		db:               params.DB,
		outbox:           params.Outbox,
		retention:        retention,
		terminalAttempts: params.TerminalAttempts,
		now:              time.Now,
	}, nil
}

func (j *OutboxRetentionJob) Name() string { return "outbox-retention" }

func (j *OutboxRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)
	var deleted int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := j.outbox.DeleteSettledBefore(tx, cutoff, j.terminalAttempts)
		deleted = rows
		return err
	})
	if err != nil {
		return fmt.Errorf("outbox retention: %w", err)
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"rows_deleted": deleted,
	}), "outbox.pruned")
	return nil
}
