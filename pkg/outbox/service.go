package outbox

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/db/models"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/enums"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/logger"
)

var (
	errNoTx          = errors.New("outbox: emit needs the caller's transaction")
	errNoAggregateID = errors.New("outbox: aggregate id required")
	errNoEventType   = errors.New("outbox: event type required")
)

// DomainEvent is a fact recorded alongside the business rows that caused it.
type DomainEvent struct {
	EventType     enums.OutboxEventType
	AggregateType enums.OutboxAggregateType
	AggregateID   string
	Actor         *ActorRef
	Data          any
	Version       int
	OccurredAt    time.Time
}

func (e DomainEvent) check() error {
	if !e.EventType.IsValid() {
		return errNoEventType
	}
	if strings.TrimSpace(e.AggregateID) == "" {
		return errNoAggregateID
	}
	return nil
}

// Service records domain events in the outbox table.
type Service struct {
	repo *Repository
	logg *logger.Logger
	ids  func() uuid.UUID
}

func NewService(repo *Repository, logg *logger.Logger) *Service {
	return &Service{repo: repo, logg: logg, ids: uuid.New}
}

// Emit inserts the event through tx. The row only becomes visible to the
// relay once the caller commits.
func (s *Service) Emit(ctx context.Context, tx *gorm.DB, event DomainEvent) error {
	if tx == nil {
		return errNoTx
	}
	if err := event.check(); err != nil {
		return err
	}

	id := s.ids()
	env, raw, err := seal(id.String(), event)
	if err != nil {
		return err
	}
	if err := s.repo.Insert(tx, models.OutboxEvent{
		ID:            id,
		EventType:     event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Payload:       raw,
	}); err != nil {
		return err
	}

	if s.logg != nil && ctx != nil {
		s.logg.Debug(s.logg.WithFields(ctx, map[string]any{
			"event_id":       env.EventID,
			"event_type":     event.EventType,
			"aggregate_type": event.AggregateType,
			"aggregate_id":   event.AggregateID,
		}), "outbox.queued")
	}
	return nil
}
