package consumer

import (
	"context"
	"errors"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/db/models"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/enums"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/logger"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/outbox"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/outbox/payloads"
)

type ingredientReader interface {
	FindByID(ctx context.Context, id int64) (*models.Ingredient, error)
}

type receiver interface {
	Receive(ctx context.Context, f func(context.Context, *pubsub.Message)) error
}

// EventClaims records which envelopes a consumer has already handled.
type EventClaims interface {
	Claim(ctx context.Context, consumer, eventID string) (bool, error)
	Release(ctx context.Context, consumer, eventID string) error
}

const consumerName = "restock"

// LowStockConsumer reads inventory.low_stock events and raises a restock
// alert for ingredients that are still at or below their reorder level.
type LowStockConsumer struct {
	repo         ingredientReader
	subscription receiver
	claims       EventClaims
	logg         *logger.Logger
}

// NewLowStockConsumer builds the consumer. claims may be nil, in which case
// redelivered events alert again.
func NewLowStockConsumer(repo ingredientReader, subscription receiver, claims EventClaims, logg *logger.Logger) (*LowStockConsumer, error) {
	if repo == nil {
		return nil, errors.New("inventory repository is required")
	}
	if subscription == nil {
		return nil, errors.New("inventory subscription is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &LowStockConsumer{repo: repo, subscription: subscription, claims: claims, logg: logg}, nil
}

// Run processes messages until the context is canceled or the subscription errors.
func (c *LowStockConsumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if c.process(ctx, msg) == outcomeRetry {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type outcome int

const (
	outcomeAck outcome = iota
	outcomeAlert
	outcomeRetry
)

func (c *LowStockConsumer) process(ctx context.Context, msg *pubsub.Message) outcome {
	fields := map[string]any{
		"message_id": msg.ID,
		"event_type": msg.Attributes["event_type"],
		"event_id":   msg.Attributes["event_id"],
	}
	logCtx := c.logg.WithFields(ctx, fields)

	if msg.Attributes["event_type"] != string(enums.EventInventoryLowStock) {
		c.logg.Info(logCtx, "skipping unrelated event")
		return outcomeAck
	}

	eventID, event, err := decodeLowStock(msg.Data)
	if err != nil {
		c.logg.Error(logCtx, "failed to decode low stock event", err)
		return outcomeAck
	}

	fields["ingredient_id"] = event.IngredientID
	if event.OrderID != nil {
		fields["order_id"] = *event.OrderID
	}
	logCtx = c.logg.WithFields(ctx, fields)

	claimed := false
	if c.claims != nil && eventID != "" {
		first, err := c.claims.Claim(logCtx, consumerName, eventID)
		switch {
		case err != nil:
			c.logg.Error(logCtx, "dedupe claim failed", err)
		case !first:
			c.logg.Info(logCtx, "duplicate event skipped")
			return outcomeAck
		default:
			claimed = true
		}
	}

	result := c.alert(logCtx, event)
	if result == outcomeRetry && claimed {
		if err := c.claims.Release(logCtx, consumerName, eventID); err != nil {
			c.logg.Error(logCtx, "dedupe release failed", err)
		}
	}
	return result
}

func (c *LowStockConsumer) alert(logCtx context.Context, event *payloads.LowStockEvent) outcome {
	current, err := c.repo.FindByID(logCtx, event.IngredientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.logg.Warn(logCtx, "ingredient no longer exists")
			return outcomeAck
		}
		c.logg.Error(logCtx, "inventory lookup failed", err)
		if isTransient(err) {
			return outcomeRetry
		}
		return outcomeAck
	}

	// A restock or manual adjustment may have landed after the event was queued.
	if !current.BelowReorder() {
		c.logg.Info(logCtx, "ingredient already restocked")
		return outcomeAck
	}

	c.logg.Warn(c.logg.WithFields(logCtx, map[string]any{
		"ingredient":    current.Name,
		"quantity":      current.Quantity.String(),
		"unit":          current.Unit,
		"reorder_level": current.ReorderLevel.String(),
	}), "inventory.restock_needed")
	return outcomeAlert
}

func decodeLowStock(data []byte) (string, *payloads.LowStockEvent, error) {
	envelope, err := outbox.OpenEnvelope(data)
	if err != nil {
		return "", nil, err
	}
	var event payloads.LowStockEvent
	if err := envelope.DecodeData(&event); err != nil {
		return "", nil, err
	}
	if event.IngredientID <= 0 {
		return "", nil, errors.New("ingredient_id is required")
	}
	return envelope.EventID, &event, nil
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	if pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 08: connection exception, 40: transaction rollback, 57P: operator intervention.
		return strings.HasPrefix(pgErr.Code, "08") || strings.HasPrefix(pgErr.Code, "40") || strings.HasPrefix(pgErr.Code, "57P")
	}
	return false
}
