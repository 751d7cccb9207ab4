package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/db/dbtest"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/db/models"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/enums"
)

func TestEmitWritesEnvelopeInsideTransaction(t *testing.T) {
	client := dbtest.New(t)
	repo := NewRepository(client.DB())
	svc := NewService(repo, nil)

	employeeID := int64(3)
	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   "41",
			Actor:         &ActorRef{EmployeeID: &employeeID, Role: "cashier"},
			Data:          map[string]any{"order_id": 41},
		})
	})
	require.NoError(t, err)

	var rows []models.OutboxEvent
	require.NoError(t, client.DB().Find(&rows).Error)
	require.Len(t, rows, 1)
	require.Equal(t, "41", rows[0].AggregateID)
	require.Nil(t, rows[0].PublishedAt)
	require.True(t, rows[0].Pending(10))
	require.True(t, rows[0].Pending(0))

	var envelope Envelope
	require.NoError(t, json.Unmarshal(rows[0].Payload, &envelope))
	require.Equal(t, 1, envelope.Version)
	require.NotEmpty(t, envelope.EventID)
	require.NotNil(t, envelope.Actor)
	require.Equal(t, employeeID, *envelope.Actor.EmployeeID)
	require.JSONEq(t, `{"order_id":41}`, string(envelope.Data))
}

func TestEmitRollsBackWithCaller(t *testing.T) {
	client := dbtest.New(t)
	svc := NewService(NewRepository(client.DB()), nil)

	boom := errors.New("boom")
	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		if err := svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   "1",
			Data:          map[string]any{"order_id": 1},
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, client.DB().Model(&models.OutboxEvent{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestEmitValidatesInput(t *testing.T) {
	client := dbtest.New(t)
	svc := NewService(NewRepository(client.DB()), nil)

	require.Error(t, svc.Emit(context.Background(), nil, DomainEvent{AggregateID: "1"}))
	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, DomainEvent{EventType: enums.EventOrderPlaced})
	})
	require.Error(t, err)
}

func TestRepositoryPublishLifecycle(t *testing.T) {
	client := dbtest.New(t)
	repo := NewRepository(client.DB())
	svc := NewService(repo, nil)
	ctx := context.Background()

	for _, id := range []string{"1", "2"} {
		require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
			return svc.Emit(ctx, tx, DomainEvent{
				EventType:     enums.EventOrderPlaced,
				AggregateType: enums.AggregateOrder,
				AggregateID:   id,
				Data:          map[string]any{"id": id},
			})
		}))
	}

	var fetched []models.OutboxEvent
	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := repo.FetchUnpublishedForPublish(tx, 10, 3)
		fetched = rows
		return err
	}))
	require.Len(t, fetched, 2)

	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := repo.MarkPublishedTx(tx, fetched[0].ID); err != nil {
			return err
		}
		return repo.MarkFailedTx(tx, fetched[1].ID, errors.New("transient"))
	}))

	pending, err := repo.PendingCount(3)
	require.NoError(t, err)
	require.EqualValues(t, 1, pending)

	var failed models.OutboxEvent
	require.NoError(t, client.DB().First(&failed, "id = ?", fetched[1].ID).Error)
	require.Equal(t, 1, failed.AttemptCount)
	require.NotNil(t, failed.LastError)
	require.Equal(t, "transient", *failed.LastError)

	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		return repo.MarkTerminalTx(tx, fetched[1].ID, errors.New("gave up"), 3)
	}))
	pending, err = repo.PendingCount(3)
	require.NoError(t, err)
	require.Zero(t, pending)
}

func TestDeleteSettledBeforeKeepsPendingRows(t *testing.T) {
	client := dbtest.New(t)
	repo := NewRepository(client.DB())
	svc := NewService(repo, nil)
	ctx := context.Background()

	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
			return svc.Emit(ctx, tx, DomainEvent{
				EventType:     enums.EventOrderPlaced,
				AggregateType: enums.AggregateOrder,
				AggregateID:   id,
				Data:          map[string]any{"id": id},
			})
		}))
	}
	var rows []models.OutboxEvent
	require.NoError(t, client.DB().Order("aggregate_id").Find(&rows).Error)
	require.Len(t, rows, 3)

	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := repo.MarkPublishedTx(tx, rows[0].ID); err != nil {
			return err
		}
		return repo.MarkTerminalTx(tx, rows[1].ID, errors.New("gave up"), 5)
	}))

	var deleted int64
	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		n, err := repo.DeleteSettledBefore(tx, time.Now().Add(-48*time.Hour), 5)
		deleted = n
		return err
	}))
	require.Zero(t, deleted)

	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		n, err := repo.DeleteSettledBefore(tx, time.Now().Add(48*time.Hour), 5)
		deleted = n
		return err
	}))
	require.EqualValues(t, 2, deleted)

	var left []models.OutboxEvent
	require.NoError(t, client.DB().Find(&left).Error)
	require.Len(t, left, 1)
	require.Equal(t, "3", left[0].AggregateID)
}

func TestEmitRejectsIncompleteEvents(t *testing.T) {
	client := dbtest.New(t)
	svc := NewService(NewRepository(client.DB()), nil)

	cases := map[string]DomainEvent{
		"unknown type": {EventType: enums.OutboxEventType("order.voided"), AggregateType: enums.AggregateOrder, AggregateID: "1"},
		"no aggregate": {EventType: enums.EventOrderPlaced, AggregateType: enums.AggregateOrder},
	}
	for name, event := range cases {
		t.Run(name, func(t *testing.T) {
			err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
				return svc.Emit(context.Background(), tx, event)
			})
			require.Error(t, err)
		})
	}
	require.ErrorIs(t, svc.Emit(context.Background(), nil, DomainEvent{}), errNoTx)
}

func TestEnvelopeDecodeDataRejectsNull(t *testing.T) {
	env, err := OpenEnvelope([]byte(`{"version":1,"eventId":"e","data":null}`))
	require.NoError(t, err)
	var dst map[string]any
	require.ErrorIs(t, env.DecodeData(&dst), ErrEmptyPayload)

	_, err = OpenEnvelope([]byte(`{"data":`))
	require.Error(t, err)
}
