package outbox

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/db/models"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Insert(tx *gorm.DB, event models.OutboxEvent) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	return tx.Create(&event).Error
}

// FetchUnpublishedForPublish returns the oldest pending rows still under the
// attempt ceiling. On Postgres the rows are locked so concurrent publishers
// skip them.
func (r *Repository) FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error) {
	if tx == nil {
		return nil, errors.New("transaction required")
	}
	query := tx.Where("published_at IS NULL")
	if maxAttempts > 0 {
		query = query.Where("attempt_count < ?", maxAttempts)
	}
	if tx.Dialector != nil && tx.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
	}

	var rows []models.OutboxEvent
	err := query.
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// PendingCount reports how many rows are still waiting to be published.
func (r *Repository) PendingCount(maxAttempts int) (int64, error) {
	var count int64
	query := r.db.Model(&models.OutboxEvent{}).Where("published_at IS NULL")
	if maxAttempts > 0 {
		query = query.Where("attempt_count < ?", maxAttempts)
	}
	err := query.Count(&count).Error
	return count, err
}

func (r *Repository) MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Model(&models.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"published_at": time.Now().UTC(),
		}).Error
}

func (r *Repository) MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error {
	return tx.Model(&models.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"last_error":    errorText(err),
			"attempt_count": gorm.Expr("attempt_count + 1"),
		}).Error
}

// MarkTerminalTx parks a row at the attempt ceiling so it is never fetched again.
func (r *Repository) MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error {
	return tx.Model(&models.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"last_error":    errorText(err),
			"attempt_count": terminalAttempts,
		}).Error
}

// DeleteSettledBefore removes rows created before cutoff that are either
// published or parked at terminalAttempts. Pending rows are never removed.
func (r *Repository) DeleteSettledBefore(tx *gorm.DB, cutoff time.Time, terminalAttempts int) (int64, error) {
	if tx == nil {
		return 0, errors.New("transaction required")
	}
	query := tx.Where("created_at < ?", cutoff)
	if terminalAttempts > 0 {
		query = query.Where("published_at IS NOT NULL OR attempt_count >= ?", terminalAttempts)
	} else {
		query = query.Where("published_at IS NOT NULL")
	}
	result := query.Delete(&models.OutboxEvent{})
	return result.RowsAffected, result.Error
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
