package cron

import (
	"context"
	"fmt"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/db/models"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/logger"
)

type lowStockLister interface {
	LowStock(ctx context.Context) ([]models.Ingredient, error)
}

// LowStockReportJob logs every ingredient at or below its reorder level so
// the periodic inventory report does not depend on an order tripping it.
type LowStockReportJob struct {
	logg      *logger.Logger
	inventory lowStockLister
}

func NewLowStockReportJob(logg *logger.Logger, inventory lowStockLister) (*LowStockReportJob, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if inventory == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &LowStockReportJob{logg: logg, inventory: inventory}, nil
}

func (j *LowStockReportJob) Name() string { return "low-stock-report" }

func (j *LowStockReportJob) Run(ctx context.Context) error {
	rows, err := j.inventory.LowStock(ctx)
	if err != nil {
		return fmt.Errorf("list low stock: %w", err)
	}
	for _, row := range rows {
		j.logg.Warn(j.logg.WithFields(ctx, map[string]any{
			"ingredient_id": row.ID,
			"ingredient":    row.Name,
			"quantity":      row.Quantity.String(),
			"unit":          row.Unit,
			"reorder_level": row.ReorderLevel.String(),
		}), "inventory.low_stock")
	}
	j.logg.Info(j.logg.WithField(ctx, "count", len(rows)), "inventory.low_stock_report")
	return nil
}
