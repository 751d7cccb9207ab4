package sales

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DailySales is one row of the sales report.
type DailySales struct {
	SalesDate  string          `gorm:"column:sales_date" json:"sales_date"`
	TotalSales decimal.Decimal `gorm:"column:total_sales" json:"total_sales"`
	OrderCount int64           `gorm:"column:order_count" json:"order_count"`
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Daily sums order prices per UTC calendar day in [from, to).
// Zero bounds are open.
func (r *Repository) Daily(ctx context.Context, from, to time.Time) ([]DailySales, error) {
	day := dayExpr(r.db.Dialector.Name())
	query := r.db.WithContext(ctx).
		Table("orders").
		Select(day + " AS sales_date, SUM(price) AS total_sales, COUNT(*) AS order_count")
	if !from.IsZero() {
		query = query.Where("date >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("date < ?", to)
	}

	var rows []DailySales
	if err := query.Group(day).Order("sales_date ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func dayExpr(dialect string) string {
	if dialect == "postgres" {
		return "TO_CHAR(date AT TIME ZONE 'UTC', 'YYYY-MM-DD')"
	}
	return "strftime('%Y-%m-%d', date)"
}
