package orders

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/db/models"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/pagination"
)

// Repository defines persistence operations for order tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateInstance(ctx context.Context, instance *models.MenuItemInstance) error
	CreateInstanceComponent(ctx context.Context, component *models.InstanceComponent) error
	FindMenuItem(ctx context.Context, id int64) (*models.MenuItem, error)
	FindOrder(ctx context.Context, id int64) (*OrderDetail, error)
	ListOrders(ctx context.Context, params pagination.Params) (*OrderList, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) CreateInstance(ctx context.Context, instance *models.MenuItemInstance) error {
	return r.db.WithContext(ctx).Create(instance).Error
}

func (r *repository) CreateInstanceComponent(ctx context.Context, component *models.InstanceComponent) error {
	return r.db.WithContext(ctx).Create(component).Error
}

// FindMenuItem returns nil without error when the row does not exist.
func (r *repository) FindMenuItem(ctx context.Context, id int64) (*models.MenuItem, error) {
	var item models.MenuItem
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindOrder(ctx context.Context, id int64) (*OrderDetail, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}

	var instances []models.MenuItemInstance
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", id).
		Order("id ASC").
		Find(&instances).Error; err != nil {
		return nil, err
	}

	detail := &OrderDetail{
		ID:        order.ID,
		Price:     order.Price,
		Date:      order.Date,
		CashierID: order.CashierID,
		Items:     make([]InstanceDetail, 0, len(instances)),
	}
	if len(instances) == 0 {
		return detail, nil
	}

	ids := make([]int64, len(instances))
	for i, inst := range instances {
		ids[i] = inst.ID
	}
	var comps []models.InstanceComponent
	if err := r.db.WithContext(ctx).
		Where("item_instance_id IN ?", ids).
		Order("id ASC").
		Find(&comps).Error; err != nil {
		return nil, err
	}
	byInstance := make(map[int64][]int64, len(instances))
	for _, c := range comps {
		byInstance[c.ItemInstanceID] = append(byInstance[c.ItemInstanceID], c.ItemComponentID)
	}

	for _, inst := range instances {
		components := byInstance[inst.ID]
		if components == nil {
			components = []int64{}
		}
		detail.Items = append(detail.Items, InstanceDetail{
			ID:            inst.ID,
			MenuItemID:    inst.MenuItemID,
			InstanceCount: inst.InstanceCount,
			Price:         inst.Price,
			Components:    components,
		})
	}
	return detail, nil
}

func (r *repository) ListOrders(ctx context.Context, params pagination.Params) (*OrderList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	q := r.db.WithContext(ctx).
		Table("orders AS o").
		Select("o.id, o.price, o.date, o.cashier_id, (SELECT COUNT(*) FROM menu_item_instance mi WHERE mi.order_id = o.id) AS item_count").
		Order("o.id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))
	if cursor != nil {
		q = q.Where("o.id < ?", cursor.ID)
	}

	var rows []OrderSummary
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}

	list := &OrderList{}
	list.Orders, list.NextCursor = pagination.Page(rows, params.Limit, func(o OrderSummary) int64 { return o.ID })
	return list, nil
}
