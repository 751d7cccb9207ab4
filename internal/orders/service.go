package orders

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/internal/ledger"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/db/models"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/enums"
	pkgerrors "github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/errors"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/logger"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/metrics"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/outbox"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/outbox/payloads"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type inventoryLedger interface {
	Apply(ctx context.Context, tx *gorm.DB, input ledger.Consumption) ([]ledger.Decrement, error)
	OrderUsage(ctx context.Context, orderID int64) ([]ledger.Usage, error)
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service places orders and reads order history.
type Service interface {
	SubmitOrder(ctx context.Context, input SubmitOrderInput) (int64, error)
	GetOrder(ctx context.Context, id int64) (*OrderDetail, error)
	ListOrders(ctx context.Context, params pagination.Params) (*OrderList, error)
}

// Options tunes order placement.
type Options struct {
	// EnforceComposition checks side/entree/drink counts against the stored menu item.
	EnforceComposition bool
	Now                func() time.Time
}

type service struct {
	tx      txRunner
	repo    Repository
	ledger  inventoryLedger
	outbox  outboxPublisher
	metrics *metrics.OrderMetrics
	logg    *logger.Logger
	opts    Options
}

// NewService builds the order service.
func NewService(
	tx txRunner,
	repo Repository,
	inventory inventoryLedger,
	publisher outboxPublisher,
	orderMetrics *metrics.OrderMetrics,
	logg *logger.Logger,
	opts Options,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if inventory == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &service{
		tx:      tx,
		repo:    repo,
		ledger:  inventory,
		outbox:  publisher,
		metrics: orderMetrics,
		logg:    logg,
		opts:    opts,
	}, nil
}

// SubmitOrder persists the order header, one instance per cart line, one
// instance component per selection, and the matching inventory decrements in
// a single transaction. Nothing is written when any step fails.
func (s *service) SubmitOrder(ctx context.Context, input SubmitOrderInput) (int64, error) {
	started := time.Now()

	orderID, lowStock, err := s.submit(ctx, input)
	s.metrics.ObserveSubmit(outcomeFor(err), time.Since(started))
	if err != nil {
		logCtx := s.logg.WithField(ctx, "error_code", string(errorCode(err)))
		if pkgerrors.IsPersistence(err) {
			s.logg.Error(logCtx, "order.submit_failed", err)
		} else {
			s.logg.Warn(logCtx, "order.rejected")
		}
		return 0, err
	}

	ctx = s.logg.WithOrderID(ctx, orderID)
	for _, dec := range lowStock {
		s.metrics.IncLowStock(dec.Name)
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"ingredient_id": dec.IngredientID,
			"ingredient":    dec.Name,
			"remaining":     dec.Remaining.String(),
			"reorder_level": dec.ReorderLevel.String(),
		}), "inventory.low_stock")
	}
	s.logg.Info(s.logg.WithField(ctx, "lines", len(input.Cart)), "order.submitted")
	return orderID, nil
}

func (s *service) submit(ctx context.Context, input SubmitOrderInput) (int64, []ledger.Decrement, error) {
	if input.TotalPrice == nil {
		return 0, nil, invalidCart("totalPrice is required", nil)
	}
	if !input.TotalPrice.IsPositive() {
		return 0, nil, invalidCart("totalPrice must be greater than zero", map[string]any{"price": input.TotalPrice.String()})
	}
	lines, err := Normalize(input.Cart)
	if err != nil {
		return 0, nil, err
	}

	var (
		orderID        int64
		lowStock       []ledger.Decrement
		componentCount int
		decrementCount int
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		placedAt := s.opts.Now().UTC()

		order := &models.Order{
			Price:     input.TotalPrice.Round(2),
			Date:      placedAt,
			CashierID: input.CashierID,
		}
		if err := repo.CreateOrder(ctx, order); err != nil {
			return storeError(err, "create order")
		}
		orderID = order.ID

		menuItems := map[int64]*models.MenuItem{}
		lowByIngredient := map[int64]int{}
		for i, line := range lines {
			if s.opts.EnforceComposition {
				item, ok := menuItems[line.MenuItemID]
				if !ok {
					found, err := repo.FindMenuItem(ctx, line.MenuItemID)
					if err != nil {
						return storeError(err, "load menu item")
					}
					if found == nil {
						return pkgerrors.New(pkgerrors.CodeReferentialGap, fmt.Sprintf("menu item %d does not exist", line.MenuItemID))
					}
					item = found
					menuItems[line.MenuItemID] = item
				}
				if err := checkComposition(i, line, item); err != nil {
					return err
				}
			}

			instance := &models.MenuItemInstance{
				OrderID:       orderID,
				MenuItemID:    line.MenuItemID,
				InstanceCount: line.Quantity,
				Price:         line.LinePrice.Round(2),
			}
			if err := repo.CreateInstance(ctx, instance); err != nil {
				return storeError(err, "create menu item instance")
			}

			for _, componentID := range line.Components {
				if err := repo.CreateInstanceComponent(ctx, &models.InstanceComponent{
					ItemInstanceID:  instance.ID,
					ItemComponentID: componentID,
					Portion:         1,
				}); err != nil {
					return storeError(err, "create instance component")
				}
				componentCount++

				decrements, err := s.ledger.Apply(ctx, tx, ledger.Consumption{
					OrderID:       orderID,
					InstanceID:    instance.ID,
					ComponentID:   componentID,
					InstanceCount: line.Quantity,
				})
				if err != nil {
					return storeError(err, "apply inventory decrement")
				}
				decrementCount += len(decrements)
				for _, dec := range decrements {
					if !dec.LowStock {
						continue
					}
					if idx, seen := lowByIngredient[dec.IngredientID]; seen {
						lowStock[idx] = dec
						continue
					}
					lowByIngredient[dec.IngredientID] = len(lowStock)
					lowStock = append(lowStock, dec)
				}
			}
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   strconv.FormatInt(orderID, 10),
			Actor:         actorFor(input.CashierID),
			OccurredAt:    placedAt,
			Data: payloads.OrderPlacedEvent{
				OrderID:        orderID,
				Price:          order.Price,
				CashierID:      input.CashierID,
				InstanceCount:  len(lines),
				ComponentCount: componentCount,
				PlacedAt:       placedAt,
			},
		}); err != nil {
			return storeError(err, "queue order event")
		}

		for _, dec := range lowStock {
			if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventInventoryLowStock,
				AggregateType: enums.AggregateIngredient,
				AggregateID:   strconv.FormatInt(dec.IngredientID, 10),
				Actor:         actorFor(input.CashierID),
				OccurredAt:    placedAt,
				Data: payloads.LowStockEvent{
					IngredientID: dec.IngredientID,
					Name:         dec.Name,
					Quantity:     dec.Remaining,
					ReorderLevel: dec.ReorderLevel,
					OrderID:      &orderID,
				},
			}); err != nil {
				return storeError(err, "queue low stock event")
			}
		}
		return nil
	})
	if err != nil {
		return 0, nil, err
	}

	s.metrics.AddDecrements(decrementCount)
	return orderID, lowStock, nil
}

// checkComposition holds a line to the stored menu item's limits. Appetizers
// are not limited.
func checkComposition(lineIndex int, line NormalizedLine, item *models.MenuItem) error {
	maxDrinks := 0
	if item.HasDrink {
		maxDrinks = 1
	}
	limits := []struct {
		role enums.SelectionRole
		max  int
	}{
		{enums.SelectionRoleSide, item.MaxSides},
		{enums.SelectionRoleEntree, item.MaxEntrees},
		{enums.SelectionRoleDrink, maxDrinks},
	}
	for _, limit := range limits {
		if got := line.RoleCounts[limit.role]; got > limit.max {
			return invalidCart(
				fmt.Sprintf("%s allows at most %d %s selections", item.Name, limit.max, limit.role),
				map[string]any{"line": lineIndex, "role": string(limit.role), "max": limit.max, "got": got},
			)
		}
	}
	return nil
}

func (s *service) GetOrder(ctx context.Context, id int64) (*OrderDetail, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id must be positive")
	}
	detail, err := s.repo.FindOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	if detail.InventoryUsage, err = s.ledger.OrderUsage(ctx, id); err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *service) ListOrders(ctx context.Context, params pagination.Params) (*OrderList, error) {
	list, err := s.repo.ListOrders(ctx, params)
	if err != nil {
		if errors.Is(err, pagination.ErrInvalidCursor) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return list, nil
}

func actorFor(cashierID *int64) *outbox.ActorRef {
	if cashierID == nil {
		return nil
	}
	return &outbox.ActorRef{EmployeeID: cashierID}
}

func errorCode(err error) pkgerrors.Code {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Code()
	}
	return pkgerrors.CodeInternal
}

func outcomeFor(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case IsInvalidCart(err):
		return metrics.OutcomeInvalidCart
	case IsReferentialGap(err):
		return metrics.OutcomeReferentialGap
	default:
		return metrics.OutcomePersistence
	}
}
