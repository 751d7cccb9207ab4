package enums

import "fmt"

// OutboxAggregateType names the entity an outbox event is about.
type OutboxAggregateType string

const (
	AggregateOrder      OutboxAggregateType = "order"
	AggregateIngredient OutboxAggregateType = "ingredient"
)

func (a OutboxAggregateType) IsValid() bool {
	for _, owner := range eventAggregates {
		if owner == a {
			return true
		}
	}
	return false
}

// OutboxEventType is the routing key of an outbox row. It doubles as the
// Pub/Sub event_type attribute.
type OutboxEventType string

const (
	EventOrderPlaced       OutboxEventType = "order.placed"
	EventInventoryLowStock OutboxEventType = "inventory.low_stock"
)

// eventAggregates pins each event type to the aggregate it may be raised on.
var eventAggregates = map[OutboxEventType]OutboxAggregateType{
	EventOrderPlaced:       AggregateOrder,
	EventInventoryLowStock: AggregateIngredient,
}

func (e OutboxEventType) IsValid() bool {
	_, ok := eventAggregates[e]
	return ok
}

// Aggregate returns the aggregate type e belongs to, or "" when e is unknown.
func (e OutboxEventType) Aggregate() OutboxAggregateType {
	return eventAggregates[e]
}

func ParseOutboxEventType(value string) (OutboxEventType, error) {
	if e := OutboxEventType(value); e.IsValid() {
		return e, nil
	}
	return "", fmt.Errorf("unknown outbox event type %q", value)
}
