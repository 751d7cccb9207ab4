package enums

import "fmt"

// MovementReason explains an inventory_movements row.
type MovementReason string

const (
	MovementReasonOrderConsumption MovementReason = "order_consumption"
	MovementReasonManualAdjustment MovementReason = "manual_adjustment"
)

func (r MovementReason) IsValid() bool {
	return r == MovementReasonOrderConsumption || r == MovementReasonManualAdjustment
}

// ParseMovementReason converts raw input into MovementReason.
func ParseMovementReason(value string) (MovementReason, error) {
	reason := MovementReason(value)
	if !reason.IsValid() {
		return "", fmt.Errorf("invalid movement reason %q", value)
	}
	return reason, nil
}
