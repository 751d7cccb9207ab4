package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Nutrition holds the per-serving facts of an item component, stored as jsonb.
type Nutrition struct {
	ServingSize  *float64 `json:"serving_size,omitempty"`
	Calories     *float64 `json:"calories,omitempty"`
	FatCalories  *float64 `json:"fat_calories,omitempty"`
	TotalFat     *float64 `json:"total_fat,omitempty"`
	SaturatedFat *float64 `json:"saturated_fat,omitempty"`
	TransFat     *float64 `json:"trans_fat,omitempty"`
	Cholesterol  *float64 `json:"cholesterol,omitempty"`
	Sodium       *float64 `json:"sodium,omitempty"`
	Carbs        *float64 `json:"carbs,omitempty"`
	Fiber        *float64 `json:"fiber,omitempty"`
	Sugar        *float64 `json:"sugar,omitempty"`
	Protein      *float64 `json:"protein,omitempty"`
}

// Value encodes the facts as a JSON object.
func (n Nutrition) Value() (driver.Value, error) {
	b, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("nutrition: %w", err)
	}
	return string(b), nil
}

// Scan decodes a JSON object produced by Value or written by hand.
func (n *Nutrition) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*n = Nutrition{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("nutrition: unsupported scan type %T", value)
	}
	if len(raw) == 0 {
		*n = Nutrition{}
		return nil
	}
	var decoded Nutrition
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("nutrition: %w", err)
	}
	*n = decoded
	return nil
}

// Negative returns the name of the first negative fact, if any.
func (n Nutrition) Negative() (string, bool) {
	fields := []struct {
		name  string
		value *float64
	}{
		{"serving_size", n.ServingSize},
		{"calories", n.Calories},
		{"fat_calories", n.FatCalories},
		{"total_fat", n.TotalFat},
		{"saturated_fat", n.SaturatedFat},
		{"trans_fat", n.TransFat},
		{"cholesterol", n.Cholesterol},
		{"sodium", n.Sodium},
		{"carbs", n.Carbs},
		{"fiber", n.Fiber},
		{"sugar", n.Sugar},
		{"protein", n.Protein},
	}
	for _, f := range fields {
		if f.value != nil && *f.value < 0 {
			return f.name, true
		}
	}
	return "", false
}
