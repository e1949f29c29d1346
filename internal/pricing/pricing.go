// Package pricing computes order totals against the menu config. It is pure:
// no clock, no I/O, no mutation of its inputs.
package pricing

import (
	"fmt"

	"ramen-kiosk/internal/model"

	"github.com/shopspring/decimal"
)

// ComputeTotal returns the fixed-point total for the order: the base price
// plus every chargeable topping. Free toppings (no price, or a non-positive
// one) contribute nothing.
//
// Callers are expected to have validated the order against the config
// already; a dangling reference here is a data error, not a user error, and
// is returned as such rather than silently priced at zero.
func ComputeTotal(cfg *model.Config, order *model.Order) (decimal.Decimal, error) {
	base, ok := cfg.Menu.BaseByID(order.Base)
	if !ok {
		return decimal.Zero, fmt.Errorf("pricing order with unvalidated base %d", order.Base)
	}

	total := base.Price
	for _, id := range order.Toppings {
		topping, ok := cfg.Menu.ToppingByID(id)
		if !ok {
			return decimal.Zero, fmt.Errorf("pricing order with unvalidated topping %d", id)
		}
		if topping.Chargeable() {
			total = total.Add(*topping.Price)
		}
	}

	return total.Round(2), nil
}
