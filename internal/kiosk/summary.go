package kiosk

import (
	"fmt"

	"ramen-kiosk/internal/model"
	"ramen-kiosk/internal/pricing"

	"github.com/shopspring/decimal"
)

// SummaryLine is one priced item on the order review screen.
type SummaryLine struct {
	Name  string
	Price decimal.Decimal
}

// Summary is the itemised breakdown the review screen renders: the base and
// every chargeable topping, in display order, plus the total. Free toppings
// appear in the bowl but not on the bill.
type Summary struct {
	Lines []SummaryLine
	Total decimal.Decimal
}

// Summarize builds the review-screen breakdown for an order. The order must
// reference only ids present in the config's menu.
func Summarize(cfg *model.Config, order *model.Order) (*Summary, error) {
	base, ok := cfg.Menu.BaseByID(order.Base)
	if !ok {
		return nil, fmt.Errorf("summarising order with unknown base %d", order.Base)
	}

	summary := &Summary{
		Lines: []SummaryLine{{Name: base.Name, Price: base.Price}},
	}

	for _, id := range order.Toppings {
		topping, ok := cfg.Menu.ToppingByID(id)
		if !ok {
			return nil, fmt.Errorf("summarising order with unknown topping %d", id)
		}
		if topping.Chargeable() {
			summary.Lines = append(summary.Lines, SummaryLine{Name: topping.Name, Price: *topping.Price})
		}
	}

	total, err := pricing.ComputeTotal(cfg, order)
	if err != nil {
		return nil, err
	}
	summary.Total = total

	return summary, nil
}
