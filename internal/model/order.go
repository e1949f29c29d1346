package model

// Order is one kiosk user's in-progress selection. Topping order is insertion
// order and only meaningful for display.
type Order struct {
	Base       BaseID      `json:"base"`
	Toppings   []ToppingID `json:"toppings"`
	SpiceLevel int         `json:"spice_level"`
}

// Clone returns a deep copy so callers can hand the order across a boundary
// without sharing the toppings slice.
func (o *Order) Clone() Order {
	c := *o
	c.Toppings = make([]ToppingID, len(o.Toppings))
	copy(c.Toppings, o.Toppings)
	return c
}

// HasTopping reports whether the topping is currently part of the order.
func (o *Order) HasTopping(id ToppingID) bool {
	for _, t := range o.Toppings {
		if t == id {
			return true
		}
	}
	return false
}
