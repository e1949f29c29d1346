package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

func init() {
	// Menu prices travel as JSON numbers on the wire, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// BaseID identifies a base within a menu.
type BaseID int

// ToppingID identifies a topping within a menu.
type ToppingID int

// Base represents a selectable bowl base (e.g. rice, noodles).
type Base struct {
	ID       BaseID          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"image_url"`
}

// Topping represents an optional add-on. A nil or non-positive price means
// the topping is free of charge.
type Topping struct {
	ID       ToppingID        `json:"id"`
	Name     string           `json:"name"`
	Price    *decimal.Decimal `json:"price"`
	ImageURL string           `json:"image_url"`
}

// Chargeable reports whether selecting the topping adds to the order total.
func (t *Topping) Chargeable() bool {
	return t.Price != nil && t.Price.IsPositive()
}

// SpiceLevel represents one step on the ordered spice scale.
type SpiceLevel struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}

// Menu is the full catalogue a kiosk offers. List order is display order.
type Menu struct {
	Bases       []Base       `json:"bases"`
	Toppings    []Topping    `json:"toppings"`
	SpiceLevels []SpiceLevel `json:"spice_levels"`
}

// BaseByID returns the base with the given id, if present.
func (m *Menu) BaseByID(id BaseID) (*Base, bool) {
	for i := range m.Bases {
		if m.Bases[i].ID == id {
			return &m.Bases[i], true
		}
	}
	return nil, false
}

// ToppingByID returns the topping with the given id, if present.
func (m *Menu) ToppingByID(id ToppingID) (*Topping, bool) {
	for i := range m.Toppings {
		if m.Toppings[i].ID == id {
			return &m.Toppings[i], true
		}
	}
	return nil, false
}

// SpiceLevelAt returns the spice level entry with the given level, if present.
func (m *Menu) SpiceLevelAt(level int) (*SpiceLevel, bool) {
	for i := range m.SpiceLevels {
		if m.SpiceLevels[i].Level == level {
			return &m.SpiceLevels[i], true
		}
	}
	return nil, false
}

// Validate checks the menu's internal invariants: ids are unique within each
// list, prices are not negative, and the menu is not empty.
func (m *Menu) Validate() error {
	if len(m.Bases) == 0 {
		return fmt.Errorf("menu must contain at least one base")
	}
	if len(m.SpiceLevels) == 0 {
		return fmt.Errorf("menu must contain at least one spice level")
	}

	baseIDs := make(map[BaseID]struct{}, len(m.Bases))
	for _, b := range m.Bases {
		if _, ok := baseIDs[b.ID]; ok {
			return fmt.Errorf("duplicate base id %d", b.ID)
		}
		baseIDs[b.ID] = struct{}{}
		if b.Price.IsNegative() {
			return fmt.Errorf("base %d: negative price %s", b.ID, b.Price)
		}
	}

	toppingIDs := make(map[ToppingID]struct{}, len(m.Toppings))
	for _, t := range m.Toppings {
		if _, ok := toppingIDs[t.ID]; ok {
			return fmt.Errorf("duplicate topping id %d", t.ID)
		}
		toppingIDs[t.ID] = struct{}{}
	}

	levels := make(map[int]struct{}, len(m.SpiceLevels))
	for _, s := range m.SpiceLevels {
		if _, ok := levels[s.Level]; ok {
			return fmt.Errorf("duplicate spice level %d", s.Level)
		}
		levels[s.Level] = struct{}{}
	}

	return nil
}

// Config is the complete menu definition plus the order every kiosk cycle
// starts from. It is loaded once per server process and never mutated, so it
// is shared by reference across all sessions without synchronisation.
type Config struct {
	Menu         Menu  `json:"menu"`
	DefaultOrder Order `json:"default_order"`
}

// Validate checks the menu invariants and that the default order only
// references ids the menu defines.
func (c *Config) Validate() error {
	if err := c.Menu.Validate(); err != nil {
		return fmt.Errorf("invalid menu: %w", err)
	}
	if err := c.ValidateOrder(&c.DefaultOrder); err != nil {
		return fmt.Errorf("invalid default order: %w", err)
	}
	return nil
}

// ValidateOrder checks that every reference in the order resolves against the
// menu. This is the submission-boundary check; order mutation on the kiosk
// side is deliberately unvalidated.
func (c *Config) ValidateOrder(o *Order) error {
	if _, ok := c.Menu.BaseByID(o.Base); !ok {
		return fmt.Errorf("base %d: %w", o.Base, ErrUnknownBase)
	}
	for _, id := range o.Toppings {
		if _, ok := c.Menu.ToppingByID(id); !ok {
			return fmt.Errorf("topping %d: %w", id, ErrUnknownTopping)
		}
	}
	if _, ok := c.Menu.SpiceLevelAt(o.SpiceLevel); !ok {
		return fmt.Errorf("spice level %d: %w", o.SpiceLevel, ErrUnknownSpiceLevel)
	}
	return nil
}
