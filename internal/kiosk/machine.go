package kiosk

import (
	"fmt"
	"sync"
	"time"

	"ramen-kiosk/internal/model"

	"github.com/rs/zerolog"
)

// Stage is the kiosk's current position in the ordering cycle.
type Stage int

const (
	// MenuStage is the initial stage: browsing and building the order.
	MenuStage Stage = iota
	// OrderStage is the review-and-pay stage.
	OrderStage
	// CompleteStage is the post-payment thank-you stage; it returns to
	// MenuStage automatically after the reset delay.
	CompleteStage
)

func (s Stage) String() string {
	switch s {
	case MenuStage:
		return "menu"
	case OrderStage:
		return "order"
	case CompleteStage:
		return "order_complete"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// DefaultResetDelay is how long the completion stage stays up before the
// kiosk returns to the menu for the next customer.
const DefaultResetDelay = 5 * time.Second

// Submitter forwards a completed order to the server. *Conn satisfies it.
type Submitter interface {
	SubmitOrder(order *model.Order) error
}

// Scheduler runs a function after a delay. The production implementation is
// the wall clock; tests substitute a manual one.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func())
}

// timerScheduler schedules on the wall clock.
type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, fn func()) {
	time.AfterFunc(d, fn)
}

// StageListener is notified on every stage entry. The UI layer renders off
// these notifications.
type StageListener func(stage Stage)

// ErrStageLocked is returned for operations that are illegal in the current
// stage.
var ErrStageLocked = model.NewDomainError("STAGE_LOCKED", "operation not allowed in the current stage")

// Machine holds the draft order and the current stage, and drives the fixed
// cycle from menu through order and completion back to menu.
//
// The reset timer fires off the caller's goroutine, so the machine locks
// internally. Every stage entry bumps a generation counter; a scheduled
// reset remembers the generation it was scheduled under and is discarded if
// any other transition has happened since.
type Machine struct {
	cfg        *model.Config
	submitter  Submitter
	scheduler  Scheduler
	resetDelay time.Duration
	listener   StageListener
	logger     zerolog.Logger

	mu    sync.Mutex
	stage Stage
	gen   uint64
	order model.Order
}

// NewMachine creates a machine at the menu stage holding the config's
// default order.
func NewMachine(cfg *model.Config, submitter Submitter, logger zerolog.Logger) *Machine {
	return &Machine{
		cfg:        cfg,
		submitter:  submitter,
		scheduler:  timerScheduler{},
		resetDelay: DefaultResetDelay,
		logger:     logger.With().Str("component", "machine").Logger(),
		stage:      MenuStage,
		order:      cfg.DefaultOrder.Clone(),
	}
}

// SetResetDelay overrides how long the completion stage lasts. Call before
// driving the machine.
func (m *Machine) SetResetDelay(d time.Duration) {
	if d > 0 {
		m.resetDelay = d
	}
}

// OnStageChange registers the stage listener. Register before driving the
// machine. The listener runs with the machine locked and must not call back
// into it.
func (m *Machine) OnStageChange(fn StageListener) {
	m.listener = fn
}

// Stage returns the current stage.
func (m *Machine) Stage() Stage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stage
}

// Order returns a copy of the draft order.
func (m *Machine) Order() model.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order.Clone()
}

// SelectBase replaces the selected base. No menu validation happens here;
// that belongs to the submission boundary.
func (m *Machine) SelectBase(id model.BaseID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stage == CompleteStage {
		return ErrStageLocked
	}
	m.order.Base = id
	return nil
}

// ToggleTopping removes the topping if present, otherwise appends it. Two
// toggles of the same id restore the original membership, though a re-added
// topping moves to the end of display order.
func (m *Machine) ToggleTopping(id model.ToppingID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stage == CompleteStage {
		return ErrStageLocked
	}

	for i, t := range m.order.Toppings {
		if t == id {
			m.order.Toppings = append(m.order.Toppings[:i], m.order.Toppings[i+1:]...)
			return nil
		}
	}
	m.order.Toppings = append(m.order.Toppings, id)
	return nil
}

// SelectSpiceLevel replaces the selected spice level.
func (m *Machine) SelectSpiceLevel(level int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stage == CompleteStage {
		return ErrStageLocked
	}
	m.order.SpiceLevel = level
	return nil
}

// Proceed advances from the menu stage to the order stage.
func (m *Machine) Proceed() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stage != MenuStage {
		return ErrStageLocked
	}
	m.enter(OrderStage)
	return nil
}

// Pay submits the order and, on success, enters the completion stage and
// schedules the automatic return to the menu. If submission fails the
// machine stays at the order stage so the customer's selection is not lost.
func (m *Machine) Pay() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stage != OrderStage {
		return ErrStageLocked
	}

	order := m.order.Clone()
	if err := m.submitter.SubmitOrder(&order); err != nil {
		m.logger.Warn().Err(err).Msg("submission failed, staying at order stage")
		return fmt.Errorf("pay: %w", err)
	}

	m.enter(CompleteStage)

	gen := m.gen
	m.scheduler.AfterFunc(m.resetDelay, func() {
		m.autoReset(gen)
	})

	return nil
}

// Reset manually returns the machine to the menu stage, discarding the
// draft. Bumping the generation here also invalidates any pending
// auto-reset.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enter(MenuStage)
}

// autoReset is the deferred completion-to-menu transition. A firing whose
// generation is stale lost a race with a manual transition and is dropped.
func (m *Machine) autoReset(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.gen != gen {
		m.logger.Debug().
			Uint64("scheduled_gen", gen).
			Uint64("current_gen", m.gen).
			Msg("discarding stale auto reset")
		return
	}

	m.enter(MenuStage)
}

// enter transitions to a stage, bumps the generation, and applies entry side
// effects. Callers hold the lock.
func (m *Machine) enter(stage Stage) {
	m.stage = stage
	m.gen++

	if stage == MenuStage {
		m.order = m.cfg.DefaultOrder.Clone()
	}

	m.logger.Info().Str("stage", stage.String()).Msg("entered stage")

	if m.listener != nil {
		m.listener(stage)
	}
}
