// Package kiosk implements the client side of the ordering workflow: the
// server connection with its one-time config handshake, and the stage state
// machine driving one ordering cycle after another.
package kiosk

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"ramen-kiosk/internal/model"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// configRequestToken is the literal the kiosk sends to request the config.
const configRequestToken = "config"

// handshakeMaxElapsed bounds the initial connection attempts. Without a
// config the client has nothing to render, so startup fails rather than
// waiting forever.
const handshakeMaxElapsed = time.Minute

// SubmitErrorFunc is the contract point for the UI's "cannot submit order"
// state. It is called from the submitting goroutine.
type SubmitErrorFunc func(err error)

// Conn is the kiosk's persistent channel to the server. Writes are
// serialised internally; a failed submission triggers a background redial
// with backoff rather than ending the process.
type Conn struct {
	url           string
	logger        zerolog.Logger
	onSubmitError SubmitErrorFunc
	cancelRedial  context.CancelFunc
	redialCtx     context.Context

	mu        sync.Mutex
	ws        *websocket.Conn
	redialing bool
	closed    bool
}

// Dial opens the channel, retrying with exponential backoff. It fails only
// once the handshake window is exhausted, which is fatal to the caller.
func Dial(ctx context.Context, url string, logger zerolog.Logger) (*Conn, error) {
	redialCtx, cancel := context.WithCancel(context.Background())
	c := &Conn{
		url:          url,
		logger:       logger.With().Str("component", "conn").Str("url", url).Logger(),
		redialCtx:    redialCtx,
		cancelRedial: cancel,
	}

	ws, err := c.dial(ctx, handshakeMaxElapsed)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	c.ws = ws

	c.logger.Info().Msg("connected")
	return c, nil
}

// dial connects with exponential backoff. maxElapsed of zero retries
// indefinitely.
func (c *Conn) dial(ctx context.Context, maxElapsed time.Duration) (*websocket.Conn, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 30 * time.Second
	bo.MaxElapsedTime = maxElapsed

	var ws *websocket.Conn
	operation := func() error {
		var err error
		ws, _, err = websocket.DefaultDialer.DialContext(ctx, c.url, nil)
		if err != nil {
			c.logger.Warn().Err(err).Msg("dial failed, retrying")
			return err
		}
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}
	return ws, nil
}

// OnSubmitError registers the submission-failure callback. Set it before the
// machine starts driving submissions.
func (c *Conn) OnSubmitError(fn SubmitErrorFunc) {
	c.onSubmitError = fn
}

// FetchConfig performs the one-time handshake: send the config token, block
// for the single structured reply. Called once per session, before any UI
// exists.
func (c *Conn) FetchConfig(ctx context.Context) (*model.Config, error) {
	c.mu.Lock()
	ws := c.ws
	c.mu.Unlock()

	if deadline, ok := ctx.Deadline(); ok {
		_ = ws.SetReadDeadline(deadline)
		defer ws.SetReadDeadline(time.Time{})
	}

	if err := ws.WriteMessage(websocket.TextMessage, []byte(configRequestToken)); err != nil {
		return nil, fmt.Errorf("failed to send config request: %w", err)
	}

	messageType, data, err := ws.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("failed to read config reply: %w", err)
	}
	if messageType != websocket.TextMessage {
		return nil, fmt.Errorf("unexpected config reply frame type %d", messageType)
	}

	var cfg model.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config reply: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("server sent invalid config: %w", err)
	}

	c.logger.Info().
		Int("bases", len(cfg.Menu.Bases)).
		Int("toppings", len(cfg.Menu.Toppings)).
		Int("spice_levels", len(cfg.Menu.SpiceLevels)).
		Msg("config received")

	return &cfg, nil
}

// SubmitOrder sends one completed order, fire-and-forget: no reply is
// expected. On failure the error is surfaced through the callback, a
// background redial starts, and the error is returned so the caller can keep
// the order on screen.
func (c *Conn) SubmitOrder(order *model.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to serialise order: %w", err)
	}

	c.mu.Lock()
	ws := c.ws
	c.mu.Unlock()

	if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
		c.logger.Error().Err(err).Msg("cannot submit order")
		if c.onSubmitError != nil {
			c.onSubmitError(err)
		}
		c.redialInBackground()
		return fmt.Errorf("cannot submit order: %w", err)
	}

	c.logger.Info().
		Int("base", int(order.Base)).
		Int("topping_count", len(order.Toppings)).
		Msg("order submitted")

	return nil
}

// redialInBackground replaces the dead connection, retrying without a
// deadline. At most one redial runs at a time.
func (c *Conn) redialInBackground() {
	c.mu.Lock()
	if c.redialing || c.closed {
		c.mu.Unlock()
		return
	}
	c.redialing = true
	c.mu.Unlock()

	go func() {
		defer func() {
			c.mu.Lock()
			c.redialing = false
			c.mu.Unlock()
		}()

		ws, err := c.dial(c.redialCtx, 0)
		if err != nil {
			// Only context cancellation gets here; an unbounded
			// backoff otherwise retries forever.
			c.logger.Warn().Err(err).Msg("redial abandoned")
			return
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			ws.Close()
			return
		}
		old := c.ws
		c.ws = ws
		c.mu.Unlock()

		if old != nil {
			old.Close()
		}
		c.logger.Info().Msg("reconnected")
	}()
}

// Close tears down the channel and stops any background redial.
func (c *Conn) Close() error {
	c.cancelRedial()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.ws.Close()
}
