// Package session implements the server side of the kiosk protocol: one
// Session per accepted connection, dispatching inbound messages to either the
// config reply or the validate-price-persist path.
package session

import (
	"context"
	"fmt"
	"time"

	"ramen-kiosk/internal/ledger"
	"ramen-kiosk/internal/metrics"
	"ramen-kiosk/internal/model"
	"ramen-kiosk/internal/pricing"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Conn is the subset of a websocket connection the session uses.
// *websocket.Conn satisfies it.
type Conn interface {
	ReadMessage() (messageType int, data []byte, err error)
	WriteMessage(messageType int, data []byte) error
}

// Session handles one kiosk connection. Sessions run independently: the only
// state shared with other sessions is the immutable config and the pooled
// ledger handle.
type Session struct {
	id          uuid.UUID
	conn        Conn
	cfg         *model.Config
	configReply []byte
	ledger      ledger.Ledger
	logger      zerolog.Logger
	now         func() time.Time
}

// New creates a session for an accepted connection. configReply is the
// pre-serialised config; every config request within the session's lifetime
// is answered with these exact bytes.
func New(conn Conn, cfg *model.Config, configReply []byte, led ledger.Ledger, logger zerolog.Logger) *Session {
	id := uuid.New()
	return &Session{
		id:          id,
		conn:        conn,
		cfg:         cfg,
		configReply: configReply,
		ledger:      led,
		logger:      logger.With().Str("component", "session").Str("session_id", id.String()).Logger(),
		now:         time.Now,
	}
}

// ID returns the session's correlation id.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Run reads and dispatches messages until the connection drops or ctx is
// cancelled. Rejected submissions and ledger failures keep the session
// alive; only the connection itself ends it.
func (s *Session) Run(ctx context.Context) error {
	s.logger.Info().Msg("session started")

	for {
		if err := ctx.Err(); err != nil {
			s.logger.Info().Msg("session context cancelled")
			return nil
		}

		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				s.logger.Info().Msg("session closed by client")
				return nil
			}
			s.logger.Warn().Err(err).Msg("connection lost")
			return fmt.Errorf("connection lost: %w", err)
		}

		if messageType != websocket.TextMessage {
			metrics.MessagesIgnored.Inc()
			s.logger.Warn().Int("message_type", messageType).Msg("ignoring non-text frame")
			continue
		}

		s.dispatch(ctx, data)
	}
}

// dispatch routes one text frame to its variant handler.
func (s *Session) dispatch(ctx context.Context, data []byte) {
	msg := parseInbound(data)
	switch msg.kind {
	case kindConfigRequest:
		s.handleConfigRequest()
	case kindOrderSubmission:
		s.handleOrder(ctx, msg.order)
	default:
		metrics.MessagesIgnored.Inc()
		s.logger.Warn().
			Str("error_code", model.ErrCodeProtocol).
			Int("bytes", len(data)).
			Msg("ignoring unrecognised message")
	}
}

// handleConfigRequest replies with the shared config. Repeated requests are
// legal and each yields an identical reply.
func (s *Session) handleConfigRequest() {
	if err := s.conn.WriteMessage(websocket.TextMessage, s.configReply); err != nil {
		s.logger.Warn().Err(err).Msg("failed to send config reply")
		return
	}
	metrics.ConfigsServed.Inc()
	s.logger.Debug().Msg("config served")
}

// handleOrder validates, prices, and persists one submission. The protocol
// is submit-and-forget: no reply is sent whether the order is accepted or
// rejected.
func (s *Session) handleOrder(ctx context.Context, order *model.Order) {
	if err := s.cfg.ValidateOrder(order); err != nil {
		metrics.OrdersRejected.Inc()
		s.logger.Warn().
			Err(err).
			Str("error_code", model.ErrCodeReference).
			Int("base", int(order.Base)).
			Int("spice_level", order.SpiceLevel).
			Msg("order rejected")
		return
	}

	total, err := pricing.ComputeTotal(s.cfg, order)
	if err != nil {
		// Unreachable after validation; a failure here means the config
		// and validator disagree.
		s.logger.Error().Err(err).Msg("pricing failed for validated order")
		return
	}

	if err := s.ledger.Append(ctx, s.now(), total); err != nil {
		metrics.LedgerWriteFailures.Inc()
		s.logger.Error().
			Err(err).
			Str("error_code", model.ErrCodePersistence).
			Str("total", total.StringFixed(2)).
			Msg("failed to persist order, session continues")
		return
	}

	metrics.OrdersPersisted.Inc()
	s.logger.Info().
		Int("base", int(order.Base)).
		Int("topping_count", len(order.Toppings)).
		Int("spice_level", order.SpiceLevel).
		Str("total", total.StringFixed(2)).
		Msg("order persisted")
}
