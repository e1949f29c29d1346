package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"ramen-kiosk/internal/model"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockLedger is a mock implementation of ledger.Ledger.
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Append(ctx context.Context, ts time.Time, total decimal.Decimal) error {
	args := m.Called(ctx, ts, total)
	return args.Error(0)
}

// frame is one scripted inbound message.
type frame struct {
	messageType int
	data        []byte
}

// fakeConn replays scripted frames and then reports a normal closure.
type fakeConn struct {
	frames  []frame
	next    int
	written [][]byte
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	if c.next >= len(c.frames) {
		return 0, nil, &websocket.CloseError{Code: websocket.CloseNormalClosure}
	}
	f := c.frames[c.next]
	c.next++
	return f.messageType, f.data, nil
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	c.written = append(c.written, data)
	return nil
}

func text(s string) frame {
	return frame{messageType: websocket.TextMessage, data: []byte(s)}
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func pricePtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func testConfig() *model.Config {
	return &model.Config{
		Menu: model.Menu{
			Bases: []model.Base{
				{ID: 1, Name: "Rice", Price: price("5.00"), ImageURL: "rice.png"},
			},
			Toppings: []model.Topping{
				{ID: 10, Name: "Cheese", Price: pricePtr("1.50"), ImageURL: "cheese.png"},
				{ID: 11, Name: "Salsa", Price: nil, ImageURL: "salsa.png"},
			},
			SpiceLevels: []model.SpiceLevel{
				{Level: 0, Name: "Mild"},
			},
		},
		DefaultOrder: model.Order{Base: 1, Toppings: []model.ToppingID{}, SpiceLevel: 0},
	}
}

func newTestSession(t *testing.T, conn Conn, led *MockLedger) *Session {
	t.Helper()

	cfg := testConfig()
	reply, err := EncodeConfig(cfg)
	require.NoError(t, err)

	s := New(conn, cfg, reply, led, zerolog.Nop())
	s.now = func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	}
	return s
}

func TestSession_RepeatedConfigRequestsYieldIdenticalReplies(t *testing.T) {
	conn := &fakeConn{frames: []frame{text("config"), text("config"), text("config")}}
	led := &MockLedger{}

	sess := newTestSession(t, conn, led)
	require.NoError(t, sess.Run(context.Background()))

	require.Len(t, conn.written, 3)
	assert.Equal(t, conn.written[0], conn.written[1])
	assert.Equal(t, conn.written[1], conn.written[2])

	var cfg model.Config
	require.NoError(t, json.Unmarshal(conn.written[0], &cfg))
	assert.Equal(t, "Rice", cfg.Menu.Bases[0].Name)

	led.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything)
}

func TestSession_ValidOrderIsPricedAndPersisted(t *testing.T) {
	conn := &fakeConn{frames: []frame{
		text(`{"base": 1, "toppings": [10, 11], "spice_level": 0}`),
	}}
	led := &MockLedger{}
	led.On("Append", mock.Anything, mock.Anything, mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.StringFixed(2) == "6.50"
	})).Return(nil).Once()

	sess := newTestSession(t, conn, led)
	require.NoError(t, sess.Run(context.Background()))

	// Submit-and-forget: no reply for an order, valid or not.
	assert.Empty(t, conn.written)
	led.AssertExpectations(t)
}

func TestSession_InvalidOrderRejectedWithoutEndingSession(t *testing.T) {
	conn := &fakeConn{frames: []frame{
		text(`{"base": 99, "toppings": [], "spice_level": 0}`),
		text(`{"base": 1, "toppings": [10], "spice_level": 0}`),
	}}
	led := &MockLedger{}
	led.On("Append", mock.Anything, mock.Anything, mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.StringFixed(2) == "6.50"
	})).Return(nil).Once()

	sess := newTestSession(t, conn, led)
	require.NoError(t, sess.Run(context.Background()))

	// Only the valid follow-up order reached the ledger.
	led.AssertNumberOfCalls(t, "Append", 1)
	assert.Empty(t, conn.written)
}

func TestSession_LedgerFailureKeepsSessionAlive(t *testing.T) {
	conn := &fakeConn{frames: []frame{
		text(`{"base": 1, "toppings": [], "spice_level": 0}`),
		text(`{"base": 1, "toppings": [], "spice_level": 0}`),
		text("config"),
	}}
	led := &MockLedger{}
	led.On("Append", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("connection pool exhausted")).Once()
	led.On("Append", mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Once()

	sess := newTestSession(t, conn, led)
	require.NoError(t, sess.Run(context.Background()))

	led.AssertNumberOfCalls(t, "Append", 2)
	// The config request after the failed write was still answered.
	assert.Len(t, conn.written, 1)
}

func TestSession_UnrecognizedMessagesAreIgnored(t *testing.T) {
	conn := &fakeConn{frames: []frame{
		text("not json"),
		text(`{"unexpected": true}`),
		text(`{"base": 1}`),
		{messageType: websocket.BinaryMessage, data: []byte{0x01, 0x02}},
		text("config"),
	}}
	led := &MockLedger{}

	sess := newTestSession(t, conn, led)
	require.NoError(t, sess.Run(context.Background()))

	led.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything)
	assert.Len(t, conn.written, 1)
}

func TestSession_PersistedTimestampIsUTC(t *testing.T) {
	conn := &fakeConn{frames: []frame{
		text(`{"base": 1, "toppings": [], "spice_level": 0}`),
	}}
	led := &MockLedger{}
	led.On("Append", mock.Anything, mock.MatchedBy(func(ts time.Time) bool {
		return ts.Equal(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	}), mock.Anything).Return(nil).Once()

	sess := newTestSession(t, conn, led)
	require.NoError(t, sess.Run(context.Background()))

	led.AssertExpectations(t)
}
