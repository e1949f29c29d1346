package session

import (
	"testing"

	"ramen-kiosk/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInbound(t *testing.T) {
	tests := []struct {
		name string
		data string
		kind messageKind
	}{
		{name: "config token", data: "config", kind: kindConfigRequest},
		{name: "config token with whitespace", data: "  config\n", kind: kindConfigRequest},
		{name: "order", data: `{"base": 1, "toppings": [10, 11], "spice_level": 0}`, kind: kindOrderSubmission},
		{name: "order with empty toppings", data: `{"base": 2, "toppings": [], "spice_level": 3}`, kind: kindOrderSubmission},
		{name: "not json", data: "CONFIG PLEASE", kind: kindUnrecognized},
		{name: "empty", data: "", kind: kindUnrecognized},
		{name: "json of wrong shape", data: `{"status": "ok"}`, kind: kindUnrecognized},
		{name: "order missing base", data: `{"toppings": [10], "spice_level": 0}`, kind: kindUnrecognized},
		{name: "order missing toppings", data: `{"base": 1, "spice_level": 0}`, kind: kindUnrecognized},
		{name: "order missing spice level", data: `{"base": 1, "toppings": []}`, kind: kindUnrecognized},
		{name: "json array", data: `[1, 2, 3]`, kind: kindUnrecognized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := parseInbound([]byte(tt.data))
			assert.Equal(t, tt.kind, msg.kind)
		})
	}
}

func TestParseInbound_OrderFields(t *testing.T) {
	msg := parseInbound([]byte(`{"base": 2, "toppings": [11, 10], "spice_level": 1}`))
	require.Equal(t, kindOrderSubmission, msg.kind)
	require.NotNil(t, msg.order)

	assert.Equal(t, model.BaseID(2), msg.order.Base)
	assert.Equal(t, []model.ToppingID{11, 10}, msg.order.Toppings)
	assert.Equal(t, 1, msg.order.SpiceLevel)
}
