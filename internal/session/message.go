package session

import (
	"bytes"
	"encoding/json"

	"ramen-kiosk/internal/model"
)

// configRequestToken is the literal a kiosk sends to request the menu config.
const configRequestToken = "config"

// messageKind tags the variants of the inbound half of the session protocol.
type messageKind int

const (
	// kindConfigRequest is the literal "config" token.
	kindConfigRequest messageKind = iota
	// kindOrderSubmission is a structured order payload.
	kindOrderSubmission
	// kindUnrecognized is anything else; logged and ignored.
	kindUnrecognized
)

// inboundMessage is one parsed client frame.
type inboundMessage struct {
	kind  messageKind
	order *model.Order
}

// parseInbound classifies a text frame. An order submission must carry all
// three fields; a payload that merely decodes into zero values is not an
// order, it is noise.
func parseInbound(data []byte) inboundMessage {
	if string(bytes.TrimSpace(data)) == configRequestToken {
		return inboundMessage{kind: kindConfigRequest}
	}

	var raw struct {
		Base       *model.BaseID      `json:"base"`
		Toppings   *[]model.ToppingID `json:"toppings"`
		SpiceLevel *int               `json:"spice_level"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return inboundMessage{kind: kindUnrecognized}
	}
	if raw.Base == nil || raw.Toppings == nil || raw.SpiceLevel == nil {
		return inboundMessage{kind: kindUnrecognized}
	}

	return inboundMessage{
		kind: kindOrderSubmission,
		order: &model.Order{
			Base:       *raw.Base,
			Toppings:   *raw.Toppings,
			SpiceLevel: *raw.SpiceLevel,
		},
	}
}

// EncodeConfig serialises the process-wide config once so every reply within
// and across sessions is byte-identical.
func EncodeConfig(cfg *model.Config) ([]byte, error) {
	return json.Marshal(cfg)
}
