package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/mcoot/multitetris/internal/model"
)

// Envelope is the wire frame of every message
type Envelope struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Encode wraps a payload in an envelope. A nil payload is omitted.
func Encode(t MessageType, payload any) ([]byte, error) {
	env := Envelope{Type: t}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", t, err)
		}
		env.Payload = raw
	}
	return json.Marshal(env)
}

// Decode parses an envelope without interpreting the payload
func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", model.ErrMalformedMessage, err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("%w: missing type", model.ErrMalformedMessage)
	}
	return env, nil
}

// DecodePayload unmarshals the envelope payload into T. An absent payload
// yields the zero value.
func DecodePayload[T any](env Envelope) (T, error) {
	var v T
	if len(env.Payload) == 0 || string(env.Payload) == "null" {
		return v, nil
	}
	if err := json.Unmarshal(env.Payload, &v); err != nil {
		return v, fmt.Errorf("%w: %s payload: %v", model.ErrMalformedMessage, env.Type, err)
	}
	return v, nil
}

// DecodeSnapshot unmarshals a gameState or gameOver payload. A grid that
// has the wrong shape or out-of-range cells is dropped and reported through
// gridDropped; the other fields are still returned.
func DecodeSnapshot(env Envelope) (snap model.Snapshot, gridDropped bool, err error) {
	snap, err = DecodePayload[GameStatePayload](env)
	if err != nil {
		return snap, false, err
	}
	if len(snap.Grid) > 0 && !snap.Grid.Valid() {
		snap.Grid = nil
		return snap, true, nil
	}
	return snap, false, nil
}
