package websocket

import "encoding/json"

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	Player   *PlayerPayload `json:"player,omitempty"`
	Position *int           `json:"position,omitempty"`
	Error    string         `json:"error,omitempty"`
}

type PlayerPayload struct {
	Name string `json:"name"`
}
