package entity

import (
	"encoding/json"
	"fmt"
)

type EventType string

const (
	EventGameStarted     EventType = "game:started"
	EventCardRevealed    EventType = "card:revealed"
	EventAttemptsChanged EventType = "attempts:changed"
	EventPairMatched     EventType = "pair:matched"
	EventPairMismatched  EventType = "pair:mismatched"
	EventCardsHidden     EventType = "cards:hidden"
	EventGameWon         EventType = "game:won"
	EventGamePaused      EventType = "game:paused"
	EventGameResumed     EventType = "game:resumed"
	EventGameRestarted   EventType = "game:restarted"
	EventGameQuit        EventType = "game:quit"
)

// Event is a state transition emitted by the game engine.
type Event interface {
	EventType() EventType
}

type GameStarted struct {
	PlayerName string `json:"player_name"`
	Board      Board  `json:"board"`
}

type CardRevealed struct {
	Position int  `json:"position"`
	Icon     Icon `json:"icon"`
}

type AttemptsChanged struct {
	Attempts int `json:"attempts"`
}

type PairMatched struct {
	Positions  [2]int `json:"positions"`
	PairsFound int    `json:"pairs_found"`
	TotalPairs int    `json:"total_pairs"`
}

type PairMismatched struct {
	Positions [2]int `json:"positions"`
}

type CardsHidden struct {
	Positions [2]int `json:"positions"`
}

type GameWon struct {
	PlayerName string `json:"player_name"`
	Attempts   int    `json:"attempts"`
}

type GamePaused struct{}

type GameResumed struct{}

type GameRestarted struct{}

type GameQuit struct{}

func (GameStarted) EventType() EventType     { return EventGameStarted }
func (CardRevealed) EventType() EventType    { return EventCardRevealed }
func (AttemptsChanged) EventType() EventType { return EventAttemptsChanged }
func (PairMatched) EventType() EventType     { return EventPairMatched }
func (PairMismatched) EventType() EventType  { return EventPairMismatched }
func (CardsHidden) EventType() EventType     { return EventCardsHidden }
func (GameWon) EventType() EventType         { return EventGameWon }
func (GamePaused) EventType() EventType      { return EventGamePaused }
func (GameResumed) EventType() EventType     { return EventGameResumed }
func (GameRestarted) EventType() EventType   { return EventGameRestarted }
func (GameQuit) EventType() EventType        { return EventGameQuit }

// EventMessage is the wire envelope shared by the websocket and redis transports.
type EventMessage struct {
	Action  EventType       `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

// MarshalEvent - encodes an event as {"action": <type>, "payload": <event>}.
func MarshalEvent(event Event) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", event.EventType(), err)
	}

	message, err := json.Marshal(EventMessage{Action: event.EventType(), Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s message: %w", event.EventType(), err)
	}

	return message, nil
}
