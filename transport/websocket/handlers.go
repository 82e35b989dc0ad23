package websocket

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/memoicons-backend/internal/apperror"
)

func decodePayload(message *Message) (Payload, error) {
	var payload Payload
	if len(message.Payload) == 0 {
		return payload, nil
	}

	if err := json.Unmarshal(message.Payload, &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return payload, nil
}

func (that *Server) handleStartGame(engine gameEngine, current *client, msg *Message) error {
	payload, err := decodePayload(msg)
	if err != nil {
		return current.sendError(msg.Action, "malformed payload")
	}

	var name string
	if payload.Player != nil {
		name = payload.Player.Name
	}

	if err = engine.StartGame(name); err != nil {
		if errors.Is(err, apperror.ErrEmptyPlayerName) {
			return current.sendError(msg.Action, err.Error())
		}

		return fmt.Errorf("failed to start game: %w", err)
	}

	return nil
}

func (that *Server) handleSelectCard(engine gameEngine, current *client, msg *Message) error {
	payload, err := decodePayload(msg)
	if err != nil {
		return current.sendError(msg.Action, "malformed payload")
	}

	if payload.Position == nil {
		return current.sendError(msg.Action, "position is required")
	}

	engine.SelectCard(*payload.Position)

	return nil
}

func (that *Server) handlePauseGame(engine gameEngine, _ *client, _ *Message) error {
	engine.PauseGame()
	return nil
}

func (that *Server) handleResumeGame(engine gameEngine, _ *client, _ *Message) error {
	engine.ResumeGame()
	return nil
}

func (that *Server) handleRestartGame(engine gameEngine, _ *client, _ *Message) error {
	engine.RestartGame()
	return nil
}

func (that *Server) handleQuitGame(engine gameEngine, _ *client, _ *Message) error {
	engine.QuitToMenu()
	return nil
}
