package usecase

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/memoicons-backend/internal/apperror"
	"github.com/rocketscienceinc/memoicons-backend/internal/config"
	"github.com/rocketscienceinc/memoicons-backend/internal/entity"
	"github.com/rocketscienceinc/memoicons-backend/internal/memo"
)

type eventPublisher interface {
	Publish(sessionID string, event entity.Event)
}

// SessionManager keeps one game engine per connected client.
type SessionManager struct {
	logger    *slog.Logger
	conf      config.Game
	publisher eventPublisher
	opts      []memo.Option

	mu      sync.RWMutex
	engines map[string]*memo.Engine
}

// NewSessionManager - publisher may be nil when no external event sink is configured.
func NewSessionManager(logger *slog.Logger, conf config.Game, publisher eventPublisher, opts ...memo.Option) *SessionManager {
	return &SessionManager{
		logger:    logger.With("component", "sessions"),
		conf:      conf,
		publisher: publisher,
		opts:      opts,
		engines:   make(map[string]*memo.Engine),
	}
}

// Open creates the engine for sessionID and subscribes listener to its events.
func (that *SessionManager) Open(sessionID string, listener memo.Listener) (*memo.Engine, error) {
	log := that.logger.With("method", "Open", "sessionID", sessionID)

	opts := append([]memo.Option{
		memo.WithSettle(memo.Settle{
			Reveal:   that.conf.RevealSettle,
			Mismatch: that.conf.MismatchSettle,
			Victory:  that.conf.VictorySettle,
		}),
	}, that.opts...)

	engine, err := memo.NewEngine(that.logger.With("sessionID", sessionID), that.conf.Icons, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.engines[sessionID]; ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrSessionExists, sessionID)
	}

	if listener != nil {
		engine.Subscribe(listener)
	}

	if that.publisher != nil {
		engine.Subscribe(memo.ListenerFunc(func(event entity.Event) {
			that.publisher.Publish(sessionID, event)
		}))
	}

	that.engines[sessionID] = engine

	log.Info("session opened")

	return engine, nil
}

func (that *SessionManager) Get(sessionID string) (*memo.Engine, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	engine, ok := that.engines[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, sessionID)
	}

	return engine, nil
}

// Close stops the session's engine and forgets it. Unknown ids are ignored.
func (that *SessionManager) Close(sessionID string) {
	that.mu.Lock()
	engine, ok := that.engines[sessionID]
	delete(that.engines, sessionID)
	that.mu.Unlock()

	if !ok {
		return
	}

	engine.Close()

	that.logger.Info("session closed", "method", "Close", "sessionID", sessionID)
}

// CloseAll - closes every open session, used on shutdown.
func (that *SessionManager) CloseAll() {
	that.mu.Lock()
	engines := that.engines
	that.engines = make(map[string]*memo.Engine)
	that.mu.Unlock()

	for _, engine := range engines {
		engine.Close()
	}
}

func (that *SessionManager) Count() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.engines)
}
