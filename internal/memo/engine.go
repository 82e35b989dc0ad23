// Package memo implements the pairs game engine: dealing, card selection, pair
// evaluation with settle periods, and the pause/resume/restart/quit lifecycle.
package memo

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rocketscienceinc/memoicons-backend/internal/apperror"
	"github.com/rocketscienceinc/memoicons-backend/internal/entity"
)

// Settle holds the delays between a state change and the engine's next action.
type Settle struct {
	// Reveal is the wait after the second flip before the pair is judged.
	Reveal time.Duration
	// Mismatch is how long a mismatched pair stays face up.
	Mismatch time.Duration
	// Victory is the wait between the final match and GameWon.
	Victory time.Duration
}

var DefaultSettle = Settle{
	Reveal:   300 * time.Millisecond,
	Mismatch: 500 * time.Millisecond,
	Victory:  800 * time.Millisecond,
}

type Option func(*Engine)

func WithSettle(settle Settle) Option {
	return func(that *Engine) {
		that.settle = settle
	}
}

func WithScheduler(scheduler Scheduler) Option {
	return func(that *Engine) {
		that.scheduler = scheduler
	}
}

// WithShuffle replaces the Fisher–Yates shuffle applied to every fresh deck.
func WithShuffle(shuffle func(deck []entity.Icon)) Option {
	return func(that *Engine) {
		that.shuffle = shuffle
	}
}

// Engine owns a single game session and is its only mutator.
// Commands are serialized; invalid commands for the current state are ignored.
type Engine struct {
	logger    *slog.Logger
	icons     []entity.Icon
	settle    Settle
	scheduler Scheduler
	shuffle   func(deck []entity.Icon)

	mu           sync.Mutex
	session      *entity.Session
	generation   uint64
	timers       map[uint64]Timer
	nextTimer    uint64
	listeners    []subscription
	nextListener uint64
}

func NewEngine(logger *slog.Logger, icons []string, opts ...Option) (*Engine, error) {
	if len(icons) < 2 {
		return nil, fmt.Errorf("%w: got %d", apperror.ErrNotEnoughIcons, len(icons))
	}

	seen := make(map[entity.Icon]struct{}, len(icons))
	iconSet := make([]entity.Icon, 0, len(icons))
	for _, raw := range icons {
		icon := entity.Icon(raw)
		if _, ok := seen[icon]; ok {
			return nil, fmt.Errorf("%w: %q", apperror.ErrDuplicateIcon, raw)
		}
		seen[icon] = struct{}{}
		iconSet = append(iconSet, icon)
	}

	engine := &Engine{
		logger:    logger.With("component", "memo"),
		icons:     iconSet,
		settle:    DefaultSettle,
		scheduler: NewClockScheduler(),
		shuffle:   entity.RandomShuffle,
		timers:    make(map[uint64]Timer),
	}

	for _, opt := range opts {
		opt(engine)
	}

	return engine, nil
}

// TotalPairs - number of distinct icons, i.e. pairs needed to win.
func (that *Engine) TotalPairs() int {
	return len(that.icons)
}

// Subscribe registers a listener and returns the function that removes it.
func (that *Engine) Subscribe(listener Listener) func() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.nextListener++
	id := that.nextListener
	that.listeners = append(that.listeners, subscription{id: id, listener: listener})

	var once sync.Once
	return func() {
		once.Do(func() {
			that.mu.Lock()
			defer that.mu.Unlock()

			for i, sub := range that.listeners {
				if sub.id == id {
					that.listeners = append(that.listeners[:i], that.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Snapshot returns a copy of the current session, false when in the menu.
func (that *Engine) Snapshot() (entity.Session, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.session == nil {
		return entity.Session{}, false
	}

	return that.session.Clone(), true
}

// StartGame deals a fresh board for playerName, replacing any current session.
func (that *Engine) StartGame(playerName string) error {
	name := strings.TrimSpace(playerName)
	if name == "" {
		return apperror.ErrEmptyPlayerName
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	that.start(name)

	return nil
}

func (that *Engine) SelectCard(position int) {
	that.mu.Lock()
	defer that.mu.Unlock()

	session := that.session
	if session == nil || !session.Reveal(position) {
		that.logger.Debug("selection ignored", "position", position)
		return
	}

	that.emit(entity.CardRevealed{Position: position, Icon: session.Board[position].Icon})

	if _, ok := session.PendingPair(); ok {
		that.schedule(that.settle.Reveal, that.evaluate)
	}
}

func (that *Engine) PauseGame() {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.session == nil || !that.session.Active {
		return
	}

	that.session.Paused = true
	that.emit(entity.GamePaused{})
}

func (that *Engine) ResumeGame() {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.session != nil {
		that.session.Paused = false
	}

	that.emit(entity.GameResumed{})
}

// RestartGame starts a new round for the current player. No-op from the menu.
func (that *Engine) RestartGame() {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.session == nil {
		return
	}

	name := that.session.PlayerName

	that.emit(entity.GameRestarted{})
	that.start(name)
}

func (that *Engine) QuitToMenu() {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.session == nil {
		return
	}

	that.logger.Info("game quit", "player", that.session.PlayerName, "generation", that.generation)

	that.supersede()
	that.session = nil
	that.emit(entity.GameQuit{})
}

// Close cancels pending continuations and drops all listeners without emitting.
func (that *Engine) Close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.supersede()
	that.session = nil
	that.listeners = nil
}

func (that *Engine) start(name string) {
	that.supersede()

	deck := entity.NewDeck(that.icons)
	that.shuffle(deck)
	that.session = entity.NewSession(that.generation, name, deck)

	that.logger.Info("game started", "player", name, "generation", that.generation, "cards", len(deck))

	that.emit(entity.GameStarted{PlayerName: name, Board: that.session.Board.Clone()})
}

// supersede invalidates the current generation and stops its continuations.
func (that *Engine) supersede() {
	that.generation++

	for id, timer := range that.timers {
		timer.Stop()
		delete(that.timers, id)
	}
}

// schedule runs continuation after delay, unless the session was replaced meanwhile.
func (that *Engine) schedule(delay time.Duration, continuation func(session *entity.Session)) {
	generation := that.generation

	that.nextTimer++
	id := that.nextTimer

	that.timers[id] = that.scheduler.AfterFunc(delay, func() {
		that.mu.Lock()
		defer that.mu.Unlock()

		delete(that.timers, id)

		if that.session == nil || that.generation != generation {
			that.logger.Debug("stale continuation dropped", "generation", generation, "current", that.generation)
			return
		}

		continuation(that.session)
	})
}

func (that *Engine) evaluate(session *entity.Session) {
	positions, matched, ok := session.Resolve()
	if !ok {
		return
	}

	that.emit(entity.AttemptsChanged{Attempts: session.Attempts})

	if !matched {
		that.logger.Debug("pair mismatched", "positions", positions, "attempts", session.Attempts)

		that.emit(entity.PairMismatched{Positions: positions})
		that.schedule(that.settle.Mismatch, that.hide)

		return
	}

	that.logger.Debug("pair matched", "positions", positions, "pairs", session.PairsFound, "attempts", session.Attempts)

	that.emit(entity.PairMatched{Positions: positions, PairsFound: session.PairsFound, TotalPairs: session.TotalPairs})

	if session.IsWon() {
		that.schedule(that.settle.Victory, that.declareVictory)
	}
}

func (that *Engine) hide(session *entity.Session) {
	positions, ok := session.HidePending()
	if !ok {
		return
	}

	that.emit(entity.CardsHidden{Positions: positions})
}

func (that *Engine) declareVictory(session *entity.Session) {
	that.logger.Info("game won", "player", session.PlayerName, "attempts", session.Attempts)

	that.emit(entity.GameWon{PlayerName: session.PlayerName, Attempts: session.Attempts})
}

func (that *Engine) emit(event entity.Event) {
	for _, sub := range that.listeners {
		sub.listener.OnEvent(event)
	}
}
