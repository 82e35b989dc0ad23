package memo

import "github.com/rocketscienceinc/memoicons-backend/internal/entity"

// Listener receives every event emitted by an Engine.
//
// OnEvent runs while the engine holds its lock: it must return quickly and must not
// call back into the engine from the same goroutine.
type Listener interface {
	OnEvent(event entity.Event)
}

type ListenerFunc func(event entity.Event)

func (f ListenerFunc) OnEvent(event entity.Event) {
	f(event)
}

type subscription struct {
	id       uint64
	listener Listener
}
