package websocket

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/rocketscienceinc/memoicons-backend/internal/entity"
)

const sendQueueSize = 64

// client is one browser connection. Frames are queued and written by a single
// goroutine because engine events arrive from continuation goroutines.
type client struct {
	logger *slog.Logger
	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer

	send      chan frame
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(logger *slog.Logger, conn net.Conn, bufrw *bufio.ReadWriter) *client {
	return &client{
		logger: logger,
		conn:   conn,
		reader: bufrw.Reader,
		writer: bufrw.Writer,
		send:   make(chan frame, sendQueueSize),
		done:   make(chan struct{}),
	}
}

// OnEvent forwards engine events to the browser. Hidden card faces never leave the server.
func (that *client) OnEvent(event entity.Event) {
	if started, ok := event.(entity.GameStarted); ok {
		started.Board = started.Board.Masked()
		event = started
	}

	message, err := entity.MarshalEvent(event)
	if err != nil {
		that.logger.Error("failed to encode event", "event", event.EventType(), "error", err)
		return
	}

	that.enqueue(frame{isFin: true, opCode: opText, payload: message})
}

func (that *client) sendMessage(action string, payload Payload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message, err := json.Marshal(Message{Action: action, Payload: raw})
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	that.enqueue(frame{isFin: true, opCode: opText, payload: message})

	return nil
}

func (that *client) sendError(action, errorMsg string) error {
	return that.sendMessage(action, Payload{Error: errorMsg})
}

func (that *client) pong(payload []byte) {
	that.enqueue(frame{isFin: true, opCode: opPong, payload: payload})
}

// enqueue never blocks; a client that cannot keep up is disconnected.
func (that *client) enqueue(f frame) {
	select {
	case that.send <- f:
	default:
		that.logger.Warn("send queue full, closing connection")
		_ = that.conn.Close()
	}
}

// writeLoop drains the send queue until close is called.
func (that *client) writeLoop() {
	defer close(that.done)

	var failed bool
	for f := range that.send {
		if failed {
			continue
		}

		if err := writeFrame(that.writer, f); err != nil {
			that.logger.Error("failed to write frame", "error", err)
			failed = true
			_ = that.conn.Close()
		}
	}
}

// close stops the writer after the queued frames are flushed.
// No event may be enqueued afterwards.
func (that *client) close() {
	that.closeOnce.Do(func() {
		close(that.send)
		<-that.done
	})
}
