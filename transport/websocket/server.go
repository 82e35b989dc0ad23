package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/memoicons-backend/internal/memo"
)

const sessionCookie = "user_session"

type sessionManager interface {
	Open(sessionID string, listener memo.Listener) (*memo.Engine, error)
	Close(sessionID string)
}

// gameEngine is the command side of memo.Engine used by the handlers.
type gameEngine interface {
	StartGame(playerName string) error
	SelectCard(position int)
	PauseGame()
	ResumeGame()
	RestartGame()
	QuitToMenu()
}

type handler func(engine gameEngine, client *client, message *Message) error

type Server struct {
	logger   *slog.Logger
	sessions sessionManager

	handlers map[string]handler
}

func New(logger *slog.Logger, sessions sessionManager) *Server {
	server := &Server{
		logger:   logger.With("component", "websocket"),
		sessions: sessions,

		handlers: make(map[string]handler),
	}

	server.handlers["game:start"] = server.handleStartGame
	server.handlers["card:select"] = server.handleSelectCard
	server.handlers["game:pause"] = server.handlePauseGame
	server.handlers["game:resume"] = server.handleResumeGame
	server.handlers["game:restart"] = server.handleRestartGame
	server.handlers["game:quit"] = server.handleQuitGame

	return server
}

// Handler - routes /ws to the upgrade handler; ctx bounds every connection.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// upgradeToWebSocket - upgrades the connection to WebSocket.
func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeConnection")

	if !strings.EqualFold(req.Header.Get("Upgrade"), "websocket") {
		http.Error(writer, "not a websocket upgrade", http.StatusBadRequest)
		return
	}

	key := req.Header.Get("Sec-WebSocket-Key")
	if key == "" {
		http.Error(writer, "missing Sec-WebSocket-Key", http.StatusBadRequest)
		return
	}

	hijacker, ok := writer.(http.Hijacker)
	if !ok {
		log.Error("web server does not support hijacking", "error", http.StatusText(http.StatusInternalServerError))
		http.Error(writer, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	browserID := that.setSessionCookie(writer, req)

	writer.Header().Set("Upgrade", "websocket")
	writer.Header().Set("Connection", "Upgrade")
	writer.Header().Set("Sec-WebSocket-Accept", GenerateAcceptKey(key))
	writer.WriteHeader(http.StatusSwitchingProtocols)

	conn, bufrw, err := hijacker.Hijack()
	if err != nil {
		log.Error("failed to hijack connection", "error", err)
		return
	}

	defer conn.Close()

	// deadlines set by the http server must not outlive the handshake
	_ = conn.SetDeadline(time.Time{})

	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()

	sessionID := uuid.NewString()
	log = log.With("sessionID", sessionID, "browserID", browserID)

	current := newClient(log, conn, bufrw)
	go current.writeLoop()

	engine, err := that.sessions.Open(sessionID, current)
	if err != nil {
		log.Error("failed to open session", "error", err)
		_ = current.sendError("connect", "failed to open a game session")
		current.close()
		return
	}

	log.Info("WebSocket connection established")

	if err = that.handleMessages(engine, current); err != nil && !errors.Is(err, ErrConnectionClosed) {
		log.Error("error handling messages", "error", err)
	}

	// the engine stops emitting before the send queue is closed
	that.sessions.Close(sessionID)
	current.close()

	log.Info("WebSocket connection closed")
}

// handleMessages - processes messages from the client until it disconnects.
func (that *Server) handleMessages(engine gameEngine, current *client) error {
	log := that.logger.With("method", "handleMessages")

	for {
		reqBody, err := readMessage(current.reader, current.pong)
		if err != nil {
			return err
		}

		var message Message
		if err = json.Unmarshal(reqBody, &message); err != nil {
			log.Warn("failed to unmarshal message", "error", err)
			if err = current.sendError("error", "malformed message"); err != nil {
				return err
			}
			continue
		}

		handle, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			if err = current.sendError(message.Action, "unknown action"); err != nil {
				return err
			}
			continue
		}

		if err = handle(engine, current, &message); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

// setSessionCookie - returns the browser id, issuing a cookie when none is set.
func (that *Server) setSessionCookie(writer http.ResponseWriter, req *http.Request) string {
	log := that.logger.With("method", "setSessionCookie")

	cookie, err := req.Cookie(sessionCookie)
	if err == nil && cookie.Value != "" {
		log.Debug("session cookie found", "cookie", cookie.Value)
		return cookie.Value
	}

	cookie = &http.Cookie{
		Name:     sessionCookie,
		Value:    uuid.NewString(),
		Expires:  time.Now().Add(24 * time.Hour),
		Path:     "/ws",
		HttpOnly: true,
	}
	http.SetCookie(writer, cookie)

	log.Debug("session cookie not found, new one created", "cookie", cookie.Value)

	return cookie.Value
}
