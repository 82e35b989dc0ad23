package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type sessionCounter interface {
	Count() int
}

type StatsHandler interface {
	StatsHandler(w http.ResponseWriter, _ *http.Request)
}

type statsResponse struct {
	Sessions int `json:"sessions"`
}

type statsHandler struct {
	logger   *slog.Logger
	sessions sessionCounter
}

func NewStatsHandler(logger *slog.Logger, sessions sessionCounter) StatsHandler {
	return &statsHandler{
		logger:   logger.With("handler", "stats"),
		sessions: sessions,
	}
}

// StatsHandler - reports how many game sessions are open.
func (that *statsHandler) StatsHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(statsResponse{Sessions: that.sessions.Count()}); err != nil {
		that.logger.Error("failed to encode stats", "error", err)
	}
}
