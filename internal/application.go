package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/memoicons-backend/internal/config"
	"github.com/rocketscienceinc/memoicons-backend/internal/storage"
	"github.com/rocketscienceinc/memoicons-backend/internal/usecase"
	"github.com/rocketscienceinc/memoicons-backend/transport/redis"
	"github.com/rocketscienceinc/memoicons-backend/transport/rest"
	"github.com/rocketscienceinc/memoicons-backend/transport/websocket"
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	var sessions *usecase.SessionManager

	if conf.Redis.Enabled {
		redisClient, err := storage.NewRedisClient(ctx, conf.Redis.GetRedisAddr())
		if err != nil {
			return fmt.Errorf("could not connect to redis: %w", err)
		}

		defer func() {
			if err = redisClient.Close(); err != nil {
				log.Error("could not close redis client", "error", err)
			}
		}()

		publisher := redis.NewPublisher(logger, redisClient, conf.Redis.ChannelPrefix, conf.Redis.Buffer)
		go publisher.Run(ctx)

		log.Info("Publishing game events to redis", "addr", conf.Redis.GetRedisAddr(), "prefix", conf.Redis.ChannelPrefix)

		sessions = usecase.NewSessionManager(logger, conf.Game, publisher)
	} else {
		sessions = usecase.NewSessionManager(logger, conf.Game, nil)
	}

	defer sessions.CloseAll()

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.New(logger, sessions).Start(ctx, conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, sessions)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err := <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err := <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
