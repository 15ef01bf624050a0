package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/EricJeffrey/WebsocketGomoku/internal/config"
	"github.com/EricJeffrey/WebsocketGomoku/internal/game"
	"github.com/EricJeffrey/WebsocketGomoku/internal/http/http_server"
	"github.com/EricJeffrey/WebsocketGomoku/internal/ws"
	"go.uber.org/zap"
)

var (
	Log, _ = zap.NewDevelopment()
)

func main() {
	defer Log.Sync()
	zap.ReplaceGlobals(Log)

	// 1. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		Log.Fatal("Failed to load configuration", zap.Error(err))
	}
	Log.Debug("Configuration loaded successfully", zap.Any("config", cfg))

	// 2. Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	// 3. Authoritative game state
	registry := game.NewRegistry(cfg.BoardRows, cfg.BoardCols)

	// 4. Per-player broadcast queues
	outbox := ws.NewOutbox(cfg.InboxCapacity)

	// 5. Initialize the WS server
	wsSrv := ws.NewWsServer(registry, outbox,
		time.Duration(cfg.FlushIntervalMs)*time.Millisecond)

	// 6. HTTP + WS server
	httpServer := http_server.NewHttpServer(cfg.HttpServerPort, wsSrv)
	go func() {
		<-ctx.Done()
		_ = httpServer.Dispose()
	}()

	if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		Log.Fatal("Failed to start HTTP server", zap.Error(err))
	}
}
