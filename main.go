package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wandworld/game"
	"wandworld/protocol"
	"wandworld/server"
)

// WandWorld 入口：启动 Tick 循环与 HTTP + WebSocket 服务
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := server.LoadConfig(os.Args[1:])
	if err != nil {
		return err
	}
	log, err := server.InitLogger(cfg.Log())
	if err != nil {
		return err
	}
	defer server.SyncLogger()

	codec, err := protocol.CodecByName(cfg.Codec)
	if err != nil {
		return err
	}
	hub := server.NewHub(codec)
	g := game.New(game.Options{
		TickInterval: cfg.TickInterval,
		World:        cfg.WorldConfig(),
		Sender:       hub,
		Logger:       log.Named("game"),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := g.Start(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.NewServer(cfg, g, hub, log.Named("net")).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		log.Infow("WandWorld listening", "addr", cfg.Addr, "ws", cfg.PathPrefix+"/ws", "codec", codec.Name(),
			"pixies", cfg.Pixies, "raining", cfg.Raining)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Shutting down...")
	case <-g.Done():
		if err := g.Err(); err != nil {
			runErr = fmt.Errorf("game halted: %w", err)
			log.Errorw("game loop halted, exiting", "error", err)
		}
	case err := <-serveErr:
		runErr = fmt.Errorf("listen: %w", err)
		log.Errorw("listen failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	hub.CloseAll()
	return runErr
}
