package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/vpalmerio/MoveGameDB/config"
	"github.com/vpalmerio/MoveGameDB/metrics"
	"github.com/vpalmerio/MoveGameDB/session"
	"github.com/vpalmerio/MoveGameDB/transport"
	"github.com/vpalmerio/MoveGameDB/wallet"
)

var (
	serverURL   = flag.String("server", "", "replication backend websocket URL (overrides env)")
	metricsAddr = flag.String("metrics", "", "prometheus metrics address (overrides env)")
)

func main() {
	flag.Parse()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg := config.Load(logger)
	if *serverURL != "" {
		cfg.ServerURL = *serverURL
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}

	metrics.Serve(cfg.MetricsAddr, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-interrupt
		logger.Info("interrupt received, shutting down")
		cancel()
	}()

	conn := transport.NewWS(cfg.ServerURL, cfg.ModuleName, transport.NewTokenStore(cfg.TokenPath), logger)

	var w wallet.Wallet
	if cfg.WalletAddress != "" {
		w = wallet.NewStatic(cfg.WalletAddress)
	}

	sess := session.New(conn, w, logger)
	sess.Start(ctx)
	defer sess.Close()

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("MoveGameDB")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(NewApp(sess, logger)); err != nil && err != ebiten.Termination {
		logger.Error("game loop error", "error", err)
		os.Exit(1)
	}
	logger.Info("client finished")
}
