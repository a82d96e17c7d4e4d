package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/iurnickita/bizledger/internal/auth"
	"github.com/iurnickita/bizledger/internal/config"
	"github.com/iurnickita/bizledger/internal/handler"
	"github.com/iurnickita/bizledger/internal/logger"
	"github.com/iurnickita/bizledger/internal/service"
	"github.com/iurnickita/bizledger/internal/store"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}

	zaplog, err := logger.NewZapLog(cfg.Logger)
	if err != nil {
		return err
	}
	defer zaplog.Sync()

	store, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()
	zaplog.Info("store opened", zap.String("kind", cfg.Store.Kind), zap.Duration("timeout", cfg.Store.Timeout))

	service, err := service.NewService(cfg.Service, store, zaplog)
	if err != nil {
		return err
	}
	auth := auth.NewAuth(cfg.Handler.TokenSecret)
	if cfg.Handler.TokenSecret == "" {
		zaplog.Warn("TOKEN_SECRET is empty, API is open")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return handler.Serve(ctx, cfg.Handler, auth, service, zaplog)
}
