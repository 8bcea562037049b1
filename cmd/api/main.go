package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/jmoellers/insightdeck/internal/app"
	"github.com/jmoellers/insightdeck/internal/config"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	application, err := app.NewApp(ctx, cfg, log)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer application.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return application.Server.Start(gctx)
	})
	g.Go(func() error {
		return application.History.Run(gctx)
	})

	log.Info("insightdeck is running; DB connected and bootstrapped.")
	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Fatalf("runtime failure: %v", err)
	}
	log.Info("shutdown complete")
}
