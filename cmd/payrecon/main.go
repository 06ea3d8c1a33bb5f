package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/libops/payrecon/internal/app"
	"github.com/rs/zerolog/log"
	"go.uber.org/zap"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app := app.New()
	if err := app.Run(ctx, os.Args[1:]); err != nil {
		log.Error().Err(err).Msg("Reconciliation run failed")
		zap.L().Fatal("Reconciliation run failed: ", zap.Error(err))
	}

	zap.L().Info("Reconciliation run finished")
}
