package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/fx"

	"github.com/polkiloo/digistore/internal/app"
	"github.com/polkiloo/digistore/internal/config"
	"github.com/polkiloo/digistore/internal/di"
	"github.com/polkiloo/digistore/internal/domain/model"
)

// operations is the part of the storefront the CLI drives.
type operations interface {
	ConfirmOrder(ctx context.Context, orderID int64, actor string) (*model.TransitionResult, error)
	RejectOrder(ctx context.Context, orderID int64, actor string) (*model.TransitionResult, error)
	RedeliverOrder(ctx context.Context, orderID int64, actor string) (*model.TransitionResult, error)
	ImportKeys(ctx context.Context, productID int64, raw string) (int, error)
	SweepTokens(ctx context.Context) (int64, error)
}

// runner builds the storefront, hands it to fn and tears it down afterwards.
type runner func(ctx context.Context, opts globalOptions, fn func(ops operations) error) error

type globalOptions struct {
	databaseURI string
}

func loadConfig(opts globalOptions) (*config.Config, error) {
	if opts.databaseURI != "" {
		if err := os.Setenv("DATABASE_URI", opts.databaseURI); err != nil {
			return nil, err
		}
	}
	return config.LoadEnv()
}

// coreRunner starts the shared core graph without the HTTP server, so CLI
// transitions go through the same state machine as the dashboard.
func coreRunner(ctx context.Context, opts globalOptions, fn func(ops operations) error) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	var facade *app.StoreFacade
	fxApp := fx.New(
		fx.Provide(func() context.Context { return ctx }),
		di.EventLogger,
		di.CoreModule(fx.Replace(cfg)),
		fx.Populate(&facade),
	)
	if err := fxApp.Err(); err != nil {
		return fmt.Errorf("build store: %w", err)
	}
	if err := fxApp.Start(ctx); err != nil {
		return fmt.Errorf("start store: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
		defer cancel()
		_ = fxApp.Stop(stopCtx)
	}()

	return fn(facade)
}
