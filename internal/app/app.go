package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/digistore/internal/config"
	"github.com/polkiloo/digistore/internal/usecase"
	"github.com/polkiloo/digistore/internal/worker"
)

// CoreModule provides the facade without any network listener.
var CoreModule = fx.Options(
	fx.Provide(NewStoreFacade),
	fx.Invoke(registerAdminSeed),
)

// Module wires the HTTP server, the token sweeper and their lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		newHTTPServer,
		newTokenSweeper,
	),
	fx.Invoke(registerLifecycle),
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type sweeperParams struct {
	fx.In

	Tokens *usecase.TokenIssuer
	Config *config.Config
	Logger *slog.Logger
}

func newTokenSweeper(p sweeperParams) *worker.TokenSweeper {
	return worker.NewTokenSweeper(p.Tokens, p.Config.TokenSweepInterval, p.Logger)
}

type seedParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Auth      *usecase.AuthUseCase
	Config    *config.Config
}

// registerAdminSeed creates the bootstrap admin account once the graph starts.
func registerAdminSeed(p seedParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return p.Auth.EnsureAdmin(ctx, p.Config.AdminUsername, p.Config.AdminPassword)
		},
	})
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Sweeper    *worker.TokenSweeper
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting digistore", slog.String("addr", p.Server.Addr))
			// The start context expires once fx finishes starting.
			p.Sweeper.Start(context.WithoutCancel(ctx))
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Sweeper.Stop()

			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("digistore stopped")
			return nil
		},
	})
}
