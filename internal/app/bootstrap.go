package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/ferdiebergado/goexpress"
	"github.com/ferdiebergado/gopherkit/env"
	"github.com/ferdiebergado/storyboard/internal/config"
	"github.com/ferdiebergado/storyboard/internal/gateway"
	"github.com/ferdiebergado/storyboard/internal/middleware"
	"github.com/ferdiebergado/storyboard/internal/pkg/logging"
	"github.com/ferdiebergado/storyboard/internal/pkg/message"
	"github.com/ferdiebergado/storyboard/internal/platform/db"
	"github.com/ferdiebergado/storyboard/internal/platform/router"
	"github.com/ferdiebergado/storyboard/internal/platform/telemetry"
)

const envKey = "KEY"

// Options locates the files the server reads at startup.
type Options struct {
	ConfigFile string
	// EnvFile is loaded outside production only. Empty skips it.
	EnvFile string
}

// Run loads the configuration, connects the dependencies and serves until
// ctx is cancelled.
func Run(ctx context.Context, opts Options) (err error) {
	slog.Info("Initializing...", "config_file", opts.ConfigFile)

	if opts.EnvFile != "" && os.Getenv("ENV") != "production" {
		if err := env.Load(opts.EnvFile); err != nil {
			return fmt.Errorf("load env file %s: %w", opts.EnvFile, err)
		}
	}

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return err
	}

	logging.SetupLogger(logging.Options{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		File:  cfg.App.LogFile,
	}, os.Stderr)

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, shutdownTracing(context.WithoutCancel(ctx)))
	}()

	securityKey, ok := os.LookupEnv(envKey)
	if !ok {
		return fmt.Errorf(message.EnvErrFmt, envKey)
	}

	dbConn, err := db.NewPostgresDB(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	provider, err := newProvider(cfg, securityKey, dbConn)
	if err != nil {
		return err
	}

	edge := []router.Middleware{
		middleware.RequestID,
		middleware.CORS(cfg.Server.AllowedOrigins),
	}
	api := New(cfg, provider, edge, RouteMiddlewares())
	if err := api.Start(ctx); err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	return api.Shutdown()
}

// RouteMiddlewares run on every matched route, in order. The admin gateway
// relays bodies verbatim, so it skips the JSON content-type check.
func RouteMiddlewares() []router.Middleware {
	return []router.Middleware{
		middleware.Trace,
		middleware.LogRequest,
		goexpress.RecoverFromPanic,
		middleware.CheckContentTypeExcept(gateway.Prefix + "/"),
		middleware.ContextGuard,
	}
}
