package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eringen/ogcard"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve cards over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := ogcard.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}
	if cmd.Flags().Changed("log-level") || cfg.LogLevel == "" {
		cfg.LogLevel = logLevel
	}
	appLogger, err := ogcard.NewLogger(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		return err
	}

	app := ogcard.New(cfg, ogcard.WithLogger(appLogger))
	if err := app.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		appLogger.Info("listening", zap.String("addr", app.Config.Addr))
		if err := app.Echo.Start(app.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			_ = app.Close()
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
	}

	appLogger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return app.Shutdown(shutdownCtx)
}
