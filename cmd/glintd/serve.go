package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/glint-ui/glint/pkg/server"
)

func serveCmd() *cobra.Command {
	var (
		addr     string
		logJSON  bool
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the demo application server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := buildLogger(logJSON, logLevel)
			if err != nil {
				return err
			}

			cfg := server.DefaultServerConfig()
			cfg.Address = addr

			srv := server.New(cfg, logger)
			registerDemoPages(srv)

			stopClock := startClock(srv)
			defer stopClock()

			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe() }()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logger.Info("signal received", "signal", sig.String())
			}

			return srv.Shutdown(context.Background())
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8420", "Listen address")
	cmd.Flags().BoolVar(&logJSON, "log-json", false, "Log in JSON format")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	return cmd
}

func buildLogger(jsonFormat bool, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if jsonFormat {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler), nil
}

// startClock broadcasts the wall time to every connected session once a
// second. Pages showing the clock render an element with id "demo-clock".
func startClock(srv *server.Server) func() {
	ticker := time.NewTicker(time.Second)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-done:
				return
			case now := <-ticker.C:
				broadcastClock(srv.Broadcaster(), now)
			}
		}
	}()

	return func() {
		ticker.Stop()
		close(done)
	}
}
