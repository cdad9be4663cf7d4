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

	httpAdapter "github.com/aretw0/tapevm/pkg/adapters/http"
	"github.com/spf13/cobra"
	"gopkg.in/tomb.v2"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the stateless HTTP server",
	Long: `Exposes the engine as a JSON API over HTTP. The server keeps no session
state: every response carries the token the client sends back to resume.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			cfg.Server.Addr, _ = cmd.Flags().GetString("addr")
		}

		rt, err := buildRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		opts := []httpAdapter.Option{httpAdapter.WithLogger(logger)}
		if rt.Metrics != nil {
			opts = append(opts, httpAdapter.WithMetrics(rt.Metrics.Handler()))
		}

		srv := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           httpAdapter.NewHandler(rt.Engine, opts...),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var t tomb.Tomb
		t.Go(func() error {
			logger.Info("Starting tapevm server", "addr", srv.Addr, "metrics", rt.Metrics != nil)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		t.Go(func() error {
			select {
			case <-ctx.Done():
				logger.Info("Start shutdown...")
			case <-t.Dying():
			}

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				_ = srv.Close()
				return fmt.Errorf("graceful shutdown did not complete in %v: %w", 5*time.Second, err)
			}
			return nil
		})

		if err := t.Wait(); err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("tapevm server stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (default from config, :8080)")
}
