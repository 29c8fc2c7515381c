package cli

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/okian/ratefit/internal/adapters/http/api"
	"github.com/okian/ratefit/internal/adapters/http/swagger"
	"github.com/okian/ratefit/pkg/logger"
	"github.com/okian/ratefit/pkg/metrics"
	"github.com/spf13/cobra"
)

// HTTP server timeouts.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

// Serve builds the serve command. It optionally runs one estimation pass,
// then serves the API until interrupted.
func Serve() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the leaderboard and stored problem models over HTTP",
		Args:  cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr, _ = cmd.Flags().GetString("addr")
			}
			if cmd.Flags().Changed("input") {
				cfg.Input, _ = cmd.Flags().GetString("input")
			}
			if err := applyRunFlags(cmd, cfg); err != nil {
				return err
			}

			ctx := cmd.Context()
			log := logger.Get().Named("serve")

			svc, err := newService(ctx, cfg)
			if err != nil {
				return err
			}
			defer svc.Close()

			if skip, _ := cmd.Flags().GetBool("no-estimate"); !skip {
				rep, err := svc.Run(ctx, cfg.Input)
				if err != nil {
					return err
				}
				printReport(cmd.OutOrStdout(), rep)
			}

			mux := http.NewServeMux()
			api.NewServer(svc, cfg.MaxLeaderboardLimit).Register(mux)
			swagger.Register(mux)

			srv := newHTTPServer(cfg.Addr, mux)
			go updateSystemMetrics(ctx)
			return serve(ctx, srv, log)
		},
	}

	addRunFlags(cmd)
	cmd.Flags().String("addr", "", "HTTP listen address")
	cmd.Flags().StringP("input", "i", "", "Contest file or directory to estimate from before serving")
	cmd.Flags().Bool("no-estimate", false, "Serve stored models without replaying the history")

	return cmd
}

func newHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// serve runs srv until ctx is cancelled, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server, log logger.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
		return err
	}
	log.Info(ctx, "server stopped")
	return nil
}

func updateSystemMetrics(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		metrics.UpdateSystemMemoryUsage(m.Alloc)
		metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
