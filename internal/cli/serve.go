package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/okian/tiewatch/internal/adapters/http/api"
	"github.com/okian/tiewatch/internal/adapters/http/swagger"
	service "github.com/okian/tiewatch/internal/app"
	"github.com/okian/tiewatch/internal/config"
	"github.com/okian/tiewatch/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

// Serve returns the serve command.
func Serve(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis over HTTP",
		Args:  cobra.NoArgs,
		Long: heredoc.Doc(`serve analyses the group phase at startup and exposes the
			latest result over HTTP:

			  GET /groups         group summaries as JSON
			  GET /groups/{id}    one group with every branch
			  GET /report         the text report
			  GET /stats          service counters
			  GET /healthz        Prometheus metrics
			  GET /api-docs       API documentation

			With --refresh the analysis is repeated at that interval. A
			failed refresh is logged and the previous result stays up.`),
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := cmd.Flags()
			if f.Changed("addr") {
				env.cfg.Addr, _ = f.GetString("addr")
			}
			if f.Changed("refresh") {
				d, _ := f.GetDuration("refresh")
				if d < 0 || d%time.Second != 0 {
					return fmt.Errorf("%w: --refresh must be a whole number of seconds, got %s", config.ErrInvalidConfig, d)
				}
				env.cfg.RefreshIntervalS = int(d / time.Second)
			}
			if err := applyFeedFlags(cmd, env.cfg); err != nil {
				return err
			}
			return serve(cmd.Context(), env)
		},
	}
	addFeedFlags(cmd)
	cmd.Flags().String("addr", "", "Listen address, e.g. :9080")
	cmd.Flags().Duration("refresh", 0, "Re-run the analysis at this interval in whole seconds; 0 runs it once")
	return cmd
}

func serve(ctx context.Context, env *environment) error {
	cfg := env.cfg
	log := logger.Named("serve")
	svc := newService(cfg)

	// HTTP mux and routes.
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc, service.ErrNoRun).Register(ctx, mux)

	srv := &http.Server{
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Addr, err)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	go svc.Watch(ctx, newSource(cfg), cfg.RefreshInterval())

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	if serveErr != nil {
		return fmt.Errorf("HTTP server failed: %w", serveErr)
	}
	return nil
}
