package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bnema/orca/internal/application"
	"github.com/bnema/orca/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout   = 20 * time.Second
	readHeaderTimeout = 10 * time.Second
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the API server, the session manager and the idle host reaper",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if cfg.Log.Level != "debug" {
				gin.SetMode(gin.ReleaseMode)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := wireApp(ctx, cfg, logger)
			if err != nil {
				return err
			}

			return serve(ctx, a)
		},
	}

	flags := cmd.Flags()
	flags.String("listen", "", "Listen address (overrides server.listen)")
	flags.Int("max-sessions", 0, "Per-machine session ceiling (overrides sessions.max)")
	flags.String("machine-id", "", "Machine id (overrides machine.id)")
	_ = opts.v.BindPFlag("server.listen", flags.Lookup("listen"))
	_ = opts.v.BindPFlag("sessions.max", flags.Lookup("max-sessions"))
	_ = opts.v.BindPFlag("machine.id", flags.Lookup("machine-id"))

	return cmd
}

// serve runs until ctx is done, then drains HTTP and stops local sessions.
func serve(ctx context.Context, a *app) error {
	logger := a.logger
	srv := &http.Server{
		Addr:              a.cfg.Server.Listen,
		Handler:           a.router(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("listening",
			zap.String("addr", srv.Addr),
			zap.String("machine_id", a.cfg.Machine.ID),
			zap.String("public_address", a.cfg.Machine.PublicAddress))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return application.NewReaper(a.hosts, a.cfg.Hosts.ReapInterval, logger).Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		return errors.Join(err, a.Close(shutdownCtx))
	})

	return g.Wait()
}
