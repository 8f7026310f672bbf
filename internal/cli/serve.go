package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/raysh454/policysim/internal/app"
	"github.com/raysh454/policysim/internal/logging"
	"github.com/raysh454/policysim/internal/server"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(o *options) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web dashboard, JSON API and websocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen != "" {
				o.cfg.Server.ListenAddr = listen
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, o.cfg, o.logger)
		},
	}
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (overrides server.listen_addr)")
	return cmd
}

// serve runs the HTTP server and the dataset watcher until ctx is done, then
// shuts both down.
func serve(ctx context.Context, cfg *app.Config, logger logging.Logger) error {
	a, err := app.NewApplication(cfg, logger)
	if err != nil {
		return err
	}
	if err := a.Start(ctx); err != nil {
		return err
	}

	srv, err := server.NewServer(server.Config{
		ListenAddr:  cfg.Server.ListenAddr,
		ReadTimeout: cfg.Server.ReadTimeout,
		AppConfig:   cfg,
		Logger:      logger.With(logging.Field{Key: "component", Value: "server"}),
	}, a.Dashboard)
	if err != nil {
		_ = a.Shutdown(context.Background())
		return err
	}
	httpSrv := srv.HTTPServer()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", logging.Field{Key: "addr", Value: httpSrv.Addr})
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		srv.Close()
		err := httpSrv.Shutdown(shutdownCtx)
		if aerr := a.Shutdown(shutdownCtx); err == nil {
			err = aerr
		}
		return err
	})
	return g.Wait()
}
