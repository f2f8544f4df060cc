package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-portfolio"
	"github.com/goliatone/go-portfolio/internal/jobs"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the API, uploads and static site",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfig(cmd)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			runner := jobs.NewRunner()
			var opts []portfolio.Option
			if cfg.Commands.UploadsCleanupSchedule != "" {
				opts = append(opts, portfolio.WithCronRegistrar(runner.Register))
			}
			module, err := moduleBuilder(cfg, opts...)
			if err != nil {
				return err
			}
			defer module.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if runner.Len() > 0 {
				runner.Start(ctx)
				defer runner.Wait()
				defer stop()
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Uploads cleanup scheduled (%s)\n", cfg.Commands.UploadsCleanupSchedule)
			}

			srv := &http.Server{
				Addr:              cfg.Server.Addr,
				Handler:           module.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			return serve(ctx, srv, cfg.Server.ShutdownTimeout, cmd)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

// serve runs srv until ctx is cancelled, then shuts it down within timeout.
func serve(ctx context.Context, srv *http.Server, timeout time.Duration, cmd *cobra.Command) error {
	errCh := make(chan error, 1)
	go func() {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Server running on %s\n", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Server stopped")
	return nil
}
