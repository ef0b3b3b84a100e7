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

	"formdeck/internal/config"
	"formdeck/internal/debug"
	"formdeck/internal/userservice"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveLog = debug.Scope("serve")

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the user service proxy over HTTP",
		Long: `Start an HTTP server in front of the remote user service.

Endpoints:
  GET /healthz   liveness
  GET /user      the caller's user record
  PUT /user      merge a JSON object into the caller's record

Callers pass their token as "Authorization: Bearer TOKEN". The upstream
is configured through auth.* settings (FD_AUTH_URL, FD_AUTH_EMAIL, ...).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("addr") {
				if err := config.ApplyOverrides(map[string]any{config.KeyServerAddr: addr}); err != nil {
					return err
				}
			}
			debug.InitWriter(os.Stderr)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, config.GetString(config.KeyServerAddr), newServeHandler())
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", config.DefaultServerAddr, "Address to listen on")
	return cmd
}

func newServeHandler() http.Handler {
	client := userservice.NewClient(userservice.ConfigFromSettings(config.AuthSettings()))
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Mount("/", userservice.NewRouter(client))
	return r
}

// serve runs handler on addr until ctx is done, then shuts down gracefully.
func serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		serveLog.Logf("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	serveLog.Logf("stopped")
	return nil
}
