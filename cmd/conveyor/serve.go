package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpadapter "github.com/calvora/conveyor/internal/adapters/http"
	"github.com/calvora/conveyor/internal/runtime"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the orchestration HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			interp := runtime.NewInterpreter(a.core.Host(), a.core.Registry(),
				runtime.WithLogger(a.logger),
			)
			handler := httpadapter.NewHandler(&httpadapter.Server{
				Transfers:     a.transfers,
				Translates:    a.translates,
				Interpreter:   interp,
				Ledger:        a.ledger,
				Redis:         a.redis,
				Gatherer:      a.registry,
				ListenTimeout: a.cfg.Queue.ListenTimeout,
				Logger:        a.logger,
			})

			srv := &http.Server{
				Addr:              a.cfg.HTTP.Addr,
				Handler:           handler,
				ReadHeaderTimeout: 5 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errs := make(chan error, 1)
			go func() {
				a.logger.Info("http server listening", "addr", a.cfg.HTTP.Addr)
				errs <- srv.ListenAndServe()
			}()

			select {
			case err := <-errs:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				a.logger.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}
}
