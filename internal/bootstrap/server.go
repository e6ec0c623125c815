package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/airtickets/config"
	"github.com/Domenick1991/airtickets/internal/logger"
)

// Run serves handler on cfg.Address and blocks until ctx is canceled or the
// server fails. On cancel it waits up to the shutdown timeout for requests.
func Run(ctx context.Context, cfg config.HTTPConfig, handler http.Handler, log *logger.Logger) error {
	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", cfg.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeout := time.Duration(cfg.ShutdownTimeoutS) * time.Second
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		log.Info("shutting down http server", "timeout", timeout.String())
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}
