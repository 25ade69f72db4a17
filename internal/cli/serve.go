package cli

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Kamar-Folarin/commit-health/internal/api"
	"github.com/Kamar-Folarin/commit-health/internal/scheduler"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the background sync scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.app(cmd, true)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.serve(cmd.Context())
		},
	}
}

// serve blocks until ctx is done, then shuts the server down gracefully
func (a *app) serve(ctx context.Context) error {
	if a.logger.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	handler := api.NewHandler(a.store, a.syncer, a.scorer, a.logger)
	router := api.SetupRouter(handler, a.metrics.Handler())

	server := &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      api.CORS(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // POST /sync blocks until the sync finishes
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		a.logger.Infof("Server starting on port %s", a.cfg.Port)
		if err := server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	sched := scheduler.New(a.syncer, a.cfg.Sync.DefaultRepository, a.cfg.Sync.Schedule, a.logger)
	if err := sched.Start(ctx); err != nil {
		a.logger.WithError(err).Error("Failed to start sync scheduler")
	}

	select {
	case err := <-serverErr:
		sched.Stop()
		return err
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down server...")
	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		a.logger.Errorf("Server shutdown failed: %v", err)
		return err
	}
	a.logger.Info("Server exited properly")
	return nil
}
