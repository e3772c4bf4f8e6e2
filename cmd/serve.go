package main

import (
	"context"
	"errors"
	"github.com/lilhop36/osta-job-portal-sub001/internal/api"
	"github.com/lilhop36/osta-job-portal-sub001/internal/metrics"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"net/http"
	"os/signal"
	"syscall"
	"time"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and run scheduled reevaluations",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if spec := a.cfg.Evaluation.ReevaluationCron; spec != "" {
		if err = a.reevaluator.Schedule(spec); err != nil {
			return err
		}
	}

	handler := api.NewHandler(a.engine, a.machine)
	server := &http.Server{
		Addr:              a.cfg.HTTP.Address,
		Handler:           api.NewRouter(handler, a.cfg.HTTP.MetricsPath, metrics.Handler()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err = <-serverErr:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down services...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("failed to shut down http server: %v", err)
	}
	log.Info("Services stopped.")
	return nil
}
