package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"tailor_shop/internal/config"
	"tailor_shop/internal/handlers"
	"tailor_shop/internal/logger"
	"tailor_shop/internal/migrations"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var migrateOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Star Tailors REST API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", true, "migrate the schema and seed defaults before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	log := logger.New(cfg.AppEnv)
	if cfg.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.ping(ctx); err != nil {
		return fmt.Errorf("redis is not reachable: %w", err)
	}

	if migrateOnStart {
		admin := migrations.Admin{Username: cfg.AdminUsername, Password: cfg.AdminPassword}
		if err := migrations.RunMigrations(ctx, a.db, admin, log); err != nil {
			return err
		}
	}

	router := handlers.NewRouter(handlers.NewAPIHandler(a.services, log), log, handlers.RouterOptions{
		Middleware: []gin.HandlerFunc{a.metrics.Middleware()},
		Metrics:    a.metrics.Handler(),
	})
	srv := &http.Server{Addr: ":" + cfg.ServerPort, Handler: router}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.Info("server starting", "port", cfg.ServerPort, "env", cfg.AppEnv)

	select {
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
