package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	httpDelivery "github.com/forkandfind/client/internal/delivery/http"
	"github.com/forkandfind/client/internal/domain"
	"github.com/forkandfind/client/internal/infrastructure/cache"
	"github.com/forkandfind/client/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// serveCmd starts the local browser view
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the homepage over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServer(ctx)
	},
}

func runServer(ctx context.Context) error {
	logger.Info("starting ForkAndFind",
		zap.String("version", "1.0.0"),
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("store", cfg.Store.Type))

	if cfg.Server.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	memoryCache := cache.NewMemoryCache()
	defer memoryCache.Close()

	prefs, closePrefs, err := openPreferences()
	if err != nil {
		return fmt.Errorf("failed to open preference store: %w", err)
	}
	defer closePrefs()

	client := newClient()
	catalog := newCatalog(client)

	products := usecase.NewProductService(memoryCache, client, usecase.ProductServiceConfig{
		CacheTTL: cfg.Cache.TTL,
	}, logger)

	sessions := httpDelivery.NewSessionManager(memoryCache, prefs,
		func(p domain.PreferenceStore, sentinel usecase.ViewportSentinel) *usecase.Homepage {
			return usecase.NewHomepage(client, catalog, p, sentinel, logger)
		}, cfg.Cache.SessionTTL, logger)

	handler := httpDelivery.NewHandler(sessions, catalog, products, logger)
	router := httpDelivery.SetupRouter(cfg, handler, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
