package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/restobooking/api"
	"github.com/Domenick1991/restobooking/config"
	"github.com/Domenick1991/restobooking/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NewRouter mounts every handler under /api/v1 plus /healthz.
func NewRouter(app *App) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	api.NewHealthHandler(app.Agent).Register(router)

	v1 := router.Group("/api/v1")
	api.NewTableHandler(app.Ledger).Register(v1.Group("/tables"))
	api.NewBookingHandler(app.Ledger).Register(v1.Group("/bookings"))
	api.NewCustomerHandler(app.Ledger).Register(v1.Group("/customers"))
	api.NewOrderHandler(app.Ledger).Register(v1.Group("/orders"))
	api.NewAssistantHandler(app.Assistant).Register(v1.Group("/assistant"))
	api.NewMaintenanceHandler(app.Ledger).Register(v1.Group("/maintenance"))
	return router
}

// Run serves HTTP and blocks until ctx is canceled or the server fails.
func Run(ctx context.Context, cfg *config.Config, app *App) error {
	srv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           NewRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithComponent("http").WithField("addr", cfg.HTTP.Address).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func requestLogger() gin.HandlerFunc {
	log := logger.WithComponent("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Debug("request")
	}
}
