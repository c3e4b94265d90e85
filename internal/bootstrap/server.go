package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Domenick1991/airscheduling/api"
	"github.com/Domenick1991/airscheduling/config"
	"github.com/Domenick1991/airscheduling/internal/logging"
	"github.com/Domenick1991/airscheduling/internal/metrics"
	"github.com/Domenick1991/airscheduling/internal/service/booking"
	"github.com/Domenick1991/airscheduling/internal/service/fleet"
	"github.com/Domenick1991/airscheduling/internal/service/flights"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/sync/errgroup"
)

// Run starts the HTTP server and blocks until the context is canceled or
// the server fails.
func Run(ctx context.Context, cfg *config.Config, reg *metrics.Registry, flightSvc flights.FlightUseCase, orderSvc booking.OrderUseCase, fleetSvc fleet.FleetUseCase) error {
	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: NewRouter(cfg, reg, flightSvc, orderSvc, fleetSvc),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logging.Info("http server listening", "address", cfg.HTTP.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// NewRouter assembles the gin engine: API routes, metrics middleware and
// endpoint, swagger UI over the static OpenAPI document.
func NewRouter(cfg *config.Config, reg *metrics.Registry, flightSvc flights.FlightUseCase, orderSvc booking.OrderUseCase, fleetSvc fleet.FleetUseCase) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), reg.Middleware())

	api.NewFlightHandler(flightSvc).Register(router.Group("/flights"))
	api.NewOrderHandler(orderSvc).Register(router.Group("/orders"))
	api.NewFleetHandler(fleetSvc).Register(router.Group("/fleet"))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.HTTP.SwaggerDir != "" {
		router.StaticFS("/swagger", http.Dir(cfg.HTTP.SwaggerDir))
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/swagger/openapi.json"))))
	}
	return router
}
