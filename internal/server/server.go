package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/warebox/warebox/internal/alternatives"
	boxdomain "github.com/warebox/warebox/internal/box/domain"
	"github.com/warebox/warebox/internal/config"
	pricingdomain "github.com/warebox/warebox/internal/pricing/domain"
	"github.com/warebox/warebox/internal/recommendation"
	reservationdomain "github.com/warebox/warebox/internal/reservation/domain"
	subscriptiondomain "github.com/warebox/warebox/internal/subscription/domain"
	usagelogdomain "github.com/warebox/warebox/internal/usagelog/domain"
	warehousedomain "github.com/warebox/warebox/internal/warehouse/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, registry *prometheus.Registry) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return r
}

func run(lc fx.Lifecycle, log *zap.Logger, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	warehouseSvc    warehousedomain.Service
	boxSvc          boxdomain.Service
	pricingSvc      pricingdomain.Service
	reservationSvc  reservationdomain.Service
	subscriptionSvc subscriptiondomain.Service
	usageSvc        usagelogdomain.Service
	altFinder       alternatives.Finder
	recEngine       recommendation.Engine
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	WarehouseSvc    warehousedomain.Service
	BoxSvc          boxdomain.Service
	PricingSvc      pricingdomain.Service
	ReservationSvc  reservationdomain.Service
	SubscriptionSvc subscriptiondomain.Service
	UsageSvc        usagelogdomain.Service
	AltFinder       alternatives.Finder
	RecEngine       recommendation.Engine
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		warehouseSvc:    p.WarehouseSvc,
		boxSvc:          p.BoxSvc,
		pricingSvc:      p.PricingSvc,
		reservationSvc:  p.ReservationSvc,
		subscriptionSvc: p.SubscriptionSvc,
		usageSvc:        p.UsageSvc,
		altFinder:       p.AltFinder,
		recEngine:       p.RecEngine,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api/v1")

	warehouses := api.Group("/warehouses")
	{
		warehouses.GET("", s.ListWarehouses)
		warehouses.GET("/:id", s.GetWarehouse)
		warehouses.GET("/:id/boxes", s.ListWarehouseBoxes)
	}

	boxes := api.Group("/boxes")
	{
		boxes.GET("", s.SearchBoxes)
		boxes.GET("/:id", s.GetBox)
		boxes.GET("/:id/alternatives", s.FindAlternatives)
		boxes.GET("/:id/history", ClientRequired(), s.GetUsageHistory)
	}

	api.POST("/pricing/quote", s.QuotePrice)

	reservations := api.Group("/reservations", ClientRequired())
	{
		reservations.POST("", s.CreateReservation)
		reservations.GET("", s.ListReservations)
		reservations.GET("/:id", s.GetReservation)
		reservations.PATCH("/:id", s.UpdateReservation)
		reservations.POST("/:id/extend", s.ExtendReservation)
		reservations.POST("/:id/cancel", s.CancelReservation)
		reservations.POST("/:id/access", s.AccessBox)
	}

	subscriptions := api.Group("/subscriptions", ClientRequired())
	{
		subscriptions.POST("", s.CreateSubscription)
		subscriptions.GET("", s.ListSubscriptions)
		subscriptions.POST("/:id/deactivate", s.DeactivateSubscription)
	}

	api.GET("/recommendations", ClientRequired(), s.GetRecommendations)

	admin := api.Group("/admin")
	{
		admin.POST("/warehouses", s.UpsertWarehouse)
		admin.POST("/boxes", s.UpsertBox)
	}
}
