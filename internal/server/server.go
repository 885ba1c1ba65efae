package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	bookingdomain "github.com/luciodale/booking-portal-sub002/internal/booking/domain"
	"github.com/luciodale/booking-portal-sub002/internal/config"
	feedomain "github.com/luciodale/booking-portal-sub002/internal/fee/domain"
	paymentdomain "github.com/luciodale/booking-portal-sub002/internal/payment/domain"
	pricingdomain "github.com/luciodale/booking-portal-sub002/internal/pricing/domain"
	propertydomain "github.com/luciodale/booking-portal-sub002/internal/property/domain"
	ratesdomain "github.com/luciodale/booking-portal-sub002/internal/rates/domain"
	settlementdomain "github.com/luciodale/booking-portal-sub002/internal/settlement/domain"
	taxdomain "github.com/luciodale/booking-portal-sub002/internal/tax/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Cfg        config.Config
	Log        *zap.Logger
	DB         *gorm.DB
	Properties propertydomain.Service
	Rates      ratesdomain.Service
	Pricing    pricingdomain.Service
	Bookings   bookingdomain.Service
	Checkout   paymentdomain.CheckoutService
	Webhooks   paymentdomain.Service
	Fees       feedomain.Service
	Taxes      taxdomain.Service
	Flags      settlementdomain.FlagService
}

type Server struct {
	cfg    config.Config
	log    *zap.Logger
	db     *gorm.DB
	engine *gin.Engine

	propertySvc propertydomain.Service
	ratesSvc    ratesdomain.Service
	pricingSvc  pricingdomain.Service
	bookingSvc  bookingdomain.Service
	checkoutSvc paymentdomain.CheckoutService
	webhookSvc  paymentdomain.Service
	feeSvc      feedomain.Service
	taxSvc      taxdomain.Service
	flagSvc     settlementdomain.FlagService
}

func New(p Params) *Server {
	s := &Server{
		cfg:         p.Cfg,
		log:         p.Log.Named("server"),
		db:          p.DB,
		propertySvc: p.Properties,
		ratesSvc:    p.Rates,
		pricingSvc:  p.Pricing,
		bookingSvc:  p.Bookings,
		checkoutSvc: p.Checkout,
		webhookSvc:  p.Webhooks,
		feeSvc:      p.Fees,
		taxSvc:      p.Taxes,
		flagSvc:     p.Flags,
	}
	s.engine = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	if s.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestID())
	r.Use(accessLog(s.log))
	r.Use(cors.New(corsConfig(s.cfg.HTTP.CORSAllowedOrigins)))

	r.GET("/healthz", s.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.POST("/quotes", s.CreateQuote)
	api.GET("/properties/:id", s.GetProperty)
	api.GET("/properties/:id/rates", s.GetRates)
	api.GET("/properties/:id/bookings", s.ListPropertyBookings)
	api.POST("/checkout/sessions", s.CreateCheckoutSession)
	api.POST("/webhooks/:provider", s.ReceiveWebhook)
	api.GET("/bookings/:id", s.GetBooking)
	api.GET("/bookings/:id/receipt", s.GetBookingReceipt)
	api.POST("/bookings/:id/cancel", s.CancelBooking)

	admin := api.Group("/admin")
	admin.POST("/properties", s.RegisterProperty)
	admin.GET("/brokers/:id/fee-override", s.GetFeeOverride)
	admin.PUT("/brokers/:id/fee-override", s.PutFeeOverride)
	admin.DELETE("/brokers/:id/fee-override", s.DeleteFeeOverride)
	admin.GET("/city-taxes", s.GetCityTaxes)
	admin.PUT("/city-taxes", s.PutCityTax)
	admin.GET("/settlement-flags", s.ListSettlementFlags)
	admin.POST("/settlement-flags/:id/resolve", s.ResolveSettlementFlag)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key", requestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Type", requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	cleaned := make([]string, 0, len(origins))
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			cleaned = append(cleaned, o)
		}
	}
	if len(cleaned) == 0 || (len(cleaned) == 1 && cleaned[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = cleaned
	return cfg
}

func (s *Server) Health(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		s.log.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
