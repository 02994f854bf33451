package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/ledgerline/invoicer/internal/auth"
	authdomain "github.com/ledgerline/invoicer/internal/auth/domain"
	"github.com/ledgerline/invoicer/internal/config"
	"github.com/ledgerline/invoicer/internal/customer"
	customerdomain "github.com/ledgerline/invoicer/internal/customer/domain"
	"github.com/ledgerline/invoicer/internal/invoice"
	invoicedomain "github.com/ledgerline/invoicer/internal/invoice/domain"
	"github.com/ledgerline/invoicer/internal/observability"
	obsmiddleware "github.com/ledgerline/invoicer/internal/observability/logger"
	obsmetrics "github.com/ledgerline/invoicer/internal/observability/metrics"
	obstracing "github.com/ledgerline/invoicer/internal/observability/tracing"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	auth.Module,
	customer.Module,
	invoice.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger, shutdowner fx.Shutdowner) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}
	log = log.Named("http.server")

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// Binding here surfaces an occupied port as a start error instead
			// of a failure inside the serve goroutine.
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
					if shutdownErr := shutdowner.Shutdown(); shutdownErr != nil {
						log.Error("shutdown request failed", zap.Error(shutdownErr))
					}
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
	engine      *gin.Engine
	cfg         config.Config
	db          *gorm.DB
	genID       *snowflake.Node
	authsvc     authdomain.Service
	customerSvc customerdomain.Service
	invoiceSvc  invoicedomain.Service
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	DB          *gorm.DB
	GenID       *snowflake.Node
	Authsvc     authdomain.Service
	CustomerSvc customerdomain.Service
	InvoiceSvc  invoicedomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		db:          p.DB,
		genID:       p.GenID,
		authsvc:     p.Authsvc,
		customerSvc: p.CustomerSvc,
		invoiceSvc:  p.InvoiceSvc,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	authGroup := s.engine.Group("/api/auth")

	authGroup.POST("/register", s.Register)
	authGroup.POST("/login", s.Login)
	authGroup.POST("/refresh", s.Refresh)

	user := s.engine.Group("/api/user", s.AuthRequired())
	{
		user.PATCH("/password", s.ChangePassword)
		user.PATCH("/profile", s.UpdateProfile)
	}
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.AuthRequired())

	// -------- Customers --------
	api.GET("/customer/all", s.ListAllCustomers)
	api.GET("/customer", s.ListCustomers)
	api.GET("/customer/:id", s.GetCustomerByID)
	api.POST("/customer", s.CreateCustomer)
	api.PUT("/customer/:id", s.UpdateCustomer)
	api.DELETE("/customer/soft/:id", s.SoftDeleteCustomer)
	api.DELETE("/customer/hard/:id", s.HardDeleteCustomer)

	// -------- Invoices --------
	api.GET("/invoice/all", s.ListAllInvoices)
	api.GET("/invoice", s.ListInvoices)
	api.GET("/invoice/customer/:customerId", s.ListInvoicesByCustomer)
	api.GET("/invoice/:id", s.GetInvoiceByID)
	api.POST("/invoice", s.CreateInvoice)
	api.PUT("/invoice/:id", s.UpdateInvoice)
	api.PATCH("/invoice/:id", s.ChangeInvoiceStatus)
	api.DELETE("/invoice/soft/:id", s.SoftDeleteInvoice)
	api.DELETE("/invoice/hard/:id", s.HardDeleteInvoice)

	// -------- Invoice rows --------
	api.GET("/invoicerow", s.ListInvoiceRows)
	api.GET("/invoicerow/invoice/:invoiceId", s.ListInvoiceRowsByInvoice)
	api.GET("/invoicerow/:id", s.GetInvoiceRowByID)
	api.POST("/invoicerow", s.CreateInvoiceRow)
	api.PUT("/invoicerow/:id", s.UpdateInvoiceRow)
	api.DELETE("/invoicerow/hard/:id", s.HardDeleteInvoiceRow)
}
