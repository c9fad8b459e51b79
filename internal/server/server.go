package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tallybook/ledgerd/internal/account"
	accountdomain "github.com/tallybook/ledgerd/internal/account/domain"
	"github.com/tallybook/ledgerd/internal/config"
	"github.com/tallybook/ledgerd/internal/journal"
	journaldomain "github.com/tallybook/ledgerd/internal/journal/domain"
	"github.com/tallybook/ledgerd/internal/paymentaccount"
	paymentaccountdomain "github.com/tallybook/ledgerd/internal/paymentaccount/domain"
	"github.com/tallybook/ledgerd/internal/reporting"
	reportingdomain "github.com/tallybook/ledgerd/internal/reporting/domain"
	"github.com/tallybook/ledgerd/internal/tenant"
	tenantdomain "github.com/tallybook/ledgerd/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	account.Module,
	journal.Module,
	reporting.Module,
	paymentaccount.Module,
	tenant.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type Server struct {
	engine            *gin.Engine
	cfg               config.Config
	log               *zap.Logger
	tenantSvc         tenantdomain.Service
	accountSvc        accountdomain.Service
	journalSvc        journaldomain.Service
	reportingSvc      reportingdomain.Service
	paymentAccountSvc paymentaccountdomain.Service
}

type ServerParams struct {
	fx.In

	Gin               *gin.Engine
	Cfg               config.Config
	Log               *zap.Logger
	TenantSvc         tenantdomain.Service
	AccountSvc        accountdomain.Service
	JournalSvc        journaldomain.Service
	ReportingSvc      reportingdomain.Service
	PaymentAccountSvc paymentaccountdomain.Service
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:            p.Gin,
		cfg:               p.Cfg,
		log:               p.Log.Named("http.server"),
		tenantSvc:         p.TenantSvc,
		accountSvc:        p.AccountSvc,
		journalSvc:        p.JournalSvc,
		reportingSvc:      p.ReportingSvc,
		paymentAccountSvc: p.PaymentAccountSvc,
	}
}

func registerRoutes(s *Server) {
	s.RegisterAPIRoutes()
}

// RegisterAPIRoutes mounts the ledger API. Everything under /v1 except
// tenant provisioning requires the X-Tenant-ID header.
func (s *Server) RegisterAPIRoutes() {
	v1 := s.engine.Group("/v1")

	v1.POST("/tenants", s.provisionTenant)
	v1.GET("/tenants", s.listTenants)
	v1.GET("/tenants/:id", s.getTenant)

	scoped := v1.Group("")
	scoped.Use(TenantMiddleware())

	scoped.POST("/accounts", s.createAccount)
	scoped.GET("/accounts", s.listAccounts)
	scoped.GET("/accounts/hierarchy", s.accountHierarchy)
	scoped.GET("/accounts/:code", s.getAccount)
	scoped.PUT("/accounts/:code", s.upsertAccount)
	scoped.POST("/accounts/:code/deactivate", s.deactivateAccount)
	scoped.GET("/accounts/:code/rollup", s.rollupBalance)
	scoped.GET("/system-tags/:tag", s.resolveSystemTag)

	scoped.POST("/journals", s.postJournal)
	scoped.POST("/journals/by-tags", s.postJournalByTags)
	scoped.GET("/journals/:id", s.getJournal)
	scoped.POST("/journals/:id/void", s.voidJournal)

	scoped.GET("/balances/:account_id", s.accountBalance)
	scoped.GET("/statements/:account_id", s.statement)
	scoped.GET("/trial-balance", s.trialBalance)

	scoped.POST("/payment-accounts", s.registerPaymentAccount)
	scoped.GET("/payment-accounts", s.listPaymentAccounts)
	scoped.POST("/payment-accounts/:id/status", s.setPaymentAccountStatus)
}

func run(lc fx.Lifecycle, s *Server) {
	srv := &http.Server{
		Addr:    s.cfg.HTTPAddr,
		Handler: s.engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					s.log.Fatal("http server failed", zap.Error(err))
				}
			}()
			s.log.Info("http server listening", zap.String("addr", s.cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http.access")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
