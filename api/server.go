package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	db "github.com/Swyp/Swyp-Backend/db/sqlc"
	"github.com/Swyp/Swyp-Backend/internal/attestation"
	payment "github.com/Swyp/Swyp-Backend/internal/payment/handler"
	"github.com/Swyp/Swyp-Backend/internal/payment/repository"
	"github.com/Swyp/Swyp-Backend/internal/payment/service"
	"github.com/Swyp/Swyp-Backend/internal/transfer"
	"github.com/Swyp/Swyp-Backend/internal/webhook"
	"github.com/Swyp/Swyp-Backend/middleware"
	"github.com/Swyp/Swyp-Backend/models"
	"github.com/Swyp/Swyp-Backend/providers"
	iris "github.com/Swyp/Swyp-Backend/providers/attestation"
	"github.com/Swyp/Swyp-Backend/providers/chain"
	"github.com/Swyp/Swyp-Backend/services/cache"
	"github.com/Swyp/Swyp-Backend/services/events"
	"github.com/Swyp/Swyp-Backend/services/monitoring/logging"
	"github.com/Swyp/Swyp-Backend/services/monitoring/metrics"
	"github.com/Swyp/Swyp-Backend/services/monitoring/tasks"
	"github.com/Swyp/Swyp-Backend/services/monitoring/telemetry"
	"github.com/Swyp/Swyp-Backend/services/redis"
	"github.com/Swyp/Swyp-Backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const (
	serviceName      = "swyp-settlement"
	merchantCacheTTL = 30 * time.Second
	expiryTaskID     = "expire_payments"
	recoveryTaskID   = "recover_settlements"
)

type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	conn       *sql.DB
	config     *utils.Config
	logger     *logging.Logger
	provider   *providers.ProviderService
	redis      *redis.RedisService
	publisher  events.Publisher
	dispatcher *webhook.Dispatcher
	monitor    *attestation.Monitor
	scheduler  *tasks.TaskScheduler
	payments   *service.PaymentService
	gateways   chain.Gateways

	closeChains     func()
	shutdownTracing func(context.Context) error
}

func NewServer(c *utils.Config) *Server {
	ctx := context.Background()
	l := logging.NewLogger(c)

	if err := models.InitIDHasher(c.SigningKey); err != nil {
		panic(fmt.Sprintf("Could not initialise id hasher: %v", err))
	}

	shutdownTracing, err := telemetry.InitTracing(ctx, serviceName, c.OTELEndpoint)
	if err != nil {
		panic(fmt.Sprintf("Could not start tracing: %v", err))
	}

	conn, err := sql.Open(c.DBDriver, utils.GetDBSource(c, c.DBName))
	if err != nil {
		panic(fmt.Sprintf("Could not load DB: %v", err))
	}

	m, err := migrate.New(
		"file://db/migrations",
		utils.GetDBSource(c, c.DBName),
	)
	if err != nil {
		log.Fatalf("Unable to instantiate the database schema migrator - %v", err)
	}

	if err := m.Up(); err != nil {
		if err != migrate.ErrNoChange {
			log.Fatalf("Unable to migrate up to the latest database schema - %v", err)
		}
	}

	store := db.NewStore(conn)
	paymentRepo := repository.NewSQLPaymentRepository(store)
	merchantRepo := cache.NewMerchantCache(repository.NewSQLMerchantRepository(store.Queries), merchantCacheTTL)
	jobRepo := repository.NewSQLAttestationJobRepository(store.Queries)
	deliveryRepo := repository.NewSQLWebhookDeliveryRepository(store.Queries)

	s := &Server{
		conn:            conn,
		config:          c,
		logger:          l,
		provider:        providers.NewProviderService(),
		shutdownTracing: shutdownTracing,
	}

	var locker service.Locker
	if c.RedisHost != "" {
		rs, err := redis.NewRedisService(&redis.RedisConfig{
			Host:     c.RedisHost,
			Port:     c.RedisPort,
			Password: c.RedisPassword,
		})
		if err != nil {
			l.WithError(err).Warn("redis unavailable, processing lock disabled")
		} else {
			s.redis = rs
			locker = rs
		}
	}

	s.publisher = events.NewPublisher(c.KafkaBrokerList(), c.KafkaTopic)

	gateways, closeChains, err := chain.DialGateways(ctx, c, l)
	if err != nil {
		panic(fmt.Sprintf("Could not connect to chains: %v", err))
	}
	s.gateways = gateways
	s.closeChains = closeChains

	// Set up attestation provider
	ip := iris.NewIrisProvider(c.AttestationBaseURL, l)
	s.provider.AddProvider(ip)

	s.monitor = attestation.NewMonitor(jobRepo, ip, attestation.Config{
		PollInterval: c.AttestationPollInterval,
		MaxAttempts:  c.AttestationMaxAttempts,
	}, l)
	s.dispatcher = webhook.NewDispatcher(deliveryRepo, c.WebhookTimeout, l)
	s.provider.AddProvider(s.dispatcher)

	s.payments = service.NewPaymentService(&service.PaymentDependencies{
		Payments:  paymentRepo,
		Merchants: merchantRepo,
		Verifier:  service.NewChainVerifier(gateways),
		Transfers: transfer.NewOrchestrator(gateways, l),
		Monitor:   s.monitor,
		Notifier:  s.dispatcher,
		Publisher: s.publisher,
		Locker:    locker,
		Logger:    l,
		Config: service.Config{
			AppURL:     c.AppURL,
			PaymentTTL: c.PaymentTTL,
			Location:   c.Location(),
			AutoMint:   c.AutoMint,
		},
	})
	s.monitor.SetCompleter(s.payments)

	if err := s.payments.Resume(ctx); err != nil {
		l.WithError(err).Error("failed to resume attestation monitoring")
	}

	s.scheduler = tasks.NewTaskScheduler(l)
	if _, err := s.scheduler.AddTask(expiryTaskID, "Expire stale payments", func(ctx context.Context) error {
		_, err := s.payments.ExpireStalePayments(ctx)
		return err
	}, c.ExpirySweepInterval); err != nil {
		panic(fmt.Sprintf("Could not register expiry sweep: %v", err))
	}
	if _, err := s.scheduler.AddTask(recoveryTaskID, "Recover unfinished settlements", s.payments.Resume, c.RecoveryInterval); err != nil {
		panic(fmt.Sprintf("Could not register settlement recovery: %v", err))
	}

	g := gin.New()
	g.Use(gin.Recovery())
	g.Use(otelgin.Middleware(serviceName))
	g.Use(middleware.CORSMiddleware())
	g.Use(l.LoggingMiddleWare())
	g.Use(metrics.MetricsMiddleware())
	s.router = g

	return s
}

func (s *Server) Start() error {

	dr := models.SuccessResponse{
		Status:  "success",
		Message: "Welcome to Swyp!",
		Version: utils.REVISION,
	}

	s.router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, dr)
	})
	s.router.GET("/health", s.health)
	s.router.GET("/metrics", metrics.PrometheusHandler())

	/// Register Object Routers Below
	payment.NewPaymentHandler(&payment.PaymentDependencies{
		Router:       s.router,
		Logger:       s.logger,
		Service:      s.payments,
		Tokens:       utils.NewJWTToken(s.config),
		AdminKeyHash: s.config.AdminKeyHash,
	}).RegisterRoutes()

	if err := s.scheduler.ScheduleTask(expiryTaskID, 0); err != nil {
		return err
	}
	// startup already ran Resume
	if err := s.scheduler.ScheduleTask(recoveryTaskID, s.config.RecoveryInterval); err != nil {
		return err
	}

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%v", s.config.ServerPort),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info(fmt.Sprintf("listening on %s", s.httpServer.Addr))

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type healthResponse struct {
	Database  string                `json:"database"`
	Redis     string                `json:"redis"`
	Chains    []string              `json:"chains"`
	Providers []string              `json:"providers"`
	Tasks     map[string]taskHealth `json:"tasks"`
}

type taskHealth struct {
	Runs      int        `json:"runs"`
	LastRun   *time.Time `json:"lastRun,omitempty"`
	LastError string     `json:"lastError,omitempty"`
}

func (s *Server) health(ctx *gin.Context) {
	c, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Database: "ok", Redis: "disabled", Providers: s.provider.Names()}
	for name := range s.gateways {
		resp.Chains = append(resp.Chains, name.String())
	}
	resp.Tasks = make(map[string]taskHealth)
	for _, id := range []string{expiryTaskID, recoveryTaskID} {
		task, err := s.scheduler.GetTask(id)
		if err != nil {
			continue
		}
		th := taskHealth{Runs: task.Runs}
		if !task.LastRun.IsZero() {
			lastRun := task.LastRun
			th.LastRun = &lastRun
		}
		if task.LastErr != nil {
			th.LastError = task.LastErr.Error()
		}
		resp.Tasks[id] = th
	}

	healthy := true
	if err := s.conn.PingContext(c); err != nil {
		resp.Database = "down"
		healthy = false
	}
	if s.redis != nil {
		resp.Redis = "ok"
		if err := s.redis.Ping(c); err != nil {
			resp.Redis = "down"
		}
	}

	if !healthy {
		ctx.JSON(http.StatusServiceUnavailable, models.NewSuccess("unhealthy", resp))
		return
	}
	ctx.JSON(http.StatusOK, models.NewSuccess("healthy", resp))
}

// Shutdown stops accepting requests, then drains background work in
// dependency order.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	s.scheduler.Shutdown()
	s.payments.Wait()
	s.monitor.Shutdown()
	s.dispatcher.Wait()

	if err := s.publisher.Close(); err != nil {
		errs = append(errs, err)
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closeChains()
	if err := s.conn.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.shutdownTracing(ctx); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
