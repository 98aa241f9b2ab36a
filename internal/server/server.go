package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"workbooster/internal/config"
	"workbooster/internal/database"
	"workbooster/internal/handlers"
	"workbooster/internal/jobs"
	"workbooster/internal/logger"
	"workbooster/internal/metrics"
	"workbooster/internal/middlewares"
	"workbooster/internal/repositories"
	"workbooster/internal/routes"
	"workbooster/internal/services"
	"workbooster/internal/utils"
	"workbooster/internal/validation"
)

type Server struct {
	http      *http.Server
	pool      *pgxpool.Pool
	rdb       *redis.Client
	scheduler *jobs.Scheduler
	limiter   *middlewares.RateLimiter
	log       logger.Logger
	ctx       context.Context
	stop      context.CancelFunc
}

// NewServer connects to Postgres and Redis, refuses to start on an outdated schema and
// wires the router. Nothing is listening until Start.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	log := logger.Default()
	validation.UseWithGin()

	tokens, err := utils.NewTokenIssuer(cfg.AccessTokenSecret, cfg.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("access token config: %w", err)
	}

	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := database.CheckCurrent(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	redisRepo := repositories.NewRedisRepository(rdb)
	{
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := redisRepo.Ping(pingCtx); err != nil {
			pool.Close()
			_ = rdb.Close()
			return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
		}
		log.Info("connected to redis", "addr", opts.Addr)
	}

	m := metrics.New()

	// Dependency injection
	userRepo := repositories.NewUserRepository(pool)
	accountRepo := repositories.NewAccountRepository(pool)
	leadRepo := repositories.NewLeadRepository(pool)
	lookupRepo := repositories.NewLookupRepository(pool)
	callRepo := repositories.NewTelecallRepository(pool)
	meetingRepo := repositories.NewMeetingRepository(pool)
	dashboardRepo := repositories.NewDashboardRepository(pool)

	authService := services.NewAuthService(userRepo, redisRepo, tokens)
	userService := services.NewUserService(userRepo)
	accountService := services.NewAccountService(accountRepo, userRepo, cfg.PhoneDefaultRegion)
	leadService := services.NewLeadService(leadRepo, accountRepo, lookupRepo, userRepo, m)
	importService := services.NewImportService(accountService, leadService, lookupRepo, m, cfg.ImportMaxRows)
	exportService := services.NewExportService(leadService)
	telecallService := services.NewTelecallService(callRepo, leadRepo, m)
	meetingService := services.NewMeetingService(meetingRepo, accountRepo, leadRepo)
	masterService := services.NewMasterService(lookupRepo, userRepo, redisRepo)
	dashboardService := services.NewDashboardService(dashboardRepo, callRepo)

	scheduler := jobs.NewScheduler(log)
	if err := scheduler.AddScoreJob(cfg.ScoreCron, jobs.NewScoreJob(accountRepo, m, log)); err != nil {
		pool.Close()
		_ = rdb.Close()
		return nil, err
	}

	limiter := middlewares.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middlewares.RequestLogger(log),
		middlewares.CORS(cfg.CORSAllowedOrigins),
		limiter.Middleware(),
		m.Middleware(),
	)
	routes.RegisterRoutes(router, routes.Handlers{
		Auth:      handlers.NewAuthHandler(authService),
		Users:     handlers.NewUserHandler(userService),
		Accounts:  handlers.NewAccountHandler(accountService, meetingService),
		Leads:     handlers.NewLeadHandler(leadService, importService, exportService, telecallService),
		Masters:   handlers.NewMasterHandler(masterService),
		Dashboard: handlers.NewDashboardHandler(dashboardService),
		Health:    handlers.NewHealthHandler(map[string]handlers.Pinger{"database": pool, "redis": redisRepo}),
		Metrics:   m.Handler(),
	}, middlewares.Authenticate(authService))

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return newServer(httpServer, pool, rdb, scheduler, limiter, log), nil
}

// newServer owns the workers' context from construction on, so Start and Shutdown may run
// on different goroutines.
func newServer(h *http.Server, pool *pgxpool.Pool, rdb *redis.Client, scheduler *jobs.Scheduler, limiter *middlewares.RateLimiter, log logger.Logger) *Server {
	ctx, stop := context.WithCancel(context.Background())
	return &Server{
		http:      h,
		pool:      pool,
		rdb:       rdb,
		scheduler: scheduler,
		limiter:   limiter,
		log:       log,
		ctx:       ctx,
		stop:      stop,
	}
}

func (s *Server) Addr() string {
	return s.http.Addr
}

// Start runs the background workers and blocks serving HTTP until Shutdown.
func (s *Server) Start() error {
	go s.limiter.Cleanup(s.ctx)
	s.scheduler.Start()

	s.log.Info("server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests, waits for a running score job and closes the
// connections.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	s.stop()
	s.scheduler.Stop(ctx)
	if cerr := s.rdb.Close(); cerr != nil {
		s.log.Warn("closing redis", "error", cerr)
	}
	s.pool.Close()
	return err
}
