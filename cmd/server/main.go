package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/concert-ticketing/internal/config"
	"github.com/iliyamo/concert-ticketing/internal/database"
	"github.com/iliyamo/concert-ticketing/internal/graph"
	"github.com/iliyamo/concert-ticketing/internal/pkg/logger"
	"github.com/iliyamo/concert-ticketing/internal/pkg/metrics"
	"github.com/iliyamo/concert-ticketing/internal/queue"
	"github.com/iliyamo/concert-ticketing/internal/repository"
	"github.com/iliyamo/concert-ticketing/internal/router"
	"github.com/iliyamo/concert-ticketing/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments use the environment

	cfg := config.Load()
	log := logger.NewLogger(cfg.Env)
	logger.Set(log)
	defer log.Sync() //nolint:errcheck

	db, err := database.Open(database.Config{
		User:            cfg.DBUser,
		Pass:            cfg.DBPass,
		Host:            cfg.DBHost,
		Port:            cfg.DBPort,
		Name:            cfg.DBName,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.DBConnLifeMin) * time.Minute,
	})
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	if err := database.RunMigrations(db, "migrations"); err != nil {
		log.Fatal("migrations failed", zap.Error(err))
	}

	rdb := config.NewRedisClient() // nil when Redis is unreachable; caching and rate limiting degrade
	cacheCfg := config.LoadCacheConfig()
	rlCfg := config.LoadRateLimitConfig()

	cacheClient := rdb
	if !cacheCfg.Enabled {
		cacheClient = nil
	}

	m := metrics.New()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	concerts := repository.NewConcertRepo(db)
	reservations := repository.NewReservationRepo(db)
	activityLogs := repository.NewActivityLogRepo(db)

	publisher := queue.NewAMQPPublisher(cfg.AMQPURL)

	authSvc := service.NewAuthService(users, tokens, cfg)
	concertSvc := service.NewConcertService(concerts, cacheClient, cacheCfg.TTL, cacheCfg.Prefix)
	reservationSvc := service.NewReservationService(reservations, concerts, publisher)
	activityLogSvc := service.NewActivityLogService(activityLogs, cacheClient, cacheCfg.TTL, cacheCfg.Prefix)

	resolver := graph.NewResolver(authSvc, concertSvc, reservationSvc, activityLogSvc)
	schema, err := graph.NewSchema(resolver)
	if err != nil {
		log.Fatal("schema build failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reservationWorker := queue.NewReservationWorker(db, reservations, concerts, m)
	activityWorker := queue.NewActivityLogWorker(activityLogSvc)
	go func() {
		if err := queue.StartConsumer(ctx, cfg.AMQPURL, queue.ReservationsQueue, reservationWorker, m); err != nil {
			log.Error("reservations consumer stopped", zap.Error(err))
		}
	}()
	go func() {
		if err := queue.StartConsumer(ctx, cfg.AMQPURL, queue.ActivityLogQueue, activityWorker, m); err != nil {
			log.Error("activity log consumer stopped", zap.Error(err))
		}
	}()

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Deps{
		GraphQL:   graph.NewHandler(schema),
		Metrics:   m,
		JWTSecret: cfg.JWTSecret,
		RateLimit: rlCfg,
		Redis:     rdb,
	})

	go func() {
		addr := ":" + cfg.Port
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", zap.Error(err))
	}
	if rdb != nil {
		_ = rdb.Close()
	}
}
