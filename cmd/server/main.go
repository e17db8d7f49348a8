package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"    // optional .env file
	"github.com/labstack/echo/v4" // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/chanthanathaicook/backend/internal/config"
	"github.com/chanthanathaicook/backend/internal/database"
	"github.com/chanthanathaicook/backend/internal/handler"
	"github.com/chanthanathaicook/backend/internal/history"
	"github.com/chanthanathaicook/backend/internal/logging"
	"github.com/chanthanathaicook/backend/internal/middleware"
	"github.com/chanthanathaicook/backend/internal/notify"
	"github.com/chanthanathaicook/backend/internal/queue"
	"github.com/chanthanathaicook/backend/internal/repository"
	"github.com/chanthanathaicook/backend/internal/router"
	"github.com/chanthanathaicook/backend/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn("no .env file loaded; relying on the process environment")
	}
	logging.Setup(config.LoadLogConfig())
	decimal.MarshalJSONWithoutQuotes = true // prices as JSON numbers

	cfg := config.Load()
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil disables cache and rate limiting
	if rdb == nil {
		log.Warn("redis unavailable; cache and rate limiting disabled")
	} else {
		defer rdb.Close()
	}
	cacheCfg := config.LoadCacheConfig()
	queueCfg := config.LoadQueueConfig()

	// ---- Repositories ----
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	clients := repository.NewClientRepo(db)
	orders := repository.NewOrderRepo(db)
	events := repository.NewEventRepo(db)
	dishes := repository.NewDishRepo(db)
	extras := repository.NewExtraRepo(db)
	notifications := repository.NewNotificationRepo(db)

	historySvc := history.NewService(orders, events, clients)
	pub := service.NewPublisher(queueCfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if queueCfg.ConsumerEnabled {
		dispatcher := notify.NewDispatcher(notifications, notify.LogSender{})
		go func() {
			if err := queue.StartNotificationConsumer(ctx, queueCfg, dispatcher); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("notification consumer stopped")
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger())

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(cacheCfg, rdb)

	router.RegisterRoutes(e, db, rdb)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, db, users, tokens, clients), cfg.JWTSecret, limiter)
	router.RegisterPublic(e, handler.NewCatalogHandler(dishes, extras), cache)
	router.RegisterClient(e, router.ClientHandlers{
		History:       handler.NewHistoryHandler(historySvc),
		Checkout:      handler.NewCheckoutHandler(db, orders, dishes, extras, clients, pub),
		Events:        handler.NewEventHandler(events, clients, pub),
		Notifications: handler.NewNotificationHandler(notifications, clients),
		Profile:       handler.NewClientHandler(clients),
	}, cfg.JWTSecret, limiter)
	router.RegisterAdmin(e, router.AdminHandlers{
		Orders:  handler.NewAdminOrderHandler(historySvc, orders, events, pub),
		Catalog: handler.NewAdminCatalogHandler(dishes, extras, rdb, cacheCfg.Prefix),
		Clients: handler.NewAdminClientHandler(clients, pub),
	}, cfg.JWTSecret)

	addr := ":" + cfg.Port
	go func() {
		log.WithFields(log.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	log.Info("server stopped")
}
