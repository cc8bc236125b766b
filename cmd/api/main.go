package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caffineConfession/QROrderingApp-sub000/internal/config"
	"github.com/caffineConfession/QROrderingApp-sub000/internal/domain/model"
	"github.com/caffineConfession/QROrderingApp-sub000/internal/gateway"
	"github.com/caffineConfession/QROrderingApp-sub000/internal/handler"
	"github.com/caffineConfession/QROrderingApp-sub000/internal/infra/db"
	infraRepo "github.com/caffineConfession/QROrderingApp-sub000/internal/infra/repository"
	"github.com/caffineConfession/QROrderingApp-sub000/internal/logger"
	mw "github.com/caffineConfession/QROrderingApp-sub000/internal/middleware"
	"github.com/caffineConfession/QROrderingApp-sub000/internal/notify"
	"github.com/caffineConfession/QROrderingApp-sub000/internal/usecase"
	"github.com/caffineConfession/QROrderingApp-sub000/internal/ws"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
)

func main() {
	// .envはローカル用。なければ環境変数だけで動く
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	gormDB, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	if err := gormDB.AutoMigrate(
		&model.AdminUser{},
		&model.Product{},
		&model.MenuItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.Rating{},
	); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 通知はプロセス内hubが基本。REDIS_ADDRがあれば他インスタンスとも共有
	hub := notify.NewHub(log)
	var bus notify.Publisher = hub
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()

		bus = notify.MultiPublisher{hub, notify.NewRedisPublisher(redisClient, log)}
		go notify.RelayFromRedis(ctx, redisClient, hub, log)
	}

	//Repository / Usecase / Handler 生成
	txManager := infraRepo.NewTxManagerGorm(gormDB)
	userRepo := infraRepo.NewAdminUserGormRepository(gormDB)

	gw := gateway.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)

	orderUC := usecase.NewOrderUsecase(txManager, gw, bus, log)
	paymentUC := usecase.NewPaymentUsecase(txManager, cfg.RazorpayKeySecret, cfg.RazorpayWebhookSecret, bus, log)
	catalogUC := usecase.NewCatalogUsecase(txManager)
	analyticsUC := usecase.NewAnalyticsUsecase(txManager)
	authUC := usecase.NewAuthUsecase(userRepo, cfg.JWTSecret)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	handler.NewMenuHandler(catalogUC).RegisterRoutes(e)
	handler.NewOrderHandler(orderUC).RegisterRoutes(e)
	handler.NewPaymentHandler(paymentUC).RegisterRoutes(e)
	handler.NewAuthHandler(authUC).RegisterRoutes(e, cfg)
	handler.NewAdminOrderHandler(orderUC, paymentUC).RegisterRoutes(e, cfg)
	handler.NewAdminCatalogHandler(catalogUC).RegisterRoutes(e, cfg)
	handler.NewAnalyticsHandler(analyticsUC).RegisterRoutes(e, cfg)

	// 注文ボードのライブ更新
	board := ws.NewHub(hub, log)
	e.GET("/admin/ws", board.Serve, mw.AuthJWT(cfg))

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Msg("server starting")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}
