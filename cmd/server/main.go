package main

import (
	"net/http"
	"time"

	"harvesthub/internal/config"
	httpapi "harvesthub/internal/controllers/http"
	"harvesthub/internal/infra"
	"harvesthub/internal/infra/cache"
	"harvesthub/internal/infra/database"
	"harvesthub/internal/infra/idempotency"
	"harvesthub/internal/infra/rabbitmq"
	"harvesthub/internal/infra/razorpay"
	"harvesthub/internal/infra/ws"
	"harvesthub/internal/logger"
	"harvesthub/internal/repository/gormrepo"
	"harvesthub/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	orderListTTL   = 10 * time.Second
	payoutDedupTTL = 30 * 24 * time.Hour
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	logger.Init(cfg.LogLevel, cfg.LogPretty)
	decimal.MarshalJSONWithoutQuotes = true

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("db: connect")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr(),
		DB:           0,
		PoolSize:     200,
		MinIdleConns: 20,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})

	publisher, err := rabbitmq.NewPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init publisher")
	}
	defer publisher.Close()

	hub := ws.NewHub(cfg.AllowedOrigins())
	events := infra.Fanout{publisher, hub}

	orderRepo := gormrepo.NewOrderRepository(db)
	productRepo := gormrepo.NewProductRepository(db)
	cartRepo := gormrepo.NewCartRepository(db)
	userRepo := gormrepo.NewUserRepository(db)
	tx := gormrepo.NewTransactor(db)

	productCache := cache.NewProductCache(redisClient, productRepo, cfg.CacheTTL)
	listCache := cache.NewOrderListCache(redisClient, orderListTTL)
	payoutKeys := idempotency.NewStore(redisClient, "harvesthub:", payoutDedupTTL)

	gateway := razorpay.NewGateway(razorpay.Options{
		KeyID:         cfg.RazorpayKeyID,
		KeySecret:     cfg.RazorpayKeySecret,
		PayoutAccount: cfg.RazorpayPayoutAccount,
		APIURL:        cfg.RazorpayAPIURL,
	})

	cartService := services.NewCartService(cartRepo, productRepo, userRepo, productCache)
	orderService := services.NewOrderService(orderRepo, productRepo, cartRepo, tx, events, productCache)
	payouts := services.NewPayoutDistributor(userRepo, gateway, payoutKeys, cfg.PaymentCurrency, cfg.PayoutConcurrency)
	paymentService := services.NewPaymentService(orderRepo, userRepo, tx, gateway, payouts, events, services.PaymentConfig{
		KeyID:     gateway.KeyID(),
		Currency:  cfg.PaymentCurrency,
		StoreName: cfg.StoreName,
	})

	handler := httpapi.NewHandler(cartService, orderService, paymentService, listCache, hub, cfg.AccessTokenSecret)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(httpapi.RequestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handler.RegisterRoutes(r)

	log.Info().Str("port", cfg.Port).Msg("starting harvesthub order service")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server run")
	}
}
